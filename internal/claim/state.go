package claim

import (
	"fmt"
)

// WorkflowState is the accumulator threaded through one workflow run.
//
// Fields fill monotonically in pipeline order: ClaimData is set at run
// start, TriageResult before SettlementRecommendation. Once set, a field is
// never cleared or overwritten within a run.
//
// Each run owns its accumulator exclusively; state is never shared between
// concurrent runs.
type WorkflowState struct {
	ClaimData                Input                     `json:"claim_data"`
	TriageResult             *TriageResult             `json:"triage_result,omitempty"`
	SettlementRecommendation *SettlementRecommendation `json:"settlement_recommendation,omitempty"`
}

// NewWorkflowState seeds an accumulator with submitted claim data only.
func NewWorkflowState(in Input) WorkflowState {
	return WorkflowState{ClaimData: in}
}

// Patch is the partial state produced by one node's execution: the subset
// of optional WorkflowState fields the node owns. Nodes own disjoint
// fields, so patches never conflict by construction.
type Patch struct {
	TriageResult             *TriageResult
	SettlementRecommendation *SettlementRecommendation
}

// IsZero reports whether the patch sets nothing.
func (p Patch) IsZero() bool {
	return p.TriageResult == nil && p.SettlementRecommendation == nil
}

// Apply merges a patch into the state and returns the updated copy.
//
// Merge is per-key: each set pointer fills the matching unset field. A
// patch that touches an already-set field indicates a node wrote a key it
// does not own; that is a design violation and returns an error rather
// than resolving the conflict at runtime.
func (s WorkflowState) Apply(p Patch) (WorkflowState, error) {
	if p.TriageResult != nil {
		if s.TriageResult != nil {
			return s, fmt.Errorf("triage_result is already set")
		}
		v := *p.TriageResult
		s.TriageResult = &v
	}
	if p.SettlementRecommendation != nil {
		if s.SettlementRecommendation != nil {
			return s, fmt.Errorf("settlement_recommendation is already set")
		}
		v := *p.SettlementRecommendation
		s.SettlementRecommendation = &v
	}
	return s, nil
}
