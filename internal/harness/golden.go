package harness

import (
	"context"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/clemhq/clem/internal/claim"
	"github.com/clemhq/clem/internal/store"
)

// StateSnapshot captures the final workflow state of a scenario run in
// canonical JSON, for deterministic golden comparison.
type StateSnapshot struct {
	ScenarioName string
	State        claim.WorkflowState
}

// toCanonicalMap renders the snapshot as a JSON object tree that the
// canonical marshaller accepts.
func (s *StateSnapshot) toCanonicalMap() map[string]any {
	in := s.State.ClaimData
	final := map[string]any{
		"claim_data": map[string]any{
			"claimant_name":        in.ClaimantName,
			"policy_number":        in.PolicyNumber,
			"incident_date":        in.IncidentDate,
			"incident_description": in.IncidentDescription,
		},
	}
	if t := s.State.TriageResult; t != nil {
		final["triage_result"] = map[string]any{
			"assessment":  t.Assessment,
			"severity":    t.Severity,
			"fraud_flags": t.FraudFlags,
		}
	}
	if r := s.State.SettlementRecommendation; r != nil {
		final["settlement_recommendation"] = map[string]any{
			"recommendation_text": r.RecommendationText,
			"recommended_amount":  r.RecommendedAmount,
			"next_steps":          r.NextSteps,
		}
	}
	return map[string]any{
		"scenario_name": s.ScenarioName,
		"final_state":   final,
	}
}

// RunWithGolden executes a scenario and compares its final state against
// a golden file at testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return err
	}
	if result.Outcome != OutcomeProcessed {
		return fmt.Errorf("scenario %s did not process: %v", scenario.Name, result.Err)
	}

	snapshot := StateSnapshot{ScenarioName: scenario.Name, State: result.State}
	stateJSON, err := store.MarshalCanonical(snapshot.toCanonicalMap())
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, stateJSON)
	return nil
}
