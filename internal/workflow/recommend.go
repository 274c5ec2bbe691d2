package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/clemhq/clem/internal/claim"
	"github.com/clemhq/clem/internal/reasoner"
	"github.com/clemhq/clem/internal/schema"
)

// NodeRecommend is the settlement recommendation node. It requires the
// triage result to be present in state.
const NodeRecommend NodeName = "recommend"

// errTriageMissing signals the recommend node ran before triage populated
// the state. This is a broken graph wiring, never a runtime condition.
var errTriageMissing = errors.New("triage_result missing from state")

// RecommendNode builds the settlement recommendation step. The prompt
// incorporates the triage severity and fraud flags, so the node refuses to
// run without a triage result.
func RecommendNode(client reasoner.Client) Node {
	return Node{
		Name: NodeRecommend,
		Run: func(ctx context.Context, state claim.WorkflowState) (claim.Patch, error) {
			if state.TriageResult == nil {
				return claim.Patch{}, &Error{
					Node: NodeRecommend,
					Kind: KindContractViolation,
					Err:  errTriageMissing,
				}
			}

			prompt := recommendPrompt(state.ClaimData, *state.TriageResult)
			out, err := client.Invoke(ctx, prompt, claim.SettlementContract())
			if err != nil {
				return claim.Patch{}, err
			}

			valid, err := schema.Validate(out, claim.SettlementContract())
			if err != nil {
				return claim.Patch{}, err
			}

			rec := claim.SettlementFromMap(valid)
			return claim.Patch{SettlementRecommendation: &rec}, nil
		},
	}
}

// recommendPrompt renders the adjustment instruction from the claim and
// its triage assessment.
func recommendPrompt(in claim.Input, triage claim.TriageResult) string {
	var b strings.Builder
	b.WriteString("You are an expert claims adjuster. ")
	b.WriteString("Based on the claim and triage below, provide a settlement recommendation.\n\n")
	fmt.Fprintf(&b, "Claimant: %s\n", in.ClaimantName)
	fmt.Fprintf(&b, "Policy number: %s\n", in.PolicyNumber)
	fmt.Fprintf(&b, "Incident description: %q\n\n", in.IncidentDescription)
	fmt.Fprintf(&b, "Triage assessment: %s\n", triage.Assessment)
	fmt.Fprintf(&b, "Severity: %s\n", triage.Severity)
	if len(triage.FraudFlags) > 0 {
		fmt.Fprintf(&b, "Fraud indicators: %s\n", strings.Join(triage.FraudFlags, "; "))
	} else {
		b.WriteString("Fraud indicators: none\n")
	}
	b.WriteString("\nRecommend a settlement amount in USD, explain the reasoning, and state the next steps for the human adjuster.")
	return b.String()
}
