package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/clemhq/clem/internal/claim"
	"github.com/clemhq/clem/internal/reasoner"
	"github.com/clemhq/clem/internal/schema"
)

// NodeTriage is the entry node: severity and fraud assessment.
const NodeTriage NodeName = "triage"

// TriageNode builds the triage step. It prompts the reasoner with the
// claim details, validates the returned object against the triage
// contract, and patches triage_result. A validation failure means no
// patch is produced.
func TriageNode(client reasoner.Client) Node {
	return Node{
		Name: NodeTriage,
		Run: func(ctx context.Context, state claim.WorkflowState) (claim.Patch, error) {
			out, err := client.Invoke(ctx, triagePrompt(state.ClaimData), claim.TriageContract())
			if err != nil {
				return claim.Patch{}, err
			}

			valid, err := schema.Validate(out, claim.TriageContract())
			if err != nil {
				return claim.Patch{}, err
			}

			result := claim.TriageFromMap(valid)
			return claim.Patch{TriageResult: &result}, nil
		},
	}
}

// triagePrompt renders the triage instruction from submitted claim data.
func triagePrompt(in claim.Input) string {
	var b strings.Builder
	b.WriteString("You are an expert insurance claims triager. ")
	b.WriteString("Analyze the claim and provide a structured assessment.\n\n")
	fmt.Fprintf(&b, "Claimant: %s\n", in.ClaimantName)
	fmt.Fprintf(&b, "Policy number: %s\n", in.PolicyNumber)
	fmt.Fprintf(&b, "Incident date: %s\n", in.IncidentDate)
	fmt.Fprintf(&b, "Incident description: %q\n", in.IncidentDescription)
	b.WriteString("\nAssess the severity, summarize liability, and list any potential fraud indicators.")
	return b.String()
}
