package harness

import (
	"context"
	"errors"
	"fmt"

	"github.com/clemhq/clem/internal/claim"
	"github.com/clemhq/clem/internal/reasoner"
	"github.com/clemhq/clem/internal/workflow"
)

// Result captures one scenario execution.
type Result struct {
	// Outcome is the observed outcome class.
	Outcome string

	// State is the final workflow state (zero on failure).
	State claim.WorkflowState

	// Err is the workflow error, if any.
	Err error

	// Calls are the contract names invoked on the reasoner, in order.
	Calls []string
}

// Run executes a scenario against a stub reasoner scripted from its
// reasoner steps.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	stub := reasoner.NewStub()
	for _, step := range scenario.Reasoner {
		if step.Fail != "" {
			stub.Fail(step.Contract, errors.New(step.Fail))
		} else {
			stub.Respond(step.Contract, step.Output)
		}
	}

	runner, err := workflow.NewClaimsRunner(stub)
	if err != nil {
		return nil, fmt.Errorf("build workflow: %w", err)
	}

	result := &Result{Outcome: OutcomeProcessed}

	in, err := claim.ValidateInput(scenario.Claim)
	if err != nil {
		result.Outcome = OutcomeValidationError
		result.Err = err
		result.Calls = contractCalls(stub)
		return result, nil
	}

	state, err := runner.Run(ctx, in)
	result.Calls = contractCalls(stub)
	if err != nil {
		result.Err = err
		switch {
		case workflow.IsReasonerFailure(err):
			result.Outcome = OutcomeReasonerError
		default:
			// Non-conforming reasoner output surfaces as a validation
			// failure of the node's output contract.
			result.Outcome = OutcomeValidationError
		}
		return result, nil
	}

	result.State = state
	return result, nil
}

// Verify checks a result against the scenario's expectation and returns
// one message per unmet condition.
func Verify(scenario *Scenario, result *Result) []string {
	var failures []string
	expect := scenario.Expect

	if result.Outcome != expect.Outcome {
		failures = append(failures, fmt.Sprintf(
			"outcome: want %q, got %q (err: %v)", expect.Outcome, result.Outcome, result.Err))
		return failures
	}

	if expect.Calls != nil {
		if !equalStrings(*expect.Calls, result.Calls) {
			failures = append(failures, fmt.Sprintf(
				"reasoner calls: want %v, got %v", *expect.Calls, result.Calls))
		}
	}

	if expect.Outcome != OutcomeProcessed {
		return failures
	}

	triage := result.State.TriageResult
	settlement := result.State.SettlementRecommendation
	if triage == nil || settlement == nil {
		failures = append(failures, "processed run is missing triage or settlement results")
		return failures
	}

	if expect.Severity != "" && triage.Severity != expect.Severity {
		failures = append(failures, fmt.Sprintf(
			"severity: want %q, got %q", expect.Severity, triage.Severity))
	}
	if expect.RecommendedAmount != nil && settlement.RecommendedAmount != *expect.RecommendedAmount {
		failures = append(failures, fmt.Sprintf(
			"recommended_amount: want %v, got %v", *expect.RecommendedAmount, settlement.RecommendedAmount))
	}
	if expect.FraudFlags != nil && !equalStrings(*expect.FraudFlags, triage.FraudFlags) {
		failures = append(failures, fmt.Sprintf(
			"fraud_flags: want %v, got %v", *expect.FraudFlags, triage.FraudFlags))
	}
	return failures
}

func contractCalls(stub *reasoner.Stub) []string {
	calls := stub.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.Contract
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
