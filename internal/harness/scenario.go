// Package harness executes YAML-defined workflow scenarios.
//
// A scenario submits one claim document against a scripted reasoner and
// asserts on the outcome: which nodes ran, what the final state holds,
// or which failure class occurred. Scenarios double as executable
// documentation of the workflow's behavior.
package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines one workflow conformance scenario.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Claim is the submitted claim document.
	Claim map[string]interface{} `yaml:"claim"`

	// Reasoner scripts the stub reasoner, one step per contract.
	Reasoner []ReasonerStep `yaml:"reasoner,omitempty"`

	// Expect describes the required outcome.
	Expect Expectation `yaml:"expect"`
}

// ReasonerStep scripts the stub reasoner for one output contract.
// Exactly one of Output and Fail must be set.
type ReasonerStep struct {
	// Contract is the output contract name, e.g. "TriageResult".
	Contract string `yaml:"contract"`

	// Output is the object the stub returns for this contract.
	Output map[string]interface{} `yaml:"output,omitempty"`

	// Fail makes the stub fail this contract with the given message.
	Fail string `yaml:"fail,omitempty"`
}

// Outcome classes a scenario can expect.
const (
	OutcomeProcessed       = "processed"
	OutcomeValidationError = "validation_error"
	OutcomeReasonerError   = "reasoner_error"
)

// Expectation describes the required end state of a scenario run.
type Expectation struct {
	// Outcome is the expected outcome class.
	Outcome string `yaml:"outcome"`

	// Severity is the expected triage severity (processed runs only).
	Severity string `yaml:"severity,omitempty"`

	// RecommendedAmount is the expected settlement amount (processed
	// runs only).
	RecommendedAmount *float64 `yaml:"recommended_amount,omitempty"`

	// FraudFlags are the expected triage fraud flags (processed runs
	// only). A present-but-empty list asserts no flags were raised.
	FraudFlags *[]string `yaml:"fraud_flags,omitempty"`

	// Calls are the contract names the reasoner must have been invoked
	// for, in order. A present-but-empty list asserts the reasoner was
	// never reached.
	Calls *[]string `yaml:"calls,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected so typos fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and coherent.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Claim == nil {
		return fmt.Errorf("claim is required")
	}

	for i, step := range s.Reasoner {
		if step.Contract == "" {
			return fmt.Errorf("reasoner[%d]: contract is required", i)
		}
		if step.Output == nil && step.Fail == "" {
			return fmt.Errorf("reasoner[%d]: either output or fail is required", i)
		}
		if step.Output != nil && step.Fail != "" {
			return fmt.Errorf("reasoner[%d]: output and fail are mutually exclusive", i)
		}
	}

	switch s.Expect.Outcome {
	case OutcomeProcessed, OutcomeValidationError, OutcomeReasonerError:
	case "":
		return fmt.Errorf("expect.outcome is required")
	default:
		return fmt.Errorf("unknown expect.outcome %q", s.Expect.Outcome)
	}

	if s.Expect.Outcome != OutcomeProcessed {
		if s.Expect.Severity != "" || s.Expect.RecommendedAmount != nil || s.Expect.FraudFlags != nil {
			return fmt.Errorf("severity, recommended_amount and fraud_flags require outcome %q", OutcomeProcessed)
		}
	}
	return nil
}
