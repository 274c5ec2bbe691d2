package workflow

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes workflow failures.
type ErrorKind string

const (
	// KindInputValidation indicates claim input or a node's output patch
	// failed contract validation. Never retried; surfaced immediately.
	KindInputValidation ErrorKind = "INPUT_VALIDATION"

	// KindReasoner indicates the external reasoner call failed or timed
	// out. The engine does not retry; a single failure aborts the run.
	KindReasoner ErrorKind = "REASONER_FAILURE"

	// KindContractViolation indicates a node was invoked with an unmet
	// precondition or wrote a state key it does not own. This is a fatal
	// programming error, not a recoverable runtime condition.
	KindContractViolation ErrorKind = "CONTRACT_VIOLATION"

	// KindCancelled indicates the caller abandoned the run before it
	// completed. No patch from the in-flight node is merged.
	KindCancelled ErrorKind = "CANCELLED"
)

// Error is the failure returned by a workflow run.
type Error struct {
	// Node names the node that failed ("" for pre-run input validation).
	Node NodeName

	// Kind categorizes the failure.
	Kind ErrorKind

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Node == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: node %s: %v", e.Kind, e.Node, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsInputValidation reports whether err is a validation failure.
// Uses errors.As to handle wrapped errors.
func IsInputValidation(err error) bool {
	var we *Error
	return errors.As(err, &we) && we.Kind == KindInputValidation
}

// IsReasonerFailure reports whether err is an external reasoner failure.
func IsReasonerFailure(err error) bool {
	var we *Error
	return errors.As(err, &we) && we.Kind == KindReasoner
}

// IsContractViolation reports whether err is a fatal contract violation.
func IsContractViolation(err error) bool {
	var we *Error
	return errors.As(err, &we) && we.Kind == KindContractViolation
}

// IsCancelled reports whether err is a run cancellation.
func IsCancelled(err error) bool {
	var we *Error
	return errors.As(err, &we) && we.Kind == KindCancelled
}
