package schema

import (
	"fmt"
	"strings"
)

// Issue describes a single field-level validation failure.
type Issue struct {
	// Field is the offending JSON key ("" for object-level issues).
	Field string `json:"field,omitempty"`

	// Message is a human-readable description.
	Message string `json:"message"`
}

func (i Issue) String() string {
	if i.Field == "" {
		return i.Message
	}
	return fmt.Sprintf("%s: %s", i.Field, i.Message)
}

// ValidationError reports why a value does not satisfy a contract.
//
// It collects all field-level issues found in one pass rather than stopping
// at the first, so callers can surface a complete report.
type ValidationError struct {
	// Contract is the name of the violated contract.
	Contract string `json:"contract"`

	// Issues holds one entry per failed check, in field declaration order.
	Issues []Issue `json:"issues"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		msgs[i] = issue.String()
	}
	return fmt.Sprintf("value does not satisfy contract %s: %s",
		e.Contract, strings.Join(msgs, "; "))
}

// add records an issue against the given field.
func (e *ValidationError) add(field, format string, args ...any) {
	e.Issues = append(e.Issues, Issue{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	})
}
