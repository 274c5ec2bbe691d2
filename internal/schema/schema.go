// Package schema defines structural contracts for untyped values and a
// generic validator that interprets them.
//
// A Contract is an explicit, tagged data-shape descriptor: an enumerated
// list of fields, each carrying a kind tag (string, number, date, enum,
// string list) plus optional constraints (enum membership, minimum string
// length, non-negative range). One Validate function interprets any
// contract against a decoded JSON object.
//
// Contracts guard two boundaries:
//   - claim ingestion: submitted claim data is validated before a workflow
//     run starts
//   - reasoner output: every value returned by the external reasoner is
//     validated before it is merged into workflow state
//
// The reasoner is non-deterministic; the validator is the only defense
// against malformed output. There is no semantic correctness check.
package schema

// Kind tags the shape a field's value must have.
type Kind string

const (
	// KindString is free text. MinLen applies when > 0.
	KindString Kind = "string"

	// KindNumber is a JSON number. NonNegative applies when set.
	KindNumber Kind = "number"

	// KindDate is an ISO-8601 calendar date string (YYYY-MM-DD).
	KindDate Kind = "date"

	// KindEnum is a string restricted to exact membership in Enum.
	KindEnum Kind = "enum"

	// KindStringList is an ordered list of strings, possibly empty.
	KindStringList Kind = "string_list"
)

// Field describes one key of a contract.
type Field struct {
	// Name is the JSON key.
	Name string

	// Kind tags the expected shape.
	Kind Kind

	// Description documents the field for humans and for the reasoner's
	// JSON Schema rendering. Optional.
	Description string

	// Enum lists the allowed values for KindEnum fields.
	Enum []string

	// MinLen is the minimum rune length for KindString fields (0 = none).
	MinLen int

	// NonNegative requires KindNumber values to be >= 0.
	NonNegative bool

	// Optional marks the field as not required. Fields are required by
	// default; an absent optional field is simply skipped.
	Optional bool
}

// Contract is a named, ordered field list describing a valid object shape.
//
// Field order is declaration order and is preserved in JSON Schema
// rendering and error reporting for deterministic output.
type Contract struct {
	Name   string
	Fields []Field
}

// Field returns the declared field with the given name, if any.
func (c Contract) Field(name string) (Field, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}
