package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testContract mirrors the shape of a triage assessment: free text, an
// enum, and a string list.
func testContract() Contract {
	return Contract{
		Name: "TestResult",
		Fields: []Field{
			{Name: "assessment", Kind: KindString},
			{Name: "severity", Kind: KindEnum, Enum: []string{"Low", "Medium", "High"}},
			{Name: "fraud_flags", Kind: KindStringList},
		},
	}
}

func TestValidate_AcceptsConformingValue(t *testing.T) {
	value := map[string]any{
		"assessment":  "rear-end collision, liability clear",
		"severity":    "Medium",
		"fraud_flags": []any{"late report"},
	}

	out, err := Validate(value, testContract())
	require.NoError(t, err)

	assert.Equal(t, "rear-end collision, liability clear", out["assessment"])
	assert.Equal(t, "Medium", out["severity"])
	assert.Equal(t, []string{"late report"}, out["fraud_flags"])
}

func TestValidate_MissingRequiredField(t *testing.T) {
	value := map[string]any{
		"assessment":  "looks fine",
		"fraud_flags": []any{},
	}

	_, err := Validate(value, testContract())
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "TestResult", verr.Contract)
	require.Len(t, verr.Issues, 1)
	assert.Equal(t, "severity", verr.Issues[0].Field)
}

func TestValidate_EnumMembershipIsExact(t *testing.T) {
	value := map[string]any{
		"assessment":  "looks fine",
		"severity":    "medium", // wrong case
		"fraud_flags": []any{},
	}

	_, err := Validate(value, testContract())
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Error(), "medium")
}

func TestValidate_CollectsAllIssues(t *testing.T) {
	value := map[string]any{
		"assessment":  42,
		"severity":    "Extreme",
		"fraud_flags": []any{"ok", 3},
	}

	_, err := Validate(value, testContract())
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Issues, 3)
}

func TestValidate_MinLen(t *testing.T) {
	c := Contract{
		Name: "Doc",
		Fields: []Field{
			{Name: "incident_description", Kind: KindString, MinLen: 20},
		},
	}

	_, err := Validate(map[string]any{"incident_description": "too short"}, c)
	require.Error(t, err)

	out, err := Validate(map[string]any{
		"incident_description": "a description long enough to pass",
	}, c)
	require.NoError(t, err)
	assert.Equal(t, "a description long enough to pass", out["incident_description"])
}

func TestValidate_NonNegativeNumber(t *testing.T) {
	c := Contract{
		Name: "Amount",
		Fields: []Field{
			{Name: "recommended_amount", Kind: KindNumber, NonNegative: true},
		},
	}

	_, err := Validate(map[string]any{"recommended_amount": -1.0}, c)
	require.Error(t, err)

	// Integers are accepted and normalized to float64.
	out, err := Validate(map[string]any{"recommended_amount": 5000}, c)
	require.NoError(t, err)
	assert.Equal(t, float64(5000), out["recommended_amount"])
}

func TestValidate_DateFormat(t *testing.T) {
	c := Contract{
		Name:   "Claim",
		Fields: []Field{{Name: "incident_date", Kind: KindDate}},
	}

	_, err := Validate(map[string]any{"incident_date": "15/01/2024"}, c)
	require.Error(t, err)

	_, err = Validate(map[string]any{"incident_date": "2024-01-15"}, c)
	require.NoError(t, err)
}

func TestValidate_DropsUndeclaredKeys(t *testing.T) {
	value := map[string]any{
		"assessment":  "ok",
		"severity":    "Low",
		"fraud_flags": []any{},
		"confidence":  0.93, // not in the contract
	}

	out, err := Validate(value, testContract())
	require.NoError(t, err)
	assert.NotContains(t, out, "confidence")
	// Input is not mutated.
	assert.Contains(t, value, "confidence")
}

func TestValidate_NilValue(t *testing.T) {
	_, err := Validate(nil, testContract())
	require.Error(t, err)
}

func TestValidate_EmptyStringListIsValid(t *testing.T) {
	value := map[string]any{
		"assessment":  "ok",
		"severity":    "Low",
		"fraud_flags": []any{},
	}

	out, err := Validate(value, testContract())
	require.NoError(t, err)
	assert.Equal(t, []string{}, out["fraud_flags"])
}
