package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeClaimDoc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "claim.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validClaimDoc = `{
	"claimant_name": "John Doe",
	"policy_number": "POL123",
	"incident_date": "2024-01-15",
	"incident_description": "Car accident on highway causing significant damage."
}`

func TestValidateValidDocument(t *testing.T) {
	path := writeClaimDoc(t, validClaimDoc)

	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "✓ Claim document is valid")
}

func TestValidateValidDocumentJSON(t *testing.T) {
	path := writeClaimDoc(t, validClaimDoc)

	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	require.NoError(t, cmd.Execute())

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestValidateShortDescription(t *testing.T) {
	path := writeClaimDoc(t, `{
		"claimant_name": "John Doe",
		"policy_number": "POL123",
		"incident_date": "2024-01-15",
		"incident_description": "too short"
	}`)

	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "✗ Validation failed")
	assert.Contains(t, buf.String(), "incident_description")
}

func TestValidateImpossibleDate(t *testing.T) {
	// Passes the schema regex but is not a real calendar date.
	path := writeClaimDoc(t, `{
		"claimant_name": "John Doe",
		"policy_number": "POL123",
		"incident_date": "2024-13-40",
		"incident_description": "Car accident on highway causing significant damage."
	}`)

	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "incident_date")
}

func TestValidateMissingFields(t *testing.T) {
	path := writeClaimDoc(t, `{"claimant_name": "John Doe"}`)

	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
}

func TestValidateNotJSON(t *testing.T) {
	path := writeClaimDoc(t, "{not json")

	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestValidateMissingFile(t *testing.T) {
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "nope.json")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
