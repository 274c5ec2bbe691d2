package harness

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestScenarios runs every scenario file in testdata.
func TestScenarios(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths, "no scenario files found")

	for _, path := range paths {
		path := path
		t.Run(filepath.Base(path), func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)

			result, err := Run(context.Background(), scenario)
			require.NoError(t, err)

			for _, failure := range Verify(scenario, result) {
				t.Error(failure)
			}
		})
	}
}

func TestGolden_ApproveFlow(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "approve_flow.yaml"))
	require.NoError(t, err)
	require.NoError(t, RunWithGolden(t, scenario))
}

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScenario_RejectsUnknownFields(t *testing.T) {
	path := writeScenario(t, `
name: typo
description: has a misspelled key
claim:
  claimant_name: John Doe
expectt:
  outcome: processed
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
}

func TestLoadScenario_RequiresOutcome(t *testing.T) {
	path := writeScenario(t, `
name: no-outcome
description: missing expect.outcome
claim:
  claimant_name: John Doe
expect: {}
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expect.outcome")
}

func TestLoadScenario_RejectsAmbiguousReasonerStep(t *testing.T) {
	path := writeScenario(t, `
name: ambiguous
description: a step cannot both respond and fail
claim:
  claimant_name: John Doe
reasoner:
  - contract: TriageResult
    output:
      assessment: ok
    fail: boom
expect:
  outcome: processed
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestLoadScenario_RejectsResultFieldsOnFailureOutcomes(t *testing.T) {
	path := writeScenario(t, `
name: incoherent
description: severity only makes sense for processed runs
claim:
  claimant_name: John Doe
expect:
  outcome: validation_error
  severity: High
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
}

func TestVerify_ReportsMismatches(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "approve_flow.yaml"))
	require.NoError(t, err)

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)

	scenario.Expect.Severity = "High"
	failures := Verify(scenario, result)
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0], "severity")
}
