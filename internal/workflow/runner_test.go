package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clemhq/clem/internal/claim"
	"github.com/clemhq/clem/internal/reasoner"
)

func conformingStub() *reasoner.Stub {
	return reasoner.NewStub().
		Respond("TriageResult", map[string]any{
			"assessment":  "Rear-end collision on the highway; claimant not at fault.",
			"severity":    "Medium",
			"fraud_flags": []any{},
		}).
		Respond("SettlementRecommendation", map[string]any{
			"recommendation_text": "Approve repair costs based on the damage description.",
			"recommended_amount":  5000,
			"next_steps":          "Request the repair shop estimate and issue payment.",
		})
}

func TestRun_PopulatesBothResults(t *testing.T) {
	stub := conformingStub()
	r, err := NewClaimsRunner(stub)
	require.NoError(t, err)

	state, err := r.Run(context.Background(), testInput())
	require.NoError(t, err)

	require.NotNil(t, state.TriageResult)
	require.NotNil(t, state.SettlementRecommendation)
	assert.Equal(t, claim.SeverityMedium, state.TriageResult.Severity)
	assert.GreaterOrEqual(t, state.SettlementRecommendation.RecommendedAmount, 0.0)
	assert.Equal(t, 5000.0, state.SettlementRecommendation.RecommendedAmount)
	assert.Equal(t, testInput(), state.ClaimData)
}

func TestRun_ShortDescriptionFailsBeforeAnyExternalCall(t *testing.T) {
	stub := conformingStub()
	r, err := NewClaimsRunner(stub)
	require.NoError(t, err)

	in := testInput()
	in.IncidentDescription = "too short"

	_, err = r.Run(context.Background(), in)
	require.Error(t, err)
	assert.True(t, IsInputValidation(err))
	assert.Empty(t, stub.Calls(), "reasoner must not be invoked for invalid input")
}

func TestRun_TriageFailureSkipsRecommend(t *testing.T) {
	stub := conformingStub().Fail("TriageResult", errors.New("model unavailable"))
	r, err := NewClaimsRunner(stub)
	require.NoError(t, err)

	_, err = r.Run(context.Background(), testInput())
	require.Error(t, err)
	assert.True(t, IsReasonerFailure(err))

	// Sequencing dependency: the recommend node must never be invoked.
	assert.False(t, stub.CalledFor("SettlementRecommendation"))
}

func TestRun_NonConformingTriageOutputFails(t *testing.T) {
	stub := conformingStub().Respond("TriageResult", map[string]any{
		// severity is missing
		"assessment":  "looks odd",
		"fraud_flags": []any{},
	})
	r, err := NewClaimsRunner(stub)
	require.NoError(t, err)

	state, err := r.Run(context.Background(), testInput())
	require.Error(t, err)
	assert.True(t, IsInputValidation(err))

	// No partial patch was merged: failure yields the zero state.
	assert.Nil(t, state.TriageResult)
	assert.Nil(t, state.SettlementRecommendation)
	assert.False(t, stub.CalledFor("SettlementRecommendation"))
}

func TestRun_PatchEmissionOrder(t *testing.T) {
	stub := conformingStub()
	r, err := NewClaimsRunner(stub)
	require.NoError(t, err)
	require.NoError(t, testInput().Validate())

	var order []NodeName
	for step := range r.graph.Execute(context.Background(), claim.NewWorkflowState(testInput())) {
		require.NoError(t, step.Err)
		order = append(order, step.Node)

		switch step.Node {
		case NodeTriage:
			assert.NotNil(t, step.Patch.TriageResult)
			assert.Nil(t, step.Patch.SettlementRecommendation)
		case NodeRecommend:
			assert.Nil(t, step.Patch.TriageResult)
			assert.NotNil(t, step.Patch.SettlementRecommendation)
		}
	}

	assert.Equal(t, []NodeName{NodeTriage, NodeRecommend}, order)
}

func TestRun_DeterministicUnderFixedReasoner(t *testing.T) {
	stub := conformingStub()
	r, err := NewClaimsRunner(stub)
	require.NoError(t, err)

	first, err := r.Run(context.Background(), testInput())
	require.NoError(t, err)
	second, err := r.Run(context.Background(), testInput())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRun_RecommendWithoutTriageIsContractViolation(t *testing.T) {
	// Wire a broken graph: recommend is the entry node.
	stub := conformingStub()
	g := NewGraph()
	require.NoError(t, g.AddNode(RecommendNode(stub)))
	require.NoError(t, g.SetEntry(NodeRecommend))
	require.NoError(t, g.AddEdge(NodeRecommend, End))

	r, err := NewRunner(g)
	require.NoError(t, err)

	_, err = r.Run(context.Background(), testInput())
	require.Error(t, err)
	assert.True(t, IsContractViolation(err))
	assert.False(t, stub.CalledFor("SettlementRecommendation"),
		"precondition check must precede the reasoner call")
}

func TestRun_CancelledContext(t *testing.T) {
	stub := conformingStub()
	r, err := NewClaimsRunner(stub)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = r.Run(ctx, testInput())
	require.Error(t, err)
	assert.True(t, IsCancelled(err))
}

func TestRun_ConcurrentRunsAreIndependent(t *testing.T) {
	stub := conformingStub()
	r, err := NewClaimsRunner(stub)
	require.NoError(t, err)

	done := make(chan claim.WorkflowState, 4)
	for i := 0; i < 4; i++ {
		go func() {
			state, runErr := r.Run(context.Background(), testInput())
			assert.NoError(t, runErr)
			done <- state
		}()
	}

	first := <-done
	for i := 1; i < 4; i++ {
		assert.Equal(t, first, <-done)
	}
}

func TestRun_FraudFlagsReachRecommendPrompt(t *testing.T) {
	stub := conformingStub().Respond("TriageResult", map[string]any{
		"assessment":  "Inconsistent timeline in the description.",
		"severity":    "High",
		"fraud_flags": []any{"late report", "conflicting statements"},
	})
	r, err := NewClaimsRunner(stub)
	require.NoError(t, err)

	_, err = r.Run(context.Background(), testInput())
	require.NoError(t, err)

	var recommendPrompt string
	for _, c := range stub.Calls() {
		if c.Contract == "SettlementRecommendation" {
			recommendPrompt = c.Prompt
		}
	}
	require.NotEmpty(t, recommendPrompt)
	assert.Contains(t, recommendPrompt, "High")
	assert.Contains(t, recommendPrompt, "late report")
	assert.Contains(t, recommendPrompt, "conflicting statements")
}
