package claims

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clemhq/clem/internal/claim"
	"github.com/clemhq/clem/internal/reasoner"
	"github.com/clemhq/clem/internal/store"
	"github.com/clemhq/clem/internal/workflow"
)

// recordingNotifier captures broadcast claims.
type recordingNotifier struct {
	claims []store.Claim
}

func (n *recordingNotifier) NotifyClaim(c store.Claim) {
	n.claims = append(n.claims, c)
}

func testInput() claim.Input {
	return claim.Input{
		ClaimantName:        "John Doe",
		PolicyNumber:        "POL123",
		IncidentDate:        "2024-01-15",
		IncidentDescription: "Car accident on highway causing significant damage.",
	}
}

func conformingStub() *reasoner.Stub {
	return reasoner.NewStub().
		Respond("TriageResult", map[string]any{
			"assessment":  "Rear-end collision; claimant not at fault.",
			"severity":    "Medium",
			"fraud_flags": []any{},
		}).
		Respond("SettlementRecommendation", map[string]any{
			"recommendation_text": "Approve repair costs.",
			"recommended_amount":  5000,
			"next_steps":          "Request repair estimate.",
		})
}

func newTestService(t *testing.T, stub *reasoner.Stub, notifier Notifier) *Service {
	t.Helper()

	runner, err := workflow.NewClaimsRunner(stub)
	require.NoError(t, err)

	st, err := store.Open(t.TempDir() + "/claims.db")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	fixed := time.Date(2024, 1, 16, 10, 30, 0, 0, time.UTC)
	return NewService(runner, st,
		WithNotifier(notifier),
		WithIDGenerator(NewFixedGenerator("claim-1", "claim-2")),
		WithClock(func() time.Time { return fixed }),
	)
}

func TestProcess_PersistsAndNotifies(t *testing.T) {
	notifier := &recordingNotifier{}
	svc := newTestService(t, conformingStub(), notifier)

	rec, err := svc.Process(context.Background(), testInput())
	require.NoError(t, err)

	assert.Equal(t, "claim-1", rec.ID)
	assert.Equal(t, store.StatusPending, rec.Status)
	assert.Equal(t, 5000.0, rec.SettlementAmount)
	assert.Equal(t, claim.SeverityMedium, rec.TriageResult.Severity)

	stored, err := svc.Get(context.Background(), "claim-1")
	require.NoError(t, err)
	assert.Equal(t, rec, stored)

	require.Len(t, notifier.claims, 1)
	assert.Equal(t, rec, notifier.claims[0])
}

func TestProcess_FailedRunPersistsNothing(t *testing.T) {
	notifier := &recordingNotifier{}
	stub := conformingStub().Fail("TriageResult", errors.New("model down"))
	svc := newTestService(t, stub, notifier)

	_, err := svc.Process(context.Background(), testInput())
	require.Error(t, err)
	assert.True(t, workflow.IsReasonerFailure(err))

	claims, listErr := svc.List(context.Background())
	require.NoError(t, listErr)
	assert.Empty(t, claims)
	assert.Empty(t, notifier.claims)
}

func TestProcess_InvalidInputPersistsNothing(t *testing.T) {
	notifier := &recordingNotifier{}
	svc := newTestService(t, conformingStub(), notifier)

	in := testInput()
	in.IncidentDescription = "too short"

	_, err := svc.Process(context.Background(), in)
	require.Error(t, err)
	assert.True(t, workflow.IsInputValidation(err))
	assert.Empty(t, notifier.claims)
}

func TestSetStatus_NotifiesTransition(t *testing.T) {
	notifier := &recordingNotifier{}
	svc := newTestService(t, conformingStub(), notifier)

	_, err := svc.Process(context.Background(), testInput())
	require.NoError(t, err)

	updated, err := svc.SetStatus(context.Background(), "claim-1", store.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, store.StatusApproved, updated.Status)

	require.Len(t, notifier.claims, 2)
	assert.Equal(t, store.StatusApproved, notifier.claims[1].Status)
}

func TestFixedGenerator_Sequence(t *testing.T) {
	gen := NewFixedGenerator("a", "b")
	assert.Equal(t, "a", gen.Generate())
	assert.Equal(t, "b", gen.Generate())
	assert.Panics(t, func() { gen.Generate() })
}
