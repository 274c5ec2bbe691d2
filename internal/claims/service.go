// Package claims orchestrates claim processing around the workflow core:
// validate input, run the workflow, persist the result, notify
// subscribers. The workflow itself knows nothing about storage or
// transport.
package claims

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/clemhq/clem/internal/claim"
	"github.com/clemhq/clem/internal/store"
	"github.com/clemhq/clem/internal/workflow"
)

// Notifier receives each successfully persisted claim. Implementations
// own their transport and must serialize their own writes.
type Notifier interface {
	NotifyClaim(c store.Claim)
}

// NopNotifier discards notifications.
type NopNotifier struct{}

func (NopNotifier) NotifyClaim(store.Claim) {}

// Clock abstracts time for deterministic tests.
type Clock func() time.Time

// Service processes submitted claims end to end.
//
// A failed workflow run persists nothing and notifies nobody: the error
// is returned to the caller untouched so it can decide how to render it.
type Service struct {
	runner   *workflow.Runner
	store    *store.Store
	notifier Notifier
	ids      IDGenerator
	now      Clock
	log      *slog.Logger
}

// ServiceOption configures optional Service collaborators.
type ServiceOption func(*Service)

// WithNotifier sets the notifier invoked after each persisted claim.
func WithNotifier(n Notifier) ServiceOption {
	return func(s *Service) { s.notifier = n }
}

// WithIDGenerator overrides the claim ID generator (for testing).
func WithIDGenerator(g IDGenerator) ServiceOption {
	return func(s *Service) { s.ids = g }
}

// WithClock overrides the timestamp source (for testing).
func WithClock(c Clock) ServiceOption {
	return func(s *Service) { s.now = c }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) { s.log = l }
}

// NewService wires a claims service. Defaults: UUIDv7 IDs, no
// notifications, wall-clock timestamps, slog default logger.
func NewService(runner *workflow.Runner, st *store.Store, opts ...ServiceOption) *Service {
	s := &Service{
		runner:   runner,
		store:    st,
		notifier: NopNotifier{},
		ids:      UUIDv7Generator{},
		now:      time.Now,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Process runs the workflow for one submitted claim and persists the
// result.
//
// The returned claim carries the generated ID, PENDING status, and
// timestamps. On any workflow failure the error propagates unwrapped and
// nothing is persisted or broadcast.
func (s *Service) Process(ctx context.Context, in claim.Input) (store.Claim, error) {
	s.log.Info("processing claim", "policy_number", in.PolicyNumber)

	state, err := s.runner.Run(ctx, in)
	if err != nil {
		s.log.Warn("workflow run failed", "policy_number", in.PolicyNumber, "error", err)
		return store.Claim{}, err
	}

	// A successful run always carries both results; anything else is a
	// broken runner.
	if state.TriageResult == nil || state.SettlementRecommendation == nil {
		return store.Claim{}, fmt.Errorf("workflow returned incomplete state for policy %s", in.PolicyNumber)
	}

	now := s.now().UTC()
	rec := store.Claim{
		ID:                       s.ids.Generate(),
		ClaimantName:             in.ClaimantName,
		PolicyNumber:             in.PolicyNumber,
		IncidentDate:             in.IncidentDate,
		IncidentDescription:      in.IncidentDescription,
		TriageResult:             *state.TriageResult,
		SettlementRecommendation: *state.SettlementRecommendation,
		SettlementAmount:         state.SettlementRecommendation.RecommendedAmount,
		Status:                   store.StatusPending,
		CreatedAt:                now,
		UpdatedAt:                now,
	}

	if err := s.store.WriteClaim(ctx, rec); err != nil {
		return store.Claim{}, fmt.Errorf("persist claim: %w", err)
	}
	s.log.Info("claim persisted", "claim_id", rec.ID, "severity", rec.TriageResult.Severity)

	s.notifier.NotifyClaim(rec)
	return rec, nil
}

// List returns all persisted claims, newest first.
func (s *Service) List(ctx context.Context) ([]store.Claim, error) {
	return s.store.ListClaims(ctx)
}

// Get returns one claim by ID.
func (s *Service) Get(ctx context.Context, id string) (store.Claim, error) {
	return s.store.GetClaim(ctx, id)
}

// SetStatus applies a lifecycle transition and returns the updated claim.
func (s *Service) SetStatus(ctx context.Context, id, status string) (store.Claim, error) {
	if err := s.store.UpdateStatus(ctx, id, status); err != nil {
		return store.Claim{}, err
	}
	updated, err := s.store.GetClaim(ctx, id)
	if err != nil {
		return store.Claim{}, err
	}
	s.notifier.NotifyClaim(updated)
	return updated, nil
}
