package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/clemhq/clem/internal/claim"
)

// Status transition failures. UpdateStatus wraps these so callers can
// tell a bad request from a conflict.
var (
	ErrInvalidStatus = errors.New("invalid target status")
	ErrNotPending    = errors.New("claim is not PENDING")
)

// Claim is one persisted claim row: the submitted input plus the workflow
// results, a generated identifier, lifecycle status, and timestamps.
type Claim struct {
	ID                       string                         `json:"id"`
	ClaimantName             string                         `json:"claimant_name"`
	PolicyNumber             string                         `json:"policy_number"`
	IncidentDate             string                         `json:"incident_date"`
	IncidentDescription      string                         `json:"incident_description"`
	TriageResult             claim.TriageResult             `json:"triage_result"`
	SettlementRecommendation claim.SettlementRecommendation `json:"settlement_recommendation"`
	SettlementAmount         float64                        `json:"settlement_amount"`
	Status                   string                         `json:"status"`
	CreatedAt                time.Time                      `json:"created_at"`
	UpdatedAt                time.Time                      `json:"updated_at"`
}

// WriteClaim inserts a processed claim.
//
// The triage and settlement payloads are serialized to canonical JSON so
// identical workflow output always produces identical rows.
func (s *Store) WriteClaim(ctx context.Context, c Claim) error {
	triageJSON, err := MarshalCanonical(triageMap(c.TriageResult))
	if err != nil {
		return fmt.Errorf("write claim: marshal triage result: %w", err)
	}
	settlementJSON, err := MarshalCanonical(settlementMap(c.SettlementRecommendation))
	if err != nil {
		return fmt.Errorf("write claim: marshal settlement recommendation: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO claims
		(id, claimant_name, policy_number, incident_date, incident_description,
		 triage_result, settlement_recommendation, settlement_amount, status,
		 created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		c.ID,
		c.ClaimantName,
		c.PolicyNumber,
		c.IncidentDate,
		c.IncidentDescription,
		string(triageJSON),
		string(settlementJSON),
		c.SettlementAmount,
		c.Status,
		c.CreatedAt.UTC().Format(time.RFC3339Nano),
		c.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("write claim: %w", err)
	}
	return nil
}

// UpdateStatus applies a lifecycle transition. Only PENDING claims may
// transition, and only to APPROVED or REJECTED.
func (s *Store) UpdateStatus(ctx context.Context, id, status string) error {
	if status != StatusApproved && status != StatusRejected {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE claims
		SET status = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`, status, time.Now().UTC().Format(time.RFC3339Nano), id, StatusPending)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if n == 0 {
		// Distinguish a missing claim from one already decided.
		if _, err := s.GetClaim(ctx, id); errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("claim %s: %w", id, ErrNotPending)
	}
	return nil
}

// triageMap renders a triage result as a JSON object for canonical
// serialization.
func triageMap(t claim.TriageResult) map[string]any {
	return map[string]any{
		"assessment":  t.Assessment,
		"severity":    t.Severity,
		"fraud_flags": t.FraudFlags,
	}
}

// settlementMap renders a settlement recommendation as a JSON object for
// canonical serialization.
func settlementMap(r claim.SettlementRecommendation) map[string]any {
	return map[string]any{
		"recommendation_text": r.RecommendationText,
		"recommended_amount":  r.RecommendedAmount,
		"next_steps":          r.NextSteps,
	}
}
