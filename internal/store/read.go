package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when no claim matches the requested ID.
var ErrNotFound = errors.New("claim not found")

const claimColumns = `
	id, claimant_name, policy_number, incident_date, incident_description,
	triage_result, settlement_recommendation, settlement_amount, status,
	created_at, updated_at`

// ListClaims returns all claims, newest first. Returns an empty slice
// (not nil) when the store is empty.
func (s *Store) ListClaims(ctx context.Context) ([]Claim, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT`+claimColumns+`
		FROM claims
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query claims: %w", err)
	}
	defer rows.Close()

	claims := []Claim{}
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, err
		}
		claims = append(claims, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate claims: %w", err)
	}
	return claims, nil
}

// GetClaim returns one claim by ID, or ErrNotFound.
func (s *Store) GetClaim(ctx context.Context, id string) (Claim, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT`+claimColumns+`
		FROM claims
		WHERE id = ?
	`, id)

	c, err := scanClaim(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Claim{}, ErrNotFound
	}
	return c, err
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanClaim(row scanner) (Claim, error) {
	var (
		c                    Claim
		triageJSON           string
		settlementJSON       string
		createdAt, updatedAt string
	)

	err := row.Scan(
		&c.ID,
		&c.ClaimantName,
		&c.PolicyNumber,
		&c.IncidentDate,
		&c.IncidentDescription,
		&triageJSON,
		&settlementJSON,
		&c.SettlementAmount,
		&c.Status,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Claim{}, err
		}
		return Claim{}, fmt.Errorf("scan claim: %w", err)
	}

	if err := json.Unmarshal([]byte(triageJSON), &c.TriageResult); err != nil {
		return Claim{}, fmt.Errorf("decode triage result for claim %s: %w", c.ID, err)
	}
	if err := json.Unmarshal([]byte(settlementJSON), &c.SettlementRecommendation); err != nil {
		return Claim{}, fmt.Errorf("decode settlement recommendation for claim %s: %w", c.ID, err)
	}

	if c.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return Claim{}, fmt.Errorf("parse created_at for claim %s: %w", c.ID, err)
	}
	if c.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return Claim{}, fmt.Errorf("parse updated_at for claim %s: %w", c.ID, err)
	}

	// Keep the JSON shape stable for API consumers.
	if c.TriageResult.FraudFlags == nil {
		c.TriageResult.FraudFlags = []string{}
	}
	return c, nil
}
