// Package claim defines the claims-processing domain types, their
// structural contracts, and the workflow state accumulator.
package claim

// Severity levels a triage assessment may assign.
const (
	SeverityLow    = "Low"
	SeverityMedium = "Medium"
	SeverityHigh   = "High"
)

// Input is the claim data submitted by a claimant. Immutable once
// submitted; the workflow never mutates it.
type Input struct {
	ClaimantName        string `json:"claimant_name"`
	PolicyNumber        string `json:"policy_number"`
	IncidentDate        string `json:"incident_date"`
	IncidentDescription string `json:"incident_description"`
}

// TriageResult is the structured assessment produced by the triage node.
// Produced exactly once per run; never mutated afterward.
type TriageResult struct {
	// Assessment summarizes the incident and initial liability.
	Assessment string `json:"assessment"`

	// Severity is one of SeverityLow, SeverityMedium, SeverityHigh.
	Severity string `json:"severity"`

	// FraudFlags lists potential fraud indicators, in the order the
	// assessment raised them. Empty (not nil) when there are none.
	FraudFlags []string `json:"fraud_flags"`
}

// SettlementRecommendation is the structured recommendation produced by
// the recommend node for a human adjuster.
type SettlementRecommendation struct {
	// RecommendationText explains the recommendation in detail.
	RecommendationText string `json:"recommendation_text"`

	// RecommendedAmount is the recommended settlement in currency units.
	// Never negative.
	RecommendedAmount float64 `json:"recommended_amount"`

	// NextSteps describes what the adjuster should do next.
	NextSteps string `json:"next_steps"`
}
