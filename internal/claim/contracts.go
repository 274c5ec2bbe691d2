package claim

import (
	"github.com/clemhq/clem/internal/schema"
)

// MinDescriptionLen is the minimum rune length of an incident description.
const MinDescriptionLen = 20

// InputContract describes valid submitted claim data.
func InputContract() schema.Contract {
	return schema.Contract{
		Name: "ClaimInput",
		Fields: []schema.Field{
			{Name: "claimant_name", Kind: schema.KindString, MinLen: 1},
			{Name: "policy_number", Kind: schema.KindString, MinLen: 1},
			{Name: "incident_date", Kind: schema.KindDate},
			{Name: "incident_description", Kind: schema.KindString, MinLen: MinDescriptionLen},
		},
	}
}

// TriageContract describes the output the triage node must produce.
func TriageContract() schema.Contract {
	return schema.Contract{
		Name: "TriageResult",
		Fields: []schema.Field{
			{
				Name:        "assessment",
				Kind:        schema.KindString,
				Description: "A summary of the incident and initial liability assessment.",
			},
			{
				Name: "severity",
				Kind: schema.KindEnum,
				Enum: []string{SeverityLow, SeverityMedium, SeverityHigh},
			},
			{
				Name:        "fraud_flags",
				Kind:        schema.KindStringList,
				Description: "List of any potential fraud indicators, or an empty array if none.",
			},
		},
	}
}

// SettlementContract describes the output the recommend node must produce.
func SettlementContract() schema.Contract {
	return schema.Contract{
		Name: "SettlementRecommendation",
		Fields: []schema.Field{
			{
				Name:        "recommendation_text",
				Kind:        schema.KindString,
				Description: "A detailed explanation for the settlement recommendation.",
			},
			{
				Name:        "recommended_amount",
				Kind:        schema.KindNumber,
				NonNegative: true,
				Description: "The recommended settlement amount in USD.",
			},
			{
				Name:        "next_steps",
				Kind:        schema.KindString,
				Description: "The recommended next steps for the human adjuster.",
			},
		},
	}
}

// ValidateInput checks submitted claim data against InputContract and
// returns the typed form.
func ValidateInput(value map[string]any) (Input, error) {
	out, err := schema.Validate(value, InputContract())
	if err != nil {
		return Input{}, err
	}
	return Input{
		ClaimantName:        out["claimant_name"].(string),
		PolicyNumber:        out["policy_number"].(string),
		IncidentDate:        out["incident_date"].(string),
		IncidentDescription: out["incident_description"].(string),
	}, nil
}

// asMap renders an Input back to its JSON-object form for contract
// validation.
func (in Input) asMap() map[string]any {
	return map[string]any{
		"claimant_name":        in.ClaimantName,
		"policy_number":        in.PolicyNumber,
		"incident_date":        in.IncidentDate,
		"incident_description": in.IncidentDescription,
	}
}

// Validate checks a typed Input against InputContract.
func (in Input) Validate() error {
	_, err := schema.Validate(in.asMap(), InputContract())
	return err
}

// TriageFromMap binds a contract-validated object to a TriageResult.
// The value must already have passed TriageContract validation.
func TriageFromMap(m map[string]any) TriageResult {
	flags := m["fraud_flags"].([]string)
	if flags == nil {
		flags = []string{}
	}
	return TriageResult{
		Assessment: m["assessment"].(string),
		Severity:   m["severity"].(string),
		FraudFlags: flags,
	}
}

// SettlementFromMap binds a contract-validated object to a
// SettlementRecommendation. The value must already have passed
// SettlementContract validation.
func SettlementFromMap(m map[string]any) SettlementRecommendation {
	return SettlementRecommendation{
		RecommendationText: m["recommendation_text"].(string),
		RecommendedAmount:  m["recommended_amount"].(float64),
		NextSteps:          m["next_steps"].(string),
	}
}
