package computeriskprofile

import (
	"brokerage-portal/internal/common/validation"
	"brokerage-portal/internal/models"
)

type Input struct {
	Name    string         `json:"name"`
	OwnerID string         `json:"ownerId"`
	Answers map[string]int `json:"answers"`
}

type Output struct {
	RiskProfileID string             `json:"riskProfileId"`
	Score         string             `json:"riskScore"`
	Archetype     string             `json:"archetype"`
	Allocation    models.Allocation  `json:"allocation"`
	AverageYield  string             `json:"averageYield"`
	Profile       models.RiskProfile `json:"riskProfile"`
}

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"name", "answers"},
		Properties: map[string]validation.Property{
			"name": {
				Type:        "string",
				Description: "Profile name shown to the advisor",
				MinLength:   validation.IntPtr(1),
				MaxLength:   validation.IntPtr(200),
			},
			"ownerId": {
				Type:        "string",
				Description: "Ticket or contact the profile belongs to",
			},
			"answers": {
				Type:        "object",
				Description: "Questionnaire answers keyed by question",
			},
		},
		AdditionalProperties: true,
	}
}
