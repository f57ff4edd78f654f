package accountoverview

import (
	"brokerage-portal/internal/common/validation"
	"brokerage-portal/internal/models"
)

type Input struct {
	AdvisorID string `json:"advisorId"`
}

type Output struct {
	Accounts     []models.AccountView `json:"accounts"`
	AccountCount int                  `json:"accountCount"`
	TotalNAV     string               `json:"totalNav"`
	Unreported   []string             `json:"unreportedAccounts"`
}

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type: "object",
		Properties: map[string]validation.Property{
			"advisorId": {
				Type:        "string",
				Description: "Restrict the overview to one advisor; empty lists every account",
			},
		},
		AdditionalProperties: true,
	}
}
