package createlead

import (
	"brokerage-portal/internal/common/validation"
	"brokerage-portal/internal/models"
)

type Input struct {
	AdvisorID string         `json:"advisorId"`
	Contact   models.Contact `json:"contact"`
}

type Output struct {
	LeadID    string `json:"leadId"`
	ContactID string `json:"contactId"`
}

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"advisorId", "contact"},
		Properties: map[string]validation.Property{
			"advisorId": {Type: "string", MinLength: validation.IntPtr(1)},
			"contact": {
				Type:     "object",
				Required: []string{"firstName", "lastName", "email"},
				Properties: map[string]validation.Property{
					"firstName": {Type: "string", MinLength: validation.IntPtr(1)},
					"lastName":  {Type: "string", MinLength: validation.IntPtr(1)},
					"email":     {Type: "string", Format: "email"},
					"phone":     {Type: "string"},
					"country":   {Type: "string"},
					"company":   {Type: "string"},
				},
			},
		},
		AdditionalProperties: true,
	}
}
