package startapplication

import (
	"brokerage-portal/internal/common/validation"
	"brokerage-portal/internal/models"
)

type Input struct {
	LeadID    string `json:"leadId"`
	AdvisorID string `json:"advisorId"`
}

type Output struct {
	TicketID     string              `json:"ticketId"`
	TicketStatus models.TicketStatus `json:"ticketStatus"`
	Applicant    string              `json:"applicantName"`
}

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"leadId", "advisorId"},
		Properties: map[string]validation.Property{
			"leadId":    {Type: "string", MinLength: validation.IntPtr(1)},
			"advisorId": {Type: "string", MinLength: validation.IntPtr(1)},
		},
		AdditionalProperties: true,
	}
}
