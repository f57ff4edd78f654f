package submitapplication

import (
	"brokerage-portal/internal/common/validation"
	"brokerage-portal/internal/models"
)

type Input struct {
	TicketID    string             `json:"ticketId"`
	Application models.Application `json:"application"`
}

type Output struct {
	TicketID     string             `json:"ticketId"`
	SubmittedAt  string             `json:"submittedAt"`
	CustomerType string             `json:"customerType"`
	Application  models.Application `json:"application"`
}

// GetInputSchema only checks the envelope. The application document has its
// own schema, applied by application.Validate.
func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"ticketId", "application"},
		Properties: map[string]validation.Property{
			"ticketId":    {Type: "string", MinLength: validation.IntPtr(1)},
			"application": {Type: "object"},
		},
		AdditionalProperties: true,
	}
}
