package wizardstep

import (
	"brokerage-portal/internal/common/validation"
	"brokerage-portal/internal/portal/wizard"
)

const (
	ActionStart        = "start"
	ActionSelectTicket = "select-ticket"
	ActionLinkAccount  = "link-account"
	ActionReport       = "report"
	ActionForward      = "forward"
	ActionBackward     = "backward"
)

type Input struct {
	Action    string            `json:"action"`
	WizardID  string            `json:"wizardId,omitempty"`
	UserID    string            `json:"userId,omitempty"`
	UserEmail string            `json:"userEmail,omitempty"`
	TicketID  string            `json:"ticketId,omitempty"`
	AccountID string            `json:"accountId,omitempty"`
	Step      int               `json:"step,omitempty"`
	Readiness *wizard.Readiness `json:"readiness,omitempty"`
}

type Output struct {
	WizardID   string            `json:"wizardId"`
	Step       int               `json:"wizardStep"`
	StepName   string            `json:"wizardStepName"`
	Readiness  wizard.Readiness  `json:"wizardReadiness"`
	Selections map[string]string `json:"wizardSelections"`
	Final      bool              `json:"wizardFinal"`
}

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"action"},
		Properties: map[string]validation.Property{
			"action": {
				Type: "string",
				Enum: []string{
					ActionStart, ActionSelectTicket, ActionLinkAccount,
					ActionReport, ActionForward, ActionBackward,
				},
			},
			"wizardId":  {Type: "string"},
			"userId":    {Type: "string"},
			"userEmail": {Type: "string", Format: "email"},
			"ticketId":  {Type: "string"},
			"accountId": {Type: "string"},
			"step":      {Type: "integer", Minimum: validation.FloatPtr(1)},
			"readiness": {Type: "object"},
		},
		AdditionalProperties: true,
	}
}
