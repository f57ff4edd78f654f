// internal/workers/application/send-notification/models.go
package sendnotification

import (
	"brokerage-portal/internal/common/validation"
	"brokerage-portal/internal/models"
)

type Input struct {
	NotificationType string              `json:"notificationType"`
	TicketID         string              `json:"ticketId"`
	TicketStatus     models.TicketStatus `json:"ticketStatus,omitempty"`
	UserID           string              `json:"userId,omitempty"`
	UserEmail        string              `json:"userEmail,omitempty"`
	Recipients       []string            `json:"recipients,omitempty"`
}

type Output struct {
	Status         string   `json:"status"` // "sent" or "disabled"
	Channels       []string `json:"channels"`
	EmailMessageID string   `json:"emailMessageId,omitempty"`
	SMSMessageID   string   `json:"smsMessageId,omitempty"`
	SentAt         string   `json:"sentAt"` // ISO 8601
}

const (
	StatusSent     = "sent"
	StatusDisabled = "disabled"
)

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"notificationType", "ticketId"},
		Properties: map[string]validation.Property{
			"notificationType": {
				Type: "string",
				Enum: []string{string(models.NotificationOpeningAccount), string(models.NotificationAccountOpened)},
			},
			"ticketId":     {Type: "string", MinLength: validation.IntPtr(1)},
			"ticketStatus": {Type: "string"},
			"userId":       {Type: "string"},
			"userEmail":    {Type: "string", Format: "email"},
			"recipients": {
				Type:  "array",
				Items: &validation.Property{Type: "string", Format: "email"},
			},
		},
		AdditionalProperties: true,
	}
}
