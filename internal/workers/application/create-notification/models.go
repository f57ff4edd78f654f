package createnotification

import (
	"brokerage-portal/internal/common/validation"
	"brokerage-portal/internal/models"
)

type Input struct {
	Type         string              `json:"notificationType"`
	TicketID     string              `json:"ticketId"`
	TicketStatus models.TicketStatus `json:"ticketStatus"`
	UserEmail    string              `json:"userEmail,omitempty"`
}

type Output struct {
	NotificationID string              `json:"notificationId"`
	Notification   models.Notification `json:"notification"`
}

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"notificationType", "ticketId", "ticketStatus"},
		Properties: map[string]validation.Property{
			"notificationType": {
				Type: "string",
				Enum: []string{string(models.NotificationOpeningAccount), string(models.NotificationAccountOpened)},
			},
			"ticketId": {Type: "string", MinLength: validation.IntPtr(1)},
			"ticketStatus": {
				Type: "string",
				Enum: []string{
					string(models.TicketOpen), string(models.TicketStarted),
					string(models.TicketOpened), string(models.TicketClosed),
				},
			},
			"userEmail": {Type: "string"},
		},
		AdditionalProperties: true,
	}
}
