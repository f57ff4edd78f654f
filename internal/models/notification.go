// internal/models/notification.go
package models

import "time"

type NotificationType string

const (
	NotificationOpeningAccount NotificationType = "opening_account"
	NotificationAccountOpened  NotificationType = "account_opened"
)

// Notification is an audit record of a ticket lifecycle transition.
type Notification struct {
	ID           string           `json:"id"`
	Type         NotificationType `json:"type"`
	UserEmail    string           `json:"userEmail"`
	TicketID     string           `json:"ticketId"`
	TicketStatus TicketStatus     `json:"ticketStatus"`
	CreatedAt    time.Time        `json:"createdAt"`
}
