// internal/models/lead.go
package models

import "time"

type LeadStatus string

const (
	LeadOpen   LeadStatus = "open"
	LeadClosed LeadStatus = "closed"
)

type FollowUp struct {
	ID          string    `json:"id"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
}

type Lead struct {
	ID        string     `json:"id"`
	ContactID string     `json:"contactId"`
	AdvisorID string     `json:"advisorId"`
	Status    LeadStatus `json:"status"`
	FollowUps []FollowUp `json:"followUps"`
	ClosedAt  *time.Time `json:"closedAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

type Contact struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Country   string    `json:"country,omitempty"`
	Company   string    `json:"company,omitempty"`
	AdvisorID string    `json:"advisorId,omitempty"`
	CRMID     string    `json:"crmId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (c *Contact) FullName() string {
	return c.FirstName + " " + c.LastName
}
