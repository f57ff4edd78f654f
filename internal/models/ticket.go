// internal/models/ticket.go
package models

import "time"

type TicketStatus string

const (
	TicketOpen    TicketStatus = "Open"
	TicketStarted TicketStatus = "Started"
	TicketOpened  TicketStatus = "Opened"
	TicketClosed  TicketStatus = "Closed"
)

var ticketTransitions = map[TicketStatus][]TicketStatus{
	TicketOpen:    {TicketStarted, TicketClosed},
	TicketStarted: {TicketOpened, TicketClosed},
	TicketOpened:  {TicketClosed},
}

// CanTransitionTo reports whether next is a legal successor of s.
// Closed has no successors.
func (s TicketStatus) CanTransitionTo(next TicketStatus) bool {
	for _, allowed := range ticketTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s TicketStatus) Valid() bool {
	switch s {
	case TicketOpen, TicketStarted, TicketOpened, TicketClosed:
		return true
	}
	return false
}

// Ticket is an account-opening request. Tickets are never deleted, only
// transitioned.
type Ticket struct {
	ID            string       `json:"id"`
	Status        TicketStatus `json:"status"`
	FirstName     string       `json:"firstName"`
	LastName      string       `json:"lastName"`
	AdvisorID     string       `json:"advisorId"`
	MasterAccount string       `json:"masterAccount,omitempty"`
	LeadID        string       `json:"leadId,omitempty"`
	AccountID     string       `json:"accountId,omitempty"`
	Application   *Application `json:"application,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

func (t *Ticket) ApplicantName() string {
	return t.FirstName + " " + t.LastName
}
