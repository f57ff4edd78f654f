// internal/models/account.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Account struct {
	ID            string    `json:"id"`
	TicketID      string    `json:"ticketId"`
	AdvisorID     string    `json:"advisorId"`
	AccountNumber string    `json:"accountNumber"`
	Username      string    `json:"username,omitempty"`
	Password      string    `json:"password,omitempty"`
	FeeTemplate   bool      `json:"feeTemplate"`
	CreatedAt     time.Time `json:"createdAt"`
}

// NAVReport is one row of the broker's net-asset-value report.
type NAVReport struct {
	AccountNumber string          `json:"accountNumber"`
	Alias         string          `json:"alias"`
	NAV           decimal.Decimal `json:"nav"`
	Status        string          `json:"status"`
	AsOf          time.Time       `json:"asOf"`
}

// AccountView is an Account with read-only report overlays. It is never
// written back to the store.
type AccountView struct {
	Account
	ContactName string           `json:"contactName,omitempty"`
	Alias       string           `json:"alias,omitempty"`
	NAV         *decimal.Decimal `json:"nav,omitempty"`
	Status      string           `json:"status,omitempty"`
}
