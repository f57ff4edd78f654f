// internal/models/application.go
package models

import "time"

type CustomerType string

const (
	CustomerIndividual CustomerType = "INDIVIDUAL"
	CustomerJoint      CustomerType = "JOINT"
	CustomerOrg        CustomerType = "ORG"
)

type MarginType string

const (
	MarginCash   MarginType = "CASH"
	MarginMargin MarginType = "MARGIN"
)

// Holder is an account holder or an organization's authorized associate.
type Holder struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	DateOfBirth string `json:"dateOfBirth"`
	Country     string `json:"country"`
	TaxID       string `json:"taxId,omitempty"`
	Title       string `json:"title,omitempty"`
	Signature   string `json:"signature,omitempty"`
}

func (h Holder) FullName() string {
	return h.FirstName + " " + h.LastName
}

type Organization struct {
	Name               string `json:"name"`
	RegistrationNumber string `json:"registrationNumber"`
	Country            string `json:"country"`
}

type AccountConfiguration struct {
	BaseCurrency         string     `json:"baseCurrency"`
	MarginType           MarginType `json:"marginType"`
	TradingPermissions   []string   `json:"tradingPermissions"`
	InvestmentObjectives []string   `json:"investmentObjectives"`
}

type AttachedDocument struct {
	DocumentID string       `json:"documentId"`
	Type       DocumentType `json:"type"`
	Name       string       `json:"name"`
}

// Application is the broker submission payload built across wizard steps.
type Application struct {
	TicketID      string               `json:"ticketId"`
	CustomerType  CustomerType         `json:"customerType"`
	Holders       []Holder             `json:"holders,omitempty"`
	Organization  *Organization        `json:"organization,omitempty"`
	Associates    []Holder             `json:"associates,omitempty"`
	Configuration AccountConfiguration `json:"configuration"`
	Documents     []AttachedDocument   `json:"documents"`
	SubmittedAt   *time.Time           `json:"submittedAt,omitempty"`
}

// Signers returns the people whose signature is required for the type.
func (a *Application) Signers() []Holder {
	if a.CustomerType == CustomerOrg {
		return a.Associates
	}
	return a.Holders
}
