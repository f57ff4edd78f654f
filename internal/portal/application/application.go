// Package application validates, signs off and submits the broker account
// application attached to a ticket.
package application

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"brokerage-portal/internal/common/validation"
	"brokerage-portal/internal/models"
	"brokerage-portal/internal/portal/gateway"
)

//go:embed application.schema.json
var schemaJSON string

var schema = validation.MustCompile(schemaJSON)

var (
	ErrInvalidApplication = errors.New("application is invalid")
	ErrSignatureMismatch  = errors.New("signature does not match holder name")
	ErrAlreadySubmitted   = errors.New("application already submitted")
	ErrTicketClosed       = errors.New("ticket is closed")
)

// ValidationError lists every schema or holder rule the application broke.
type ValidationError struct {
	Errors []validation.ValidationError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, v := range e.Errors {
		msgs = append(msgs, v.Message)
	}
	return fmt.Sprintf("%v: %s", ErrInvalidApplication, strings.Join(msgs, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrInvalidApplication }

// Validate checks app against the embedded schema and the per-type holder
// rules.
func Validate(app *models.Application) error {
	res, err := schema.Validate(app)
	if err != nil {
		return err
	}
	if !res.Valid {
		return &ValidationError{Errors: res.Errors}
	}

	var broken []validation.ValidationError
	rule := func(field, msg string) {
		broken = append(broken, validation.ValidationError{Field: field, Message: msg, Code: "HOLDER_RULE"})
	}
	switch app.CustomerType {
	case models.CustomerIndividual:
		if len(app.Holders) != 1 {
			rule("holders", fmt.Sprintf("INDIVIDUAL needs exactly 1 holder, got %d", len(app.Holders)))
		}
	case models.CustomerJoint:
		if len(app.Holders) != 2 {
			rule("holders", fmt.Sprintf("JOINT needs exactly 2 holders, got %d", len(app.Holders)))
		}
	case models.CustomerOrg:
		if app.Organization == nil {
			rule("organization", "ORG needs an organization")
		}
		if len(app.Associates) == 0 {
			rule("associates", "ORG needs at least one authorized associate")
		}
	}
	if len(broken) > 0 {
		return &ValidationError{Errors: broken}
	}
	return nil
}

// Finalize requires each signer's signature to be their full name exactly.
func Finalize(app *models.Application) error {
	for i, h := range app.Signers() {
		if h.Signature != h.FullName() {
			return fmt.Errorf("%w: signer %d (%s)", ErrSignatureMismatch, i+1, h.FullName())
		}
	}
	return nil
}

type Service struct {
	tickets *gateway.TicketGateway
	now     func() time.Time
}

func NewService(tickets *gateway.TicketGateway, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{tickets: tickets, now: now}
}

// Submit validates and finalizes app, then stores it on the ticket.
func (s *Service) Submit(ctx context.Context, ticketID string, app models.Application) (*models.Application, error) {
	app.TicketID = ticketID
	if err := Validate(&app); err != nil {
		return nil, err
	}
	if err := Finalize(&app); err != nil {
		return nil, err
	}

	t, err := s.tickets.ReadByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if t.Status == models.TicketClosed {
		return nil, fmt.Errorf("%w: %s", ErrTicketClosed, ticketID)
	}
	if t.Application != nil && t.Application.SubmittedAt != nil {
		return nil, fmt.Errorf("%w: ticket %s", ErrAlreadySubmitted, ticketID)
	}

	now := s.now().UTC()
	app.SubmittedAt = &now
	if err := s.tickets.Update(ctx, ticketID, map[string]interface{}{
		"application": app,
		"updatedAt":   now,
	}); err != nil {
		return nil, err
	}
	return &app, nil
}
