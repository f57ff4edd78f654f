// Package leads manages prospective clients up to the point an account
// application is started for them.
package leads

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"brokerage-portal/internal/common/logger"
	"brokerage-portal/internal/models"
	"brokerage-portal/internal/portal/gateway"

	"github.com/google/uuid"
)

var (
	ErrApplicationExists = errors.New("an application already exists for this lead")
	ErrLeadClosed        = errors.New("lead is closed")
	ErrFollowUpNotFound  = errors.New("follow-up not found")
	ErrInvalidContact    = errors.New("contact needs first name, last name and email")
)

// Indexer makes contacts searchable. search.ContactIndex satisfies it.
type Indexer interface {
	Index(ctx context.Context, contact models.Contact) error
}

type Service struct {
	gw      *gateway.Gateways
	ids     *gateway.IDGenerator
	indexer Indexer
	log     logger.Logger
	now     func() time.Time
}

func NewService(gw *gateway.Gateways, ids *gateway.IDGenerator, indexer Indexer, log logger.Logger, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	if ids == nil {
		ids = gateway.NewIDGenerator(now)
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Service{gw: gw, ids: ids, indexer: indexer, log: log, now: now}
}

// CreateLead stores a new contact and an open lead for it. Indexing the
// contact is best effort.
func (s *Service) CreateLead(ctx context.Context, contact models.Contact, advisorID string) (*models.Lead, error) {
	if strings.TrimSpace(contact.FirstName) == "" || strings.TrimSpace(contact.LastName) == "" || contact.Email == "" {
		return nil, ErrInvalidContact
	}
	now := s.now().UTC()

	contact.ID = s.ids.Next()
	contact.AdvisorID = advisorID
	contact.CreatedAt = now
	if _, err := s.gw.Contacts.Create(ctx, &contact); err != nil {
		return nil, fmt.Errorf("create contact: %w", err)
	}

	lead := models.Lead{
		ID:        s.ids.Next(),
		ContactID: contact.ID,
		AdvisorID: advisorID,
		Status:    models.LeadOpen,
		FollowUps: []models.FollowUp{},
		CreatedAt: now,
	}
	if _, err := s.gw.Leads.Create(ctx, &lead); err != nil {
		return nil, fmt.Errorf("create lead: %w", err)
	}

	if s.indexer != nil {
		if err := s.indexer.Index(ctx, contact); err != nil {
			s.log.Warn("contact not indexed", map[string]interface{}{
				"contactId": contact.ID,
				"error":     err.Error(),
			})
		}
	}
	return &lead, nil
}

// StartApplication opens a ticket for the lead's contact and closes the
// lead. A lead gets at most one ticket. A retry after the lead failed to
// close finishes closing it and returns the ticket already created.
func (s *Service) StartApplication(ctx context.Context, leadID, advisorID string) (*models.Ticket, error) {
	existing, err := s.gw.Tickets.FindByLead(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return s.resumeApplication(ctx, leadID, &existing[0])
	}

	lead, err := s.gw.Leads.ReadByID(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if lead.Status == models.LeadClosed {
		return nil, fmt.Errorf("%w: %s", ErrLeadClosed, leadID)
	}
	contact, err := s.gw.Contacts.ReadByID(ctx, lead.ContactID)
	if err != nil {
		return nil, err
	}
	if advisorID == "" {
		advisorID = lead.AdvisorID
	}

	ticket := &models.Ticket{
		FirstName: contact.FirstName,
		LastName:  contact.LastName,
		AdvisorID: advisorID,
		LeadID:    leadID,
	}
	if _, err := s.gw.Tickets.Create(ctx, ticket); err != nil {
		return nil, fmt.Errorf("create ticket: %w", err)
	}

	if err := s.closeLead(ctx, leadID); err != nil {
		return nil, err
	}
	return ticket, nil
}

func (s *Service) resumeApplication(ctx context.Context, leadID string, ticket *models.Ticket) (*models.Ticket, error) {
	lead, err := s.gw.Leads.ReadByID(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if lead.Status == models.LeadClosed {
		return nil, fmt.Errorf("%w: lead %s has ticket %s", ErrApplicationExists, leadID, ticket.ID)
	}
	if err := s.closeLead(ctx, leadID); err != nil {
		return nil, err
	}
	s.log.Info("closed lead left open by an earlier application", map[string]interface{}{
		"leadId":   leadID,
		"ticketId": ticket.ID,
	})
	return ticket, nil
}

func (s *Service) closeLead(ctx context.Context, leadID string) error {
	if err := s.gw.Leads.Update(ctx, leadID, map[string]interface{}{
		"status":   models.LeadClosed,
		"closedAt": s.now().UTC(),
	}); err != nil {
		return fmt.Errorf("close lead %s: %w", leadID, err)
	}
	return nil
}

func (s *Service) AddFollowUp(ctx context.Context, leadID string, date time.Time, description string) (*models.FollowUp, error) {
	lead, err := s.gw.Leads.ReadByID(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if lead.Status == models.LeadClosed {
		return nil, fmt.Errorf("%w: %s", ErrLeadClosed, leadID)
	}

	fu := models.FollowUp{ID: uuid.NewString(), Date: date.UTC(), Description: description}
	followUps := append(append([]models.FollowUp(nil), lead.FollowUps...), fu)
	if err := s.gw.Leads.Update(ctx, leadID, map[string]interface{}{"followUps": followUps}); err != nil {
		return nil, err
	}
	return &fu, nil
}

func (s *Service) CompleteFollowUp(ctx context.Context, leadID, followUpID string) error {
	lead, err := s.gw.Leads.ReadByID(ctx, leadID)
	if err != nil {
		return err
	}

	followUps := append([]models.FollowUp(nil), lead.FollowUps...)
	found := false
	for i := range followUps {
		if followUps[i].ID == followUpID {
			followUps[i].Completed = true
			found = true
		}
	}
	if !found {
		return fmt.Errorf("%w: %s on lead %s", ErrFollowUpNotFound, followUpID, leadID)
	}
	return s.gw.Leads.Update(ctx, leadID, map[string]interface{}{"followUps": followUps})
}
