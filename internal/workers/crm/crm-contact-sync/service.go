package crmcontactsync

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"brokerage-portal/internal/common/errors"
	chttp "brokerage-portal/internal/common/http"
	"brokerage-portal/internal/common/logger"
	"brokerage-portal/internal/common/validation"
	"brokerage-portal/internal/common/zoho"
	"brokerage-portal/internal/models"
	"brokerage-portal/internal/portal/gateway"
)

const provider = "zoho"

// CRM is the slice of zoho.CRMClient the sync uses.
type CRM interface {
	Configured() bool
	UpsertContact(ctx context.Context, contact *zoho.Contact) (*zoho.UpsertResult, error)
}

type Service struct {
	config   *Config
	crm      CRM
	contacts *gateway.Gateway[models.Contact]
	advisors *gateway.Gateway[models.Advisor]
	logger   logger.Logger
	now      func() time.Time
}

func NewService(cfg *Config, crm CRM, gw *gateway.Gateways, log logger.Logger) *Service {
	return &Service{
		config:   cfg,
		crm:      crm,
		contacts: gw.Contacts,
		advisors: gw.Advisors,
		logger:   log,
		now:      time.Now,
	}
}

// Execute upserts the contact by email and records the CRM ID on it.
func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	if s.crm == nil || !s.crm.Configured() {
		return nil, errors.NewCRMNotConfiguredError()
	}

	contact, err := s.contacts.ReadByID(ctx, input.ContactID)
	if err != nil {
		return nil, err
	}
	if !validation.ValidateEmail(contact.Email) {
		return nil, errors.NewValidationError(fmt.Sprintf("contact %s has no valid email", contact.ID))
	}

	record := &zoho.Contact{
		Email:     contact.Email,
		FirstName: contact.FirstName,
		LastName:  contact.LastName,
		Phone:     contact.Phone,
		Source:    s.config.LeadSource,
	}
	if contact.AdvisorID != "" {
		if adv, err := s.advisors.ReadByID(ctx, contact.AdvisorID); err == nil {
			record.Owner = adv.Email
		} else {
			s.logger.Warn("advisor not found for CRM owner", map[string]interface{}{
				"advisorId": contact.AdvisorID,
				"error":     err.Error(),
			})
		}
	}

	res, err := s.crm.UpsertContact(ctx, record)
	if err != nil {
		var status *chttp.StatusError
		if stderrors.As(err, &status) && !status.Retryable() {
			return nil, err
		}
		return nil, errors.NewCRMAPIError(err)
	}

	if res.ID != contact.CRMID {
		if err := s.contacts.Update(ctx, contact.ID, map[string]interface{}{"crmId": res.ID}); err != nil {
			return nil, fmt.Errorf("record crm id on contact %s: %w", contact.ID, err)
		}
	}

	message := "Contact updated in CRM"
	if res.Created {
		message = "Contact created in CRM"
	}
	s.logger.Info(message, map[string]interface{}{
		"contactId": contact.ID,
		"crmId":     res.ID,
	})
	return &Output{
		Success:     true,
		Message:     message,
		CRMID:       res.ID,
		Created:     res.Created,
		CRMProvider: provider,
		SyncedAt:    s.now().UTC(),
	}, nil
}
