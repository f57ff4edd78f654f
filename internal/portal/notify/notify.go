// Package notify writes lifecycle audit records and optionally fans them
// out to the advisor desk by email and SMS.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"brokerage-portal/internal/models"
	"brokerage-portal/internal/portal/gateway"
)

var (
	ErrUnknownType   = errors.New("unknown notification type")
	ErrMissingTicket = errors.New("notification needs a ticket id")
)

// Service creates notification records. Writes are not retried here; the
// caller owns compensation.
type Service struct {
	records *gateway.Gateway[models.Notification]
	ids     *gateway.IDGenerator
	now     func() time.Time
}

func NewService(records *gateway.Gateway[models.Notification], ids *gateway.IDGenerator, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	if ids == nil {
		ids = gateway.NewIDGenerator(now)
	}
	return &Service{records: records, ids: ids, now: now}
}

func knownType(t models.NotificationType) bool {
	return t == models.NotificationOpeningAccount || t == models.NotificationAccountOpened
}

// CreateNotification stores n with its creation time. An empty ID is
// assigned from the generator; a caller-chosen ID makes the write
// idempotent because the store rejects a second create.
func (s *Service) CreateNotification(ctx context.Context, n models.Notification) (*models.Notification, error) {
	if !knownType(n.Type) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, n.Type)
	}
	if n.TicketID == "" {
		return nil, ErrMissingTicket
	}

	if n.ID == "" {
		n.ID = s.ids.Next()
	}
	n.CreatedAt = s.now().UTC()
	if _, err := s.records.Create(ctx, &n); err != nil {
		return nil, fmt.Errorf("create %s notification for ticket %s: %w", n.Type, n.TicketID, err)
	}
	return &n, nil
}

// FindNotification returns the notification of kind for a ticket, or nil
// when none was recorded.
func (s *Service) FindNotification(ctx context.Context, ticketID string, kind models.NotificationType) (*models.Notification, error) {
	found, err := s.records.Read(ctx, map[string]interface{}{"ticketId": ticketID, "type": kind})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, nil
	}
	return &found[0], nil
}

// ForTicket lists notifications recorded for a ticket.
func (s *Service) ForTicket(ctx context.Context, ticketID string) ([]models.Notification, error) {
	return s.records.Read(ctx, map[string]interface{}{"ticketId": ticketID})
}
