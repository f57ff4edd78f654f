package onboarding

import (
	"context"
	"errors"
	"fmt"

	"brokerage-portal/internal/common/metrics"
	"brokerage-portal/internal/models"
	"brokerage-portal/internal/portal/store"
	"brokerage-portal/internal/portal/wizard"
)

func (s *Service) openingAccount(ctx context.Context, st wizard.State) error {
	return s.advanceTicket(ctx, st, models.TicketStarted, models.NotificationOpeningAccount)
}

func (s *Service) accountOpened(ctx context.Context, st wizard.State) error {
	return s.advanceTicket(ctx, st, models.TicketOpened, models.NotificationAccountOpened)
}

// notificationID is fixed per ticket and kind so a repeated create is
// rejected by the store instead of recording a second notification.
func notificationID(ticketID string, kind models.NotificationType) string {
	return fmt.Sprintf("%s-%s", ticketID, kind)
}

// advanceTicket writes the ticket status and then the notification. A failed
// notification restores the previous status. A ticket already at next was
// moved by an earlier run, which may have died or failed to compensate
// before its notification landed, so only the notification is completed.
func (s *Service) advanceTicket(ctx context.Context, st wizard.State, next models.TicketStatus, kind models.NotificationType) error {
	ticketID := st.Selection(SelectedTicket)
	if ticketID == "" {
		return ErrNoTicket
	}

	t, err := s.tickets.ReadByID(ctx, ticketID)
	if err != nil {
		return err
	}
	if t.Status == next {
		if err := s.ensureNotified(ctx, st, ticketID, next, kind); err != nil {
			return fmt.Errorf("complete %s notification: %w", kind, err)
		}
		return nil
	}

	// Fails with store.ErrConflict when another run moved the ticket first.
	prev, err := s.tickets.UpdateStatus(ctx, ticketID, next)
	if err != nil {
		return err
	}

	err = s.ensureNotified(ctx, st, ticketID, next, kind)
	if err == nil {
		return nil
	}

	fields := map[string]interface{}{
		"ticketId":   ticketID,
		"from":       prev,
		"to":         next,
		"notifyType": kind,
		"error":      err.Error(),
	}
	if rerr := s.tickets.RestoreStatus(ctx, ticketID, next, prev); rerr != nil {
		metrics.SagaCompensations.WithLabelValues("failed").Inc()
		fields["compensationError"] = rerr.Error()
		s.log.Error("ticket status compensation failed", fields)
		return fmt.Errorf("record %s notification: %w (restoring %s failed: %v)", kind, err, prev, rerr)
	}
	metrics.SagaCompensations.WithLabelValues("restored").Inc()
	s.log.Warn("ticket status restored after notification failure", fields)
	return fmt.Errorf("record %s notification: %w", kind, err)
}

// ensureNotified records the kind notification for the ticket unless one
// exists. Losing a create race to another run counts as success.
func (s *Service) ensureNotified(ctx context.Context, st wizard.State, ticketID string, status models.TicketStatus, kind models.NotificationType) error {
	existing, err := s.notifier.FindNotification(ctx, ticketID, kind)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	_, err = s.notifier.CreateNotification(ctx, models.Notification{
		ID:           notificationID(ticketID, kind),
		Type:         kind,
		UserEmail:    st.UserEmail,
		TicketID:     ticketID,
		TicketStatus: status,
	})
	if errors.Is(err, store.ErrRejected) {
		if existing, ferr := s.notifier.FindNotification(ctx, ticketID, kind); ferr == nil && existing != nil {
			return nil
		}
	}
	return err
}
