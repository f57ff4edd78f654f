package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"brokerage-portal/internal/models"
	"brokerage-portal/internal/portal/store"
)

var ErrInvalidTransition = errors.New("ticket status transition not allowed")

// TicketGateway adds status-transition enforcement to the ticket collection.
type TicketGateway struct {
	*Gateway[models.Ticket]
	ids *IDGenerator
	now func() time.Time
}

func NewTicketGateway(s store.Store, ids *IDGenerator, now func() time.Time) *TicketGateway {
	if now == nil {
		now = time.Now
	}
	if ids == nil {
		ids = NewIDGenerator(now)
	}
	return &TicketGateway{Gateway: New[models.Ticket](s, store.Tickets), ids: ids, now: now}
}

// Create assigns a timestamp ID and the Open status when unset.
func (g *TicketGateway) Create(ctx context.Context, t *models.Ticket) (string, error) {
	if t.ID == "" {
		t.ID = g.ids.Next()
	}
	if t.Status == "" {
		t.Status = models.TicketOpen
	}
	if !t.Status.Valid() {
		return "", fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, t.Status)
	}
	now := g.now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	return g.Gateway.Create(ctx, t)
}

// UpdateStatus moves the ticket to next and returns the status it replaced.
// The write only lands while the ticket still has the status that was read;
// a concurrent change yields store.ErrConflict.
func (g *TicketGateway) UpdateStatus(ctx context.Context, id string, next models.TicketStatus) (models.TicketStatus, error) {
	t, err := g.ReadByID(ctx, id)
	if err != nil {
		return "", err
	}
	if !t.Status.CanTransitionTo(next) {
		return t.Status, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.Status, next)
	}
	if err := g.swapStatus(ctx, id, t.Status, next); err != nil {
		return t.Status, fmt.Errorf("ticket %s %s -> %s: %w", id, t.Status, next, err)
	}
	return t.Status, nil
}

// RestoreStatus moves the ticket from cur back to prev without the
// transition check. It is the compensating step for a failed downstream
// write and fails with store.ErrConflict if the ticket has moved on.
func (g *TicketGateway) RestoreStatus(ctx context.Context, id string, cur, prev models.TicketStatus) error {
	return g.swapStatus(ctx, id, cur, prev)
}

func (g *TicketGateway) swapStatus(ctx context.Context, id string, from, to models.TicketStatus) error {
	return g.UpdateIf(ctx, id, store.Filter{"status": from}, map[string]interface{}{
		"status":    to,
		"updatedAt": g.now().UTC(),
	})
}

func (g *TicketGateway) FindByLead(ctx context.Context, leadID string) ([]models.Ticket, error) {
	return g.Read(ctx, store.Filter{"leadId": leadID})
}
