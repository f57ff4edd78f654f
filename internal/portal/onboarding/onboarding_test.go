package onboarding

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"brokerage-portal/internal/common/metrics"
	"brokerage-portal/internal/models"
	"brokerage-portal/internal/portal/gateway"
	"brokerage-portal/internal/portal/notify"
	"brokerage-portal/internal/portal/store"
	"brokerage-portal/internal/portal/wizard"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

// flakyNotifier fails every create while err is set and runs onFail first.
type flakyNotifier struct {
	next   Notifier
	mu     sync.Mutex
	err    error
	onFail func()
	calls  int
}

func (f *flakyNotifier) CreateNotification(ctx context.Context, n models.Notification) (*models.Notification, error) {
	f.mu.Lock()
	f.calls++
	err, onFail := f.err, f.onFail
	f.mu.Unlock()
	if err != nil {
		if onFail != nil {
			onFail()
		}
		return nil, err
	}
	return f.next.CreateNotification(ctx, n)
}

func (f *flakyNotifier) FindNotification(ctx context.Context, ticketID string, kind models.NotificationType) (*models.Notification, error) {
	return f.next.FindNotification(ctx, ticketID, kind)
}

// brokenTickets fails ticket writes while set.
type brokenTickets struct {
	store.Store
	mu     sync.Mutex
	broken bool
}

func (b *brokenTickets) set(v bool) {
	b.mu.Lock()
	b.broken = v
	b.mu.Unlock()
}

func (b *brokenTickets) UpdateIf(ctx context.Context, collection, id string, match store.Filter, partial interface{}) error {
	b.mu.Lock()
	broken := b.broken
	b.mu.Unlock()
	if broken && collection == store.Tickets {
		return fmt.Errorf("%w: tickets offline", store.ErrUnavailable)
	}
	return b.Store.UpdateIf(ctx, collection, id, match, partial)
}

type fixture struct {
	svc      *Service
	mem      *store.MemoryStore
	writes   *brokenTickets
	gw       *gateway.Gateways
	notifier *flakyNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	mem := store.NewMemoryStore()
	writes := &brokenTickets{Store: mem}
	ids := gateway.NewIDGenerator(clock)
	gw := gateway.NewGateways(writes, ids, clock)
	notifier := &flakyNotifier{next: notify.NewService(gw.Notifications, ids, clock)}

	svc := NewService(Deps{
		Tickets:    gw.Tickets,
		Accounts:   gw.Accounts,
		Notifier:   notifier,
		Repository: wizard.NewRedisRepository(client, "wizard", time.Hour),
		Now:        clock,
	})
	return &fixture{svc: svc, mem: mem, writes: writes, gw: gw, notifier: notifier}
}

func (f *fixture) ticket(t *testing.T, status models.TicketStatus) string {
	t.Helper()
	tk := &models.Ticket{FirstName: "Ada", LastName: "Lovelace", AdvisorID: "adv-1", Status: status}
	id, err := f.gw.Tickets.Create(context.Background(), tk)
	require.NoError(t, err)
	return id
}

func (f *fixture) account(t *testing.T, id, ticketID string) {
	t.Helper()
	_, err := f.gw.Accounts.Create(context.Background(), &models.Account{ID: id, TicketID: ticketID, AccountNumber: "U123"})
	require.NoError(t, err)
}

func (f *fixture) status(t *testing.T, ticketID string) models.TicketStatus {
	t.Helper()
	tk, err := f.gw.Tickets.ReadByID(context.Background(), ticketID)
	require.NoError(t, err)
	return tk.Status
}

func (f *fixture) notifications(t *testing.T, kind models.NotificationType) []models.Notification {
	t.Helper()
	out, err := f.gw.Notifications.Read(context.Background(), store.Filter{"type": string(kind)})
	require.NoError(t, err)
	return out
}

func TestForward_TicketStepRequiresTicket(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	st, err := f.svc.Start(ctx, "user-1", "ada@example.com")
	require.NoError(t, err)

	after, err := f.svc.Forward(ctx, st.ID)
	var pre *wizard.PreconditionError
	require.ErrorAs(t, err, &pre)
	assert.Contains(t, pre.Error(), "ticket")
	assert.Equal(t, StepTicketSelect, after.Step)

	// Reporting ready without a selection still hits the guard.
	_, err = f.svc.Report(ctx, st.ID, StepTicketSelect, wizard.Ready())
	require.NoError(t, err)
	_, err = f.svc.Forward(ctx, st.ID)
	require.ErrorAs(t, err, &pre)
	assert.Equal(t, TicketRequiredMessage, pre.Message)

	loaded, err := f.svc.Load(ctx, st.ID)
	require.NoError(t, err)
	assert.Equal(t, StepTicketSelect, loaded.Step)
}

func TestSelectTicket_RejectsClosed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	closed := f.ticket(t, models.TicketClosed)

	st, err := f.svc.Start(ctx, "user-1", "ada@example.com")
	require.NoError(t, err)

	_, err = f.svc.SelectTicket(ctx, st.ID, closed)
	assert.ErrorIs(t, err, ErrTicketClosed)

	_, err = f.svc.SelectTicket(ctx, st.ID, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestFullFlow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ticketID := f.ticket(t, "")
	f.account(t, "acct-1", ticketID)

	st, err := f.svc.Start(ctx, "user-1", "ada@example.com")
	require.NoError(t, err)

	st, err = f.svc.SelectTicket(ctx, st.ID, ticketID)
	require.NoError(t, err)
	assert.Equal(t, wizard.StatusReady, st.Readiness.Status)

	st, err = f.svc.Forward(ctx, st.ID)
	require.NoError(t, err)
	assert.Equal(t, StepAccountForm, st.Step)
	assert.Equal(t, wizard.StatusIncomplete, st.Readiness.Status)
	assert.Equal(t, models.TicketStarted, f.status(t, ticketID))

	opening := f.notifications(t, models.NotificationOpeningAccount)
	require.Len(t, opening, 1)
	assert.Equal(t, "ada@example.com", opening[0].UserEmail)
	assert.Equal(t, models.TicketStarted, opening[0].TicketStatus)

	_, err = f.svc.Forward(ctx, st.ID)
	var pre *wizard.PreconditionError
	require.ErrorAs(t, err, &pre)
	assert.Equal(t, AccountRequiredMessage, pre.Message)

	st, err = f.svc.LinkAccount(ctx, st.ID, "acct-1")
	require.NoError(t, err)
	st, err = f.svc.Forward(ctx, st.ID)
	require.NoError(t, err)
	assert.Equal(t, StepDocumentBackup, st.Step)

	_, err = f.svc.Report(ctx, st.ID, StepDocumentBackup, wizard.Ready())
	require.NoError(t, err)
	st, err = f.svc.Forward(ctx, st.ID)
	require.NoError(t, err)
	assert.Equal(t, StepApplicationForm, st.Step)

	_, err = f.svc.Report(ctx, st.ID, StepApplicationForm, wizard.Ready())
	require.NoError(t, err)
	st, err = f.svc.Forward(ctx, st.ID)
	require.NoError(t, err)
	assert.Equal(t, StepFinal, st.Step)
	assert.Equal(t, models.TicketOpened, f.status(t, ticketID))

	opened := f.notifications(t, models.NotificationAccountOpened)
	require.Len(t, opened, 1)
	assert.Equal(t, models.TicketOpened, opened[0].TicketStatus)
	assert.Equal(t, ticketID, opened[0].TicketID)

	_, err = f.svc.Report(ctx, st.ID, StepFinal, wizard.Ready())
	require.NoError(t, err)
	_, err = f.svc.Forward(ctx, st.ID)
	assert.ErrorIs(t, err, wizard.ErrAtFinalStep)

	// Going back and forward again does not repeat the notification.
	st, err = f.svc.Backward(ctx, st.ID)
	require.NoError(t, err)
	_, err = f.svc.Report(ctx, st.ID, StepApplicationForm, wizard.Ready())
	require.NoError(t, err)
	_, err = f.svc.Forward(ctx, st.ID)
	require.NoError(t, err)
	assert.Len(t, f.notifications(t, models.NotificationAccountOpened), 1)
	assert.Equal(t, 2, f.mem.Count(store.Notifications))
}

func TestForward_NotificationFailureRestoresStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ticketID := f.ticket(t, "")
	restored := metrics.SagaCompensations.WithLabelValues("restored")
	before := testutil.ToFloat64(restored)

	st, err := f.svc.Start(ctx, "user-1", "ada@example.com")
	require.NoError(t, err)
	_, err = f.svc.SelectTicket(ctx, st.ID, ticketID)
	require.NoError(t, err)

	f.notifier.err = errors.New("store unavailable")
	after, err := f.svc.Forward(ctx, st.ID)
	var eff *wizard.EffectError
	require.ErrorAs(t, err, &eff)
	assert.ErrorIs(t, err, f.notifier.err)
	assert.Equal(t, StepTicketSelect, after.Step)
	assert.Equal(t, models.TicketOpen, f.status(t, ticketID))
	assert.Equal(t, before+1, testutil.ToFloat64(restored))
	assert.Equal(t, 0, f.mem.Count(store.Notifications))

	// The retry succeeds once the notifier recovers.
	f.notifier.err = nil
	after, err = f.svc.Forward(ctx, st.ID)
	require.NoError(t, err)
	assert.Equal(t, StepAccountForm, after.Step)
	assert.Equal(t, models.TicketStarted, f.status(t, ticketID))
	assert.Equal(t, 2, f.notifier.calls)
}

func TestForward_FailedCompensationStillNotifiesOnRetry(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ticketID := f.ticket(t, "")
	failed := metrics.SagaCompensations.WithLabelValues("failed")
	before := testutil.ToFloat64(failed)

	st, err := f.svc.Start(ctx, "user-1", "ada@example.com")
	require.NoError(t, err)
	_, err = f.svc.SelectTicket(ctx, st.ID, ticketID)
	require.NoError(t, err)

	// The notification fails and the ticket store goes down before the
	// status can be restored.
	f.notifier.err = errors.New("notifications offline")
	f.notifier.onFail = func() { f.writes.set(true) }
	after, err := f.svc.Forward(ctx, st.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "restoring Open failed")
	assert.Equal(t, StepTicketSelect, after.Step)
	assert.Equal(t, models.TicketStarted, f.status(t, ticketID), "compensation did not land")
	assert.Equal(t, before+1, testutil.ToFloat64(failed))
	assert.Empty(t, f.notifications(t, models.NotificationOpeningAccount))

	f.notifier.err, f.notifier.onFail = nil, nil
	f.writes.set(false)
	after, err = f.svc.Forward(ctx, st.ID)
	require.NoError(t, err)
	assert.Equal(t, StepAccountForm, after.Step)

	opening := f.notifications(t, models.NotificationOpeningAccount)
	require.Len(t, opening, 1, "retry completes the missing notification")
	assert.Equal(t, models.TicketStarted, opening[0].TicketStatus)
	assert.Equal(t, "ada@example.com", opening[0].UserEmail)

	// Later retries find the notification and do not add another.
	require.NoError(t, f.svc.advanceTicket(ctx, after, models.TicketStarted, models.NotificationOpeningAccount))
	assert.Equal(t, 1, f.mem.Count(store.Notifications))
}

func TestForward_ConcurrentCallsNotifyOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ticketID := f.ticket(t, "")

	st, err := f.svc.Start(ctx, "user-1", "ada@example.com")
	require.NoError(t, err)
	_, err = f.svc.SelectTicket(ctx, st.ID, ticketID)
	require.NoError(t, err)

	const callers = 8
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.svc.Forward(ctx, st.ID)
		}()
	}
	wg.Wait()

	assert.Len(t, f.notifications(t, models.NotificationOpeningAccount), 1)
	assert.Equal(t, models.TicketStarted, f.status(t, ticketID))
	loaded, err := f.svc.Load(ctx, st.ID)
	require.NoError(t, err)
	assert.Equal(t, StepAccountForm, loaded.Step)
}

func TestSelectTicket_LockedOnceStarted(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	first := f.ticket(t, "")
	second := f.ticket(t, "")

	st, err := f.svc.Start(ctx, "user-1", "ada@example.com")
	require.NoError(t, err)

	// Changing the choice before the ticket is started is fine.
	_, err = f.svc.SelectTicket(ctx, st.ID, second)
	require.NoError(t, err)
	_, err = f.svc.SelectTicket(ctx, st.ID, first)
	require.NoError(t, err)

	st, err = f.svc.Forward(ctx, st.ID)
	require.NoError(t, err)
	require.Equal(t, models.TicketStarted, f.status(t, first))

	_, err = f.svc.SelectTicket(ctx, st.ID, second)
	assert.ErrorIs(t, err, ErrTicketLocked)

	// Stepping back does not unlock it either.
	_, err = f.svc.Backward(ctx, st.ID)
	require.NoError(t, err)
	_, err = f.svc.SelectTicket(ctx, st.ID, second)
	assert.ErrorIs(t, err, ErrTicketLocked)

	_, err = f.svc.SelectTicket(ctx, st.ID, first)
	assert.NoError(t, err, "re-selecting the same ticket is allowed")

	loaded, err := f.svc.Load(ctx, st.ID)
	require.NoError(t, err)
	assert.Equal(t, first, loaded.Selection(SelectedTicket))
	assert.Equal(t, models.TicketOpen, f.status(t, second))
}

func TestLinkAccount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ticketID := f.ticket(t, "")
	other := f.ticket(t, "")
	f.account(t, "acct-other", other)

	st, err := f.svc.Start(ctx, "user-1", "ada@example.com")
	require.NoError(t, err)

	_, err = f.svc.LinkAccount(ctx, st.ID, "acct-other")
	assert.ErrorIs(t, err, ErrNoTicket)

	_, err = f.svc.SelectTicket(ctx, st.ID, ticketID)
	require.NoError(t, err)
	_, err = f.svc.LinkAccount(ctx, st.ID, "acct-other")
	assert.ErrorIs(t, err, ErrAccountMismatch)
}

func TestBackward_Floor(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	st, err := f.svc.Start(ctx, "user-1", "ada@example.com")
	require.NoError(t, err)
	st, err = f.svc.Backward(ctx, st.ID)
	require.NoError(t, err)
	assert.Equal(t, StepTicketSelect, st.Step)
}
