package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"brokerage-portal/internal/models"
	"brokerage-portal/internal/portal/gateway"
	"brokerage-portal/internal/portal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

func newService() (*Service, *store.MemoryStore) {
	mem := store.NewMemoryStore()
	gw := gateway.NewGateways(mem, nil, clock)
	return NewService(gw.Notifications, nil, clock), mem
}

func TestCreateNotification(t *testing.T) {
	svc, mem := newService()

	n, err := svc.CreateNotification(context.Background(), models.Notification{
		Type:         models.NotificationAccountOpened,
		UserEmail:    "ada@example.com",
		TicketID:     "t-1",
		TicketStatus: models.TicketOpened,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, n.ID)
	assert.Equal(t, now, n.CreatedAt)
	assert.Equal(t, 1, mem.Count(store.Notifications))

	listed, err := svc.ForTicket(context.Background(), "t-1")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, models.TicketOpened, listed[0].TicketStatus)
}

func TestCreateNotification_Validation(t *testing.T) {
	svc, _ := newService()

	_, err := svc.CreateNotification(context.Background(), models.Notification{Type: "lunch", TicketID: "t-1"})
	assert.ErrorIs(t, err, ErrUnknownType)

	_, err = svc.CreateNotification(context.Background(), models.Notification{Type: models.NotificationOpeningAccount})
	assert.ErrorIs(t, err, ErrMissingTicket)
}

func TestCreateNotification_CallerIDIsIdempotent(t *testing.T) {
	svc, mem := newService()
	ctx := context.Background()
	n := models.Notification{ID: "t-1-opening_account", Type: models.NotificationOpeningAccount, TicketID: "t-1"}

	_, err := svc.CreateNotification(ctx, n)
	require.NoError(t, err)
	_, err = svc.CreateNotification(ctx, n)
	assert.ErrorIs(t, err, store.ErrRejected)
	assert.Equal(t, 1, mem.Count(store.Notifications))

	found, err := svc.FindNotification(ctx, "t-1", models.NotificationOpeningAccount)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "t-1-opening_account", found.ID)

	missing, err := svc.FindNotification(ctx, "t-1", models.NotificationAccountOpened)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

type fakeEmail struct {
	to      []string
	subject string
	body    string
	err     error
}

func (f *fakeEmail) SendPlainText(ctx context.Context, from string, to []string, subject, body string) (string, error) {
	f.to, f.subject, f.body = to, subject, body
	return "email-1", f.err
}

type fakeSMS struct {
	sent int
}

func (f *fakeSMS) SendSMS(ctx context.Context, phone, message string) (string, error) {
	f.sent++
	return "sms-1", nil
}

func TestDispatch(t *testing.T) {
	email := &fakeEmail{}
	sms := &fakeSMS{}
	d := NewDispatcher(email, sms, DispatchConfig{
		EmailEnabled: true,
		SMSEnabled:   true,
		FromEmail:    "noreply@broker.example",
		AdvisorDesk:  []string{"desk@broker.example"},
		AlertNumber:  "+41440000000",
	})

	n := models.Notification{Type: models.NotificationOpeningAccount, TicketID: "t-9", UserEmail: "ada@example.com", TicketStatus: models.TicketStarted}
	res, err := d.Dispatch(context.Background(), n, []string{"advisor@broker.example"})
	require.NoError(t, err)
	assert.Equal(t, []string{"email"}, res.Channels, "no sms for opening_account")
	assert.Equal(t, []string{"desk@broker.example", "advisor@broker.example"}, email.to)
	assert.Contains(t, email.subject, "t-9")
	assert.Contains(t, email.body, "Ticket status: Started")

	n.Type = models.NotificationAccountOpened
	res, err = d.Dispatch(context.Background(), n, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"email", "sms"}, res.Channels)
	assert.Equal(t, 1, sms.sent)
}

func TestDispatch_EmailFailure(t *testing.T) {
	d := NewDispatcher(&fakeEmail{err: errors.New("throttled")}, nil, DispatchConfig{
		EmailEnabled: true,
		AdvisorDesk:  []string{"desk@broker.example"},
	})
	_, err := d.Dispatch(context.Background(), models.Notification{Type: models.NotificationAccountOpened, TicketID: "t-1"}, nil)
	assert.Error(t, err)
}

func TestDispatch_AllDisabled(t *testing.T) {
	d := NewDispatcher(nil, nil, DispatchConfig{})
	res, err := d.Dispatch(context.Background(), models.Notification{Type: models.NotificationAccountOpened, TicketID: "t-1"}, nil)
	require.NoError(t, err)
	assert.Empty(t, res.Channels)
}
