package startapplication

import (
	"context"
	"testing"
	"time"

	"brokerage-portal/internal/common/config"
	stderrors "brokerage-portal/internal/common/errors"
	"brokerage-portal/internal/common/logger"
	"brokerage-portal/internal/models"
	"brokerage-portal/internal/portal/faults"
	"brokerage-portal/internal/portal/gateway"
	"brokerage-portal/internal/portal/leads"
	"brokerage-portal/internal/portal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecute(t *testing.T) {
	ctx := context.Background()
	clock := func() time.Time { return time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC) }
	ids := gateway.NewIDGenerator(clock)
	gw := gateway.NewGateways(store.NewMemoryStore(), ids, clock)
	svc := leads.NewService(gw, ids, nil, nil, clock)
	h := NewHandler(&config.Config{}, svc, logger.NewTestLogger(t))

	lead, err := svc.CreateLead(ctx, models.Contact{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}, "adv-1")
	require.NoError(t, err)

	out, err := h.Execute(ctx, &Input{LeadID: lead.ID, AdvisorID: "adv-1"})
	require.NoError(t, err)
	assert.Equal(t, models.TicketOpen, out.TicketStatus)
	assert.Equal(t, "Ada Lovelace", out.Applicant)

	_, err = h.Execute(ctx, &Input{LeadID: lead.ID, AdvisorID: "adv-1"})
	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeDuplicateApplication, stderrors.Normalize(faults.ToStandard(err)).Code)
}
