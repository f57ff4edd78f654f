package accountoverview

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"brokerage-portal/internal/common/config"
	stderrors "brokerage-portal/internal/common/errors"
	"brokerage-portal/internal/common/logger"
	"brokerage-portal/internal/models"
	"brokerage-portal/internal/portal/faults"
	"brokerage-portal/internal/portal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockReporter struct {
	mock.Mock
}

func (m *MockReporter) AccountOverview(ctx context.Context, advisorID string) ([]models.AccountView, error) {
	args := m.Called(ctx, advisorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AccountView), args.Error(1)
}

func navPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestExecute(t *testing.T) {
	rep := new(MockReporter)
	rep.On("AccountOverview", mock.Anything, "adv-1").Return([]models.AccountView{
		{
			Account: models.Account{ID: "a-1", AccountNumber: "U1", Username: "ada1", Password: "secret"},
			NAV:     navPtr("1250.50"),
			Alias:   "Ada growth",
		},
		{
			Account: models.Account{ID: "a-2", AccountNumber: "U2"},
			NAV:     navPtr("49.5"),
		},
		{Account: models.Account{ID: "a-3", AccountNumber: "U3"}},
	}, nil)

	h := NewHandler(&config.Config{}, rep, logger.NewTestLogger(t))
	out, err := h.Execute(context.Background(), &Input{AdvisorID: "adv-1"})
	require.NoError(t, err)

	assert.Equal(t, 3, out.AccountCount)
	assert.Equal(t, "1300.00", out.TotalNAV)
	assert.Equal(t, []string{"U3"}, out.Unreported)
	assert.Empty(t, out.Accounts[0].Password)
	assert.Empty(t, out.Accounts[0].Username)
	assert.Equal(t, "Ada growth", out.Accounts[0].Alias)
	rep.AssertExpectations(t)
}

func TestExecute_Empty(t *testing.T) {
	rep := new(MockReporter)
	rep.On("AccountOverview", mock.Anything, "").Return([]models.AccountView{}, nil)

	h := NewHandler(&config.Config{}, rep, logger.NewNoOpLogger())
	out, err := h.Execute(context.Background(), &Input{})
	require.NoError(t, err)
	assert.Zero(t, out.AccountCount)
	assert.Equal(t, "0.00", out.TotalNAV)
	assert.NotNil(t, out.Unreported)
}

func TestExecute_StoreUnavailable(t *testing.T) {
	rep := new(MockReporter)
	rep.On("AccountOverview", mock.Anything, "adv-1").
		Return(nil, fmt.Errorf("read accounts: %w", fmt.Errorf("%w: dial tcp", store.ErrUnavailable)))

	h := NewHandler(&config.Config{}, rep, logger.NewNoOpLogger())
	_, err := h.Execute(context.Background(), &Input{AdvisorID: "adv-1"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrUnavailable))

	std := stderrors.Normalize(faults.ToStandard(err))
	assert.Equal(t, stderrors.ErrCodeStoreUnavailable, std.Code)
	assert.True(t, std.Retryable)
}
