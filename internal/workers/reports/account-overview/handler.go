package accountoverview

import (
	"context"

	"brokerage-portal/internal/common/camunda"
	"brokerage-portal/internal/common/config"
	"brokerage-portal/internal/common/logger"
	"brokerage-portal/internal/models"
	"brokerage-portal/internal/portal/faults"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/shopspring/decimal"
)

const TaskType = "account-overview"

type Reporter interface {
	AccountOverview(ctx context.Context, advisorID string) ([]models.AccountView, error)
}

type Handler struct {
	reports Reporter
	runner  *camunda.JobRunner
	logger  logger.Logger
}

func NewHandler(cfg *config.Config, reports Reporter, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	wcfg := config.GetWorkerConfig(cfg, TaskType)
	return &Handler{
		reports: reports,
		runner:  camunda.NewJobRunner(TaskType, config.GetDuration(wcfg.Timeout), log, faults.ToStandard),
		logger:  log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.runner.Run(client, job, func(ctx context.Context, vars map[string]interface{}) (interface{}, error) {
		var input Input
		if err := camunda.DecodeVariables(vars, GetInputSchema(), &input); err != nil {
			return nil, err
		}
		return h.Execute(ctx, &input)
	})
}

// Execute returns the overview with broker credentials removed.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	views, err := h.reports.AccountOverview(ctx, input.AdvisorID)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	unreported := []string{}
	for i := range views {
		views[i].Username = ""
		views[i].Password = ""
		if views[i].NAV == nil {
			unreported = append(unreported, views[i].AccountNumber)
			continue
		}
		total = total.Add(*views[i].NAV)
	}

	h.logger.Debug("account overview built", map[string]interface{}{
		"advisorId": input.AdvisorID,
		"accounts":  len(views),
	})
	return &Output{
		Accounts:     views,
		AccountCount: len(views),
		TotalNAV:     total.StringFixed(2),
		Unreported:   unreported,
	}, nil
}
