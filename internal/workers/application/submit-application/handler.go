// internal/workers/application/submit-application/handler.go
package submitapplication

import (
	"context"
	"time"

	"brokerage-portal/internal/common/camunda"
	"brokerage-portal/internal/common/config"
	"brokerage-portal/internal/common/logger"
	"brokerage-portal/internal/models"
	"brokerage-portal/internal/portal/faults"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "submit-application"

type Submitter interface {
	Submit(ctx context.Context, ticketID string, app models.Application) (*models.Application, error)
}

type Handler struct {
	applications Submitter
	runner       *camunda.JobRunner
	logger       logger.Logger
}

func NewHandler(cfg *config.Config, applications Submitter, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	wcfg := config.GetWorkerConfig(cfg, TaskType)
	return &Handler{
		applications: applications,
		runner:       camunda.NewJobRunner(TaskType, config.GetDuration(wcfg.Timeout), log, faults.ToStandard),
		logger:       log,
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

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	app, err := h.applications.Submit(ctx, input.TicketID, input.Application)
	if err != nil {
		return nil, err
	}

	h.logger.Info("application submitted", map[string]interface{}{
		"ticketId":     input.TicketID,
		"customerType": string(app.CustomerType),
		"signers":      len(app.Signers()),
	})
	out := &Output{
		TicketID:     input.TicketID,
		CustomerType: string(app.CustomerType),
		Application:  *app,
	}
	if app.SubmittedAt != nil {
		out.SubmittedAt = app.SubmittedAt.Format(time.RFC3339)
	}
	return out, nil
}
