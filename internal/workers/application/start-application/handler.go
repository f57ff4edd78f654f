// internal/workers/application/start-application/handler.go
package startapplication

import (
	"context"

	"brokerage-portal/internal/common/camunda"
	"brokerage-portal/internal/common/config"
	"brokerage-portal/internal/common/logger"
	"brokerage-portal/internal/models"
	"brokerage-portal/internal/portal/faults"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "start-application"

type Starter interface {
	StartApplication(ctx context.Context, leadID, advisorID string) (*models.Ticket, error)
}

type Handler struct {
	leads  Starter
	runner *camunda.JobRunner
	logger logger.Logger
}

func NewHandler(cfg *config.Config, leads Starter, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	wcfg := config.GetWorkerConfig(cfg, TaskType)
	return &Handler{
		leads:  leads,
		runner: camunda.NewJobRunner(TaskType, config.GetDuration(wcfg.Timeout), log, faults.ToStandard),
		logger: log,
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

// Execute turns the lead into an Open ticket and closes the lead.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	t, err := h.leads.StartApplication(ctx, input.LeadID, input.AdvisorID)
	if err != nil {
		return nil, err
	}
	h.logger.Info("application started", map[string]interface{}{
		"leadId":   input.LeadID,
		"ticketId": t.ID,
	})
	return &Output{TicketID: t.ID, TicketStatus: t.Status, Applicant: t.ApplicantName()}, nil
}
