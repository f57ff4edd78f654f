// internal/workers/leads/create-lead/handler.go
package createlead

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

const TaskType = "create-lead"

type Creator interface {
	CreateLead(ctx context.Context, contact models.Contact, advisorID string) (*models.Lead, error)
}

type Handler struct {
	leads  Creator
	runner *camunda.JobRunner
	logger logger.Logger
}

func NewHandler(cfg *config.Config, leads Creator, log logger.Logger) *Handler {
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

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	lead, err := h.leads.CreateLead(ctx, input.Contact, input.AdvisorID)
	if err != nil {
		return nil, err
	}
	h.logger.Info("lead created", map[string]interface{}{
		"leadId":    lead.ID,
		"advisorId": input.AdvisorID,
	})
	return &Output{LeadID: lead.ID, ContactID: lead.ContactID}, nil
}
