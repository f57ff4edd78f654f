// internal/workers/leads/lead-follow-up/handler.go
package leadfollowup

import (
	"context"
	"fmt"
	"time"

	"brokerage-portal/internal/common/camunda"
	"brokerage-portal/internal/common/config"
	"brokerage-portal/internal/common/errors"
	"brokerage-portal/internal/common/logger"
	"brokerage-portal/internal/models"
	"brokerage-portal/internal/portal/faults"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "lead-follow-up"

type FollowUps interface {
	AddFollowUp(ctx context.Context, leadID string, date time.Time, description string) (*models.FollowUp, error)
	CompleteFollowUp(ctx context.Context, leadID, followUpID string) error
}

type Handler struct {
	leads  FollowUps
	runner *camunda.JobRunner
	logger logger.Logger
}

func NewHandler(cfg *config.Config, leads FollowUps, log logger.Logger) *Handler {
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
	switch input.Action {
	case ActionAdd:
		date, err := parseDate(input.Date)
		if err != nil {
			return nil, err
		}
		fu, err := h.leads.AddFollowUp(ctx, input.LeadID, date, input.Description)
		if err != nil {
			return nil, err
		}
		return &Output{LeadID: input.LeadID, FollowUpID: fu.ID}, nil

	case ActionComplete:
		if input.FollowUpID == "" {
			return nil, errors.NewValidationError("followUpId is required to complete a follow-up")
		}
		if err := h.leads.CompleteFollowUp(ctx, input.LeadID, input.FollowUpID); err != nil {
			return nil, err
		}
		return &Output{LeadID: input.LeadID, FollowUpID: input.FollowUpID, Completed: true}, nil
	}
	return nil, errors.NewValidationError(fmt.Sprintf("unknown follow-up action %q", input.Action))
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.NewValidationError("date is required to add a follow-up")
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.NewValidationError(fmt.Sprintf("date %q is neither RFC 3339 nor YYYY-MM-DD", s))
}
