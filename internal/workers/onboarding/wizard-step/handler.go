// internal/workers/onboarding/wizard-step/handler.go
package wizardstep

import (
	"context"
	"fmt"

	"brokerage-portal/internal/common/camunda"
	"brokerage-portal/internal/common/config"
	"brokerage-portal/internal/common/errors"
	"brokerage-portal/internal/common/logger"
	"brokerage-portal/internal/portal/faults"
	"brokerage-portal/internal/portal/wizard"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "wizard-step"

// Service is the account-opening wizard. onboarding.Service satisfies it.
type Service interface {
	Wizard() *wizard.Wizard
	Start(ctx context.Context, userID, userEmail string) (wizard.State, error)
	SelectTicket(ctx context.Context, id, ticketID string) (wizard.State, error)
	LinkAccount(ctx context.Context, id, accountID string) (wizard.State, error)
	Report(ctx context.Context, id string, step int, r wizard.Readiness) (wizard.State, error)
	Forward(ctx context.Context, id string) (wizard.State, error)
	Backward(ctx context.Context, id string) (wizard.State, error)
}

type Handler struct {
	service Service
	runner  *camunda.JobRunner
	logger  logger.Logger
}

func NewHandler(cfg *config.Config, service Service, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	wcfg := config.GetWorkerConfig(cfg, TaskType)
	return &Handler{
		service: service,
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

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input.Action != ActionStart && input.WizardID == "" {
		return nil, errors.NewValidationError(fmt.Sprintf("wizardId is required for %s", input.Action))
	}

	var (
		st  wizard.State
		err error
	)
	switch input.Action {
	case ActionStart:
		st, err = h.service.Start(ctx, input.UserID, input.UserEmail)
	case ActionSelectTicket:
		if input.TicketID == "" {
			return nil, errors.NewValidationError("ticketId is required for select-ticket")
		}
		st, err = h.service.SelectTicket(ctx, input.WizardID, input.TicketID)
	case ActionLinkAccount:
		if input.AccountID == "" {
			return nil, errors.NewValidationError("accountId is required for link-account")
		}
		st, err = h.service.LinkAccount(ctx, input.WizardID, input.AccountID)
	case ActionReport:
		if input.Readiness == nil || input.Step == 0 {
			return nil, errors.NewValidationError("step and readiness are required for report")
		}
		st, err = h.service.Report(ctx, input.WizardID, input.Step, *input.Readiness)
	case ActionForward:
		st, err = h.service.Forward(ctx, input.WizardID)
	case ActionBackward:
		st, err = h.service.Backward(ctx, input.WizardID)
	default:
		return nil, errors.NewValidationError(fmt.Sprintf("unknown wizard action %q", input.Action))
	}
	if err != nil {
		return nil, err
	}

	h.logger.Debug("wizard step applied", map[string]interface{}{
		"action":   input.Action,
		"wizardId": st.ID,
		"step":     st.Step,
	})
	return h.toOutput(st), nil
}

func (h *Handler) toOutput(st wizard.State) *Output {
	wiz := h.service.Wizard()
	out := &Output{
		WizardID:   st.ID,
		Step:       st.Step,
		Readiness:  st.Readiness,
		Selections: st.Selections,
		Final:      wiz.IsFinal(st),
	}
	if step, ok := wiz.StepAt(st.Step); ok {
		out.StepName = step.Name
	}
	if out.Selections == nil {
		out.Selections = map[string]string{}
	}
	return out
}
