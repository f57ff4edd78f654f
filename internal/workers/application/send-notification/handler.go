// internal/workers/application/send-notification/handler.go
package sendnotification

import (
	"context"
	stderrors "errors"
	"time"

	"brokerage-portal/internal/common/camunda"
	"brokerage-portal/internal/common/config"
	"brokerage-portal/internal/common/errors"
	"brokerage-portal/internal/common/logger"
	"brokerage-portal/internal/models"
	"brokerage-portal/internal/portal/faults"
	"brokerage-portal/internal/portal/notify"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "send-notification"

type Dispatcher interface {
	Dispatch(ctx context.Context, n models.Notification, extra []string) (*notify.DispatchResult, error)
}

// EmailLookup resolves a user's address when the job only names the user.
// session.Directory satisfies it.
type EmailLookup interface {
	Email(ctx context.Context, userID string) (string, error)
}

type Handler struct {
	dispatcher Dispatcher
	users      EmailLookup
	runner     *camunda.JobRunner
	logger     logger.Logger
	now        func() time.Time
}

func NewHandler(cfg *config.Config, dispatcher Dispatcher, users EmailLookup, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	wcfg := config.GetWorkerConfig(cfg, TaskType)
	return &Handler{
		dispatcher: dispatcher,
		users:      users,
		runner:     camunda.NewJobRunner(TaskType, config.GetDuration(wcfg.Timeout), log, faults.ToStandard),
		logger:     log,
		now:        time.Now,
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
	email := input.UserEmail
	if email == "" && input.UserID != "" && h.users != nil {
		found, err := h.users.Email(ctx, input.UserID)
		if err != nil {
			h.logger.Warn("user email lookup failed", map[string]interface{}{
				"userId": input.UserID,
				"error":  err.Error(),
			})
		}
		email = found
	}

	n := models.Notification{
		Type:         models.NotificationType(input.NotificationType),
		TicketID:     input.TicketID,
		TicketStatus: input.TicketStatus,
		UserEmail:    email,
	}
	res, err := h.dispatcher.Dispatch(ctx, n, input.Recipients)
	if err != nil {
		if stderrors.Is(err, notify.ErrUnknownType) {
			return nil, err
		}
		return nil, errors.NewNotificationSendFailedError(input.NotificationType, err)
	}

	status := StatusDisabled
	if len(res.Channels) > 0 {
		status = StatusSent
	}
	h.logger.Info("notification dispatched", map[string]interface{}{
		"ticketId": input.TicketID,
		"type":     input.NotificationType,
		"channels": res.Channels,
	})
	return &Output{
		Status:         status,
		Channels:       res.Channels,
		EmailMessageID: res.EmailMessageID,
		SMSMessageID:   res.SMSMessageID,
		SentAt:         h.now().UTC().Format(time.RFC3339),
	}, nil
}
