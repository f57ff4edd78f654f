// internal/workers/application/create-notification/handler.go
package createnotification

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

const TaskType = "create-notification"

type Notifier interface {
	CreateNotification(ctx context.Context, n models.Notification) (*models.Notification, error)
}

type Handler struct {
	notifier Notifier
	runner   *camunda.JobRunner
	logger   logger.Logger
}

func NewHandler(cfg *config.Config, notifier Notifier, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	wcfg := config.GetWorkerConfig(cfg, TaskType)
	return &Handler{
		notifier: notifier,
		runner:   camunda.NewJobRunner(TaskType, config.GetDuration(wcfg.Timeout), log, faults.ToStandard),
		logger:   log,
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
	n, err := h.notifier.CreateNotification(ctx, models.Notification{
		Type:         models.NotificationType(input.Type),
		TicketID:     input.TicketID,
		TicketStatus: input.TicketStatus,
		UserEmail:    input.UserEmail,
	})
	if err != nil {
		return nil, err
	}
	h.logger.Info("notification recorded", map[string]interface{}{
		"notificationId": n.ID,
		"ticketId":       n.TicketID,
		"type":           string(n.Type),
	})
	return &Output{NotificationID: n.ID, Notification: *n}, nil
}
