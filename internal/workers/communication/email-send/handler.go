package emailsend

import (
	"context"

	"brokerage-portal/internal/common/camunda"
	"brokerage-portal/internal/common/config"
	"brokerage-portal/internal/common/errors"
	"brokerage-portal/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "email-send"

type Executor interface {
	Execute(ctx context.Context, input *Input) (*Output, error)
}

type Handler struct {
	config  *Config
	service Executor
	runner  *camunda.JobRunner
	logger  logger.Logger
}

func NewHandler(appConfig *config.Config, sender Sender, log logger.Logger) *Handler {
	cfg := createConfigFromAppConfig(appConfig)
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:  cfg,
		service: NewService(cfg, sender, log),
		runner:  camunda.NewJobRunner(TaskType, cfg.Timeout, log, nil),
		logger:  log,
	}
}

func (h *Handler) GetTaskType() string { return TaskType }

func (h *Handler) IsEnabled() bool { return h.config.Enabled }

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.runner.Run(client, job, func(ctx context.Context, vars map[string]interface{}) (interface{}, error) {
		if !h.config.Enabled {
			return nil, errors.NewBusinessRuleError("Email sending is disabled", "integrations.aws.ses.enabled is false")
		}
		var input Input
		if err := camunda.DecodeVariables(vars, GetInputSchema(), &input); err != nil {
			return nil, err
		}
		return h.service.Execute(ctx, &input)
	})
}
