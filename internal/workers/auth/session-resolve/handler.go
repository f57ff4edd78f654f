package sessionresolve

import (
	"context"

	"brokerage-portal/internal/common/camunda"
	"brokerage-portal/internal/common/config"
	"brokerage-portal/internal/common/errors"
	"brokerage-portal/internal/common/logger"
	"brokerage-portal/internal/portal/faults"
	"brokerage-portal/internal/portal/session"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "session-resolve"

// Sessions is satisfied by *session.Resolver.
type Sessions interface {
	ResolveSession(ctx context.Context, accessToken, refreshToken string) (*session.Session, error)
	Revoke(ctx context.Context, accessToken string) error
}

type Handler struct {
	sessions Sessions
	runner   *camunda.JobRunner
	logger   logger.Logger
}

func NewHandler(cfg *config.Config, sessions Sessions, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	wcfg := config.GetWorkerConfig(cfg, TaskType)
	return &Handler{
		sessions: sessions,
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
	switch input.Action {
	case "", ActionResolve:
		s, err := h.sessions.ResolveSession(ctx, input.AccessToken, input.RefreshToken)
		if err != nil {
			return nil, err
		}
		h.logger.Info("session resolved", map[string]interface{}{
			"sessionId": s.ID,
			"userId":    s.User.ID,
		})
		return &Output{
			Authenticated: true,
			SessionID:     s.ID,
			UserID:        s.User.ID,
			UserEmail:     s.User.Email,
			Scopes:        s.User.Scopes,
		}, nil
	case ActionRevoke:
		if err := h.sessions.Revoke(ctx, input.AccessToken); err != nil {
			return nil, err
		}
		h.logger.Info("session revoked", nil)
		return &Output{Revoked: true}, nil
	default:
		return nil, errors.NewValidationError("unknown action " + input.Action)
	}
}
