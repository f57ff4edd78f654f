// internal/workers/onboarding/compute-risk-profile/handler.go
package computeriskprofile

import (
	"context"
	"time"

	"brokerage-portal/internal/common/camunda"
	"brokerage-portal/internal/common/config"
	"brokerage-portal/internal/common/logger"
	"brokerage-portal/internal/common/metrics"
	"brokerage-portal/internal/models"
	"brokerage-portal/internal/portal/faults"
	"brokerage-portal/internal/portal/gateway"
	"brokerage-portal/internal/portal/risk"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "compute-risk-profile"

type Handler struct {
	profiles *gateway.Gateway[models.RiskProfile]
	runner   *camunda.JobRunner
	logger   logger.Logger
	now      func() time.Time
}

func NewHandler(cfg *config.Config, profiles *gateway.Gateway[models.RiskProfile], log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	wcfg := config.GetWorkerConfig(cfg, TaskType)
	return &Handler{
		profiles: profiles,
		runner:   camunda.NewJobRunner(TaskType, config.GetDuration(wcfg.Timeout), log, faults.ToStandard),
		logger:   log,
		now:      time.Now,
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

// Execute scores the answers and stores the resulting profile.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	profile, err := risk.NewProfile(input.Name, input.OwnerID, risk.Answers(input.Answers), h.now())
	if err != nil {
		return nil, err
	}
	if _, err := h.profiles.Create(ctx, profile); err != nil {
		return nil, err
	}
	metrics.RiskProfilesComputed.WithLabelValues(profile.Archetype).Inc()

	h.logger.Info("risk profile computed", map[string]interface{}{
		"riskProfileId": profile.ID,
		"score":         profile.Score.String(),
		"archetype":     profile.Archetype,
	})
	return &Output{
		RiskProfileID: profile.ID,
		Score:         profile.Score.String(),
		Archetype:     profile.Archetype,
		Allocation:    profile.Allocation,
		AverageYield:  profile.AverageYield.String(),
		Profile:       *profile,
	}, nil
}
