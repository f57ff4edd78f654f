// internal/workers/data-access/search-contacts/handler.go
package searchcontacts

import (
	"context"
	"strings"

	"brokerage-portal/internal/common/camunda"
	"brokerage-portal/internal/common/config"
	"brokerage-portal/internal/common/errors"
	"brokerage-portal/internal/common/logger"
	"brokerage-portal/internal/portal/faults"
	"brokerage-portal/internal/portal/search"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "search-contacts"

type Searcher interface {
	Name() string
	Search(ctx context.Context, q search.Query) (*search.Result, error)
}

type Handler struct {
	index  Searcher
	runner *camunda.JobRunner
	logger logger.Logger
}

func NewHandler(cfg *config.Config, index Searcher, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	wcfg := config.GetWorkerConfig(cfg, TaskType)
	return &Handler{
		index:  index,
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
	res, err := h.index.Search(ctx, search.Query{
		Text:      strings.TrimSpace(input.Text),
		AdvisorID: input.AdvisorID,
		Country:   input.Country,
		From:      input.From,
		Size:      input.Size,
	})
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.NewSearchTimeoutError(h.index.Name())
		}
		return nil, err
	}
	h.logger.Debug("contact search", map[string]interface{}{
		"hits": res.TotalHits,
		"took": res.Took,
	})
	return &Output{
		Contacts:  res.Contacts,
		TotalHits: res.TotalHits,
		MaxScore:  res.MaxScore,
		Took:      res.Took,
	}, nil
}
