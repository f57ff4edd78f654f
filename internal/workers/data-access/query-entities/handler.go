// internal/workers/data-access/query-entities/handler.go
package queryentities

import (
	"context"
	stderrors "errors"
	"fmt"

	"brokerage-portal/internal/common/camunda"
	"brokerage-portal/internal/common/config"
	"brokerage-portal/internal/common/errors"
	"brokerage-portal/internal/common/logger"
	"brokerage-portal/internal/portal/faults"
	"brokerage-portal/internal/portal/store"
	"brokerage-portal/internal/workers/data-access/query-entities/queries"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "query-entities"

type Handler struct {
	store  store.Store
	runner *camunda.JobRunner
	logger logger.Logger
}

func NewHandler(cfg *config.Config, s store.Store, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	wcfg := config.GetWorkerConfig(cfg, TaskType)
	return &Handler{
		store:  s,
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
	if input == nil {
		return nil, errors.NewValidationError("input cannot be nil")
	}

	params := make(map[string]interface{})
	set := func(key, value string) {
		if value != "" {
			params[key] = value
		}
	}
	set("collection", input.Collection)
	set("ticketId", input.TicketID)
	set("advisorId", input.AdvisorID)
	set("ownerId", input.OwnerID)
	set("status", input.Status)
	if input.Filters != nil {
		params["filters"] = input.Filters
	}

	data, rowCount, execTime, err := queries.Execute(ctx, h.store, queries.QueryType(input.QueryType), params)
	if err != nil {
		switch {
		case ctx.Err() == context.DeadlineExceeded:
			return nil, errors.NewQueryTimeoutError(input.Collection)
		case stderrors.Is(err, queries.ErrUnknownQueryType),
			stderrors.Is(err, queries.ErrUnknownCollection),
			stderrors.Is(err, queries.ErrMissingParam):
			return nil, errors.NewValidationError(err.Error())
		}
		return nil, fmt.Errorf("query %s: %w", input.QueryType, err)
	}

	h.logger.Debug("query executed", map[string]interface{}{
		"queryType": input.QueryType,
		"rows":      rowCount,
		"ms":        execTime,
	})
	return &Output{Data: data, RowCount: rowCount, QueryExecutionTime: execTime}, nil
}
