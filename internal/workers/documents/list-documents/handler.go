// internal/workers/documents/list-documents/handler.go
package listdocuments

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

const TaskType = "list-documents"

type Reader interface {
	ReadDocuments(ctx context.Context, ownerID string) ([]models.Bucket, error)
}

type Handler struct {
	documents Reader
	runner    *camunda.JobRunner
	logger    logger.Logger
}

func NewHandler(cfg *config.Config, docs Reader, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	wcfg := config.GetWorkerConfig(cfg, TaskType)
	return &Handler{
		documents: docs,
		runner:    camunda.NewJobRunner(TaskType, config.GetDuration(wcfg.Timeout), log, faults.ToStandard),
		logger:    log,
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

// Execute returns every configured bucket, empty ones included, and names
// the buckets that have no document yet.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	buckets, err := h.documents.ReadDocuments(ctx, input.OwnerID)
	if err != nil {
		return nil, err
	}

	out := &Output{Buckets: append([]models.Bucket(nil), buckets...), Missing: []string{}}
	for i := range out.Buckets {
		b := &out.Buckets[i]
		if len(b.Documents) == 0 {
			out.Missing = append(out.Missing, b.ID)
			continue
		}
		out.DocumentCount += len(b.Documents)
		if input.IncludePayload {
			continue
		}
		docs := make([]models.Document, len(b.Documents))
		for j, d := range b.Documents {
			d.Payload = nil
			docs[j] = d
		}
		b.Documents = docs
	}
	return out, nil
}
