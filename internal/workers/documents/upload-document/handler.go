// internal/workers/documents/upload-document/handler.go
package uploaddocument

import (
	"context"
	"encoding/base64"
	"fmt"

	"brokerage-portal/internal/common/camunda"
	"brokerage-portal/internal/common/config"
	"brokerage-portal/internal/common/errors"
	"brokerage-portal/internal/common/logger"
	"brokerage-portal/internal/models"
	"brokerage-portal/internal/portal/documents"
	"brokerage-portal/internal/portal/faults"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "upload-document"

type Uploader interface {
	Upload(ctx context.Context, ownerID, bucketID string, f documents.File, metadata map[string]string) (*models.Document, error)
}

type Handler struct {
	documents Uploader
	runner    *camunda.JobRunner
	logger    logger.Logger
}

func NewHandler(cfg *config.Config, docs Uploader, log logger.Logger) *Handler {
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

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	content, err := base64.StdEncoding.DecodeString(input.Content)
	if err != nil {
		return nil, errors.NewDocumentRejectedError(fmt.Sprintf("content is not valid base64: %v", err))
	}

	doc, err := h.documents.Upload(ctx, input.OwnerID, input.BucketID, documents.File{
		Name:       input.Name,
		MimeType:   input.MimeType,
		IssuedDate: input.IssuedDate,
		Content:    content,
	}, input.Metadata)
	if err != nil {
		return nil, err
	}

	h.logger.Info("document uploaded", map[string]interface{}{
		"ownerId":    input.OwnerID,
		"bucketId":   input.BucketID,
		"documentId": doc.ID,
		"size":       len(content),
	})

	// The stored record already holds the body; don't echo it into process variables.
	out := *doc
	out.Payload = nil
	return &Output{
		DocumentID: doc.ID,
		Checksum:   doc.Checksum,
		StorageRef: doc.StorageRef,
		Document:   out,
	}, nil
}
