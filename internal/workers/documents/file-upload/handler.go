// internal/workers/documents/file-upload/handler.go
package fileupload

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"brokerage-portal/internal/common/camunda"
	"brokerage-portal/internal/common/config"
	"brokerage-portal/internal/common/errors"
	"brokerage-portal/internal/common/logger"
	"brokerage-portal/internal/portal/documents"
	"brokerage-portal/internal/portal/faults"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const TaskType = "file-upload"

const defaultContentType = "application/octet-stream"

type Handler struct {
	files   documents.FileStore
	maxSize int64
	runner  *camunda.JobRunner
	logger  logger.Logger
}

func NewHandler(cfg *config.Config, files documents.FileStore, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	wcfg := config.GetWorkerConfig(cfg, TaskType)
	return &Handler{
		files:   files,
		maxSize: cfg.Documents.MaxUploadSize,
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

// Execute writes the file under a fresh reference ID.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if h.files == nil {
		return nil, errors.NewBusinessRuleError("File storage is not configured", "integrations.aws.s3 is disabled")
	}
	if strings.Contains(input.Folder, "..") {
		return nil, errors.NewValidationError("folder must not contain '..'")
	}

	content, err := base64.StdEncoding.DecodeString(input.Content)
	if err != nil {
		return nil, errors.NewDocumentRejectedError(fmt.Sprintf("content is not valid base64: %v", err))
	}
	if len(content) == 0 {
		return nil, documents.ErrEmptyFile
	}
	if h.maxSize > 0 && int64(len(content)) > h.maxSize {
		return nil, fmt.Errorf("%w: %d bytes", documents.ErrFileTooLarge, len(content))
	}

	contentType := input.ContentType
	if contentType == "" {
		contentType = defaultContentType
	}

	refID := uuid.NewString()
	metadata := map[string]string{"reference-id": refID}
	for k, v := range input.Metadata {
		metadata[k] = v
	}

	ref, err := h.files.Put(ctx, input.Folder, refID+"-"+input.FileName, contentType, content, metadata)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", documents.ErrFileStorage, err)
	}

	h.logger.Info("file stored", map[string]interface{}{
		"referenceId": refID,
		"storageRef":  ref,
		"size":        len(content),
	})
	return &Output{ReferenceID: refID, StorageRef: ref, Size: len(content)}, nil
}
