package camunda

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"brokerage-portal/internal/common/errors"
	"brokerage-portal/internal/common/logger"
	"brokerage-portal/internal/common/metrics"
	"brokerage-portal/internal/common/observability"
	"brokerage-portal/internal/common/validation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const reportTimeout = 10 * time.Second

// ExecuteFunc is a worker's business call on the decoded job variables.
type ExecuteFunc func(ctx context.Context, vars map[string]interface{}) (interface{}, error)

// JobRunner wraps a worker's business call with metrics, a trace span, a
// timeout and job completion or failure reporting.
type JobRunner struct {
	TaskType string
	Timeout  time.Duration
	Logger   logger.Logger
	Errors   *errors.ErrorHandler
	// Translate maps domain errors to *errors.StandardError before
	// reporting. Nil leaves errors as they are.
	Translate func(error) error
	// ReportRetry bounds retries of the complete command.
	ReportRetry *RetryConfig
}

func NewJobRunner(taskType string, timeout time.Duration, log logger.Logger, translate func(error) error) *JobRunner {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &JobRunner{
		TaskType:    taskType,
		Timeout:     timeout,
		Logger:      log,
		Errors:      errors.NewErrorHandler(log),
		Translate:   translate,
		ReportRetry: &RetryConfig{
			MaxRetries: 2,
			BaseDelay:  200 * time.Millisecond,
			MaxDelay:   2 * time.Second,
		},
	}
}

func (r *JobRunner) Run(client worker.JobClient, job entities.Job, exec ExecuteFunc) {
	start := time.Now()
	inFlight := metrics.JobsInFlight.WithLabelValues(r.TaskType)
	inFlight.Inc()
	defer inFlight.Dec()

	ctx, cancel := context.WithTimeout(context.Background(), r.Timeout)
	defer cancel()
	ctx, span := observability.StartJobSpan(ctx, r.TaskType, job.GetKey())

	r.Logger.Info("processing job", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
	})

	output, err := r.execute(ctx, job, exec)
	observability.EndSpan(span, err)

	// Reporting gets its own deadline so a timed-out job can still fail.
	reportCtx, cancelReport := context.WithTimeout(context.Background(), reportTimeout)
	defer cancelReport()

	if err != nil {
		err = r.translate(err)
		std := errors.Normalize(err)
		bpmnErr := r.Errors.HandleJobError(reportCtx, client, job, std)
		outcome := "thrown"
		if bpmnErr.Retries > 0 && job.Retries > 1 {
			outcome = "failed"
		}
		r.record(reportCtx, outcome, string(std.Code), start)
		return
	}

	err = Retry(reportCtx, r.ReportRetry, "complete job", func(ctx context.Context) error {
		return CompleteJob(ctx, client, job, output)
	})
	if err != nil {
		r.Logger.Error("failed to complete job", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		return
	}
	r.record(reportCtx, "completed", "", start)
	r.Logger.Debug("job completed", map[string]interface{}{
		"jobKey":   job.GetKey(),
		"duration": time.Since(start).String(),
	})
}

func (r *JobRunner) record(ctx context.Context, outcome, code string, start time.Time) {
	elapsed := time.Since(start)
	metrics.JobOutcomes.WithLabelValues(r.TaskType, outcome, code).Inc()
	metrics.JobDuration.WithLabelValues(r.TaskType, outcome).Observe(elapsed.Seconds())
	observability.RecordJob(ctx, r.TaskType, outcome, elapsed)
}

func (r *JobRunner) execute(ctx context.Context, job entities.Job, exec ExecuteFunc) (interface{}, error) {
	vars, err := job.GetVariablesAsMap()
	if err != nil {
		return nil, errors.NewValidationError(fmt.Sprintf("parse job variables: %v", err))
	}
	return exec(ctx, vars)
}

func (r *JobRunner) translate(err error) error {
	if r.Translate == nil {
		return err
	}
	return r.Translate(err)
}

// DecodeVariables validates vars against schema and decodes them into out.
func DecodeVariables(vars map[string]interface{}, schema validation.JSONSchema, out interface{}) error {
	if res := validation.ValidateInput(vars, schema); !res.Valid {
		return errors.NewValidationError(strings.Join(res.GetErrorMessages(), "; "))
	}
	raw, err := json.Marshal(vars)
	if err != nil {
		return errors.NewValidationError(fmt.Sprintf("encode variables: %v", err))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.NewValidationError(fmt.Sprintf("decode variables: %v", err))
	}
	return nil
}
