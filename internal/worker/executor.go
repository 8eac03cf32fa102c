package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/SPAN-LLC/langfuse/internal/domain"
	"github.com/SPAN-LLC/langfuse/internal/queue"
	"github.com/SPAN-LLC/langfuse/internal/storage"
	"github.com/SPAN-LLC/langfuse/internal/telemetry"
)

// EvaluationExecutionQueueName is the queue.Queue name C6 publishes
// evaluation jobs onto and C7 consumes from (spec §4.7).
const EvaluationExecutionQueueName = "evaluation-execution"

// apiKeyErrorSubstring marks an error as an "expected" provider
// misconfiguration (missing API key) that should not be reported to the
// error tracker (spec §4.7, §7).
const apiKeyErrorSubstring = "API key for provider"

// Executor is the eval-executor worker (C7).
type Executor struct {
	evaluator Evaluator
	store     storage.JobExecutionStore
	logger    *slog.Logger
}

// NewExecutor wires C7 against a business Evaluator and the store used to
// persist terminal job state.
func NewExecutor(evaluator Evaluator, store storage.JobExecutionStore, logger *slog.Logger) *Executor {
	return &Executor{evaluator: evaluator, store: store, logger: logger}
}

// Run blocks, consuming q's EvaluationExecutionQueueName at the given
// concurrency until ctx is cancelled (spec §4.7, §5).
func (e *Executor) Run(ctx context.Context, q queue.Queue, concurrency int) error {
	return q.Consume(ctx, EvaluationExecutionQueueName, concurrency, func(ctx context.Context, payload []byte) error {
		return e.handle(ctx, q, payload)
	})
}

func (e *Executor) handle(ctx context.Context, q queue.Queue, payload []byte) error {
	var job domain.EvaluationExecutionJob
	if err := json.Unmarshal(payload, &job); err != nil {
		e.logger.Error("evaluation execution job payload malformed", slog.String("error", err.Error()))
		return domain.BadRequestError("malformed evaluation execution job")
	}

	attrs := map[string]string{"projectId": job.ProjectID}
	telemetry.RecordIncrement("eval_execution_queue_request", 0, attrs)
	telemetry.RecordHistogram("eval_execution_queue_wait_time", time.Since(job.EnqueuedAt).Seconds(), "s")

	if length, err := q.Len(ctx, EvaluationExecutionQueueName); err == nil {
		telemetry.RecordGauge("eval_execution_queue_length", float64(length), "1")
	}

	start := time.Now()
	err := telemetry.Instrument(ctx, telemetry.SpanOptions{
		Name:               "eval-executor.process",
		SpanKind:           trace.SpanKindConsumer,
		RemoteTraceContext: job.TraceContext,
	}, func(ctx context.Context) error {
		return e.evaluator.Evaluate(ctx, job.ProjectID, job.JobExecutionID)
	})
	telemetry.RecordHistogram("eval_execution_queue_processing_time", time.Since(start).Seconds(), "s")

	if err != nil {
		displayError := domain.DisplayError(err)
		if markErr := e.store.MarkError(ctx, job.JobExecutionID, job.ProjectID, displayError); markErr != nil {
			e.logger.Error("failed to persist job execution error state",
				slog.String("job_execution_id", job.JobExecutionID), slog.String("error", markErr.Error()))
		}

		if !isExpectedError(err) {
			telemetry.TraceException(ctx, err)
			e.logger.Error("evaluation execution failed",
				slog.String("job_execution_id", job.JobExecutionID), slog.String("project_id", job.ProjectID), slog.String("error", err.Error()))
		}
		return err
	}
	return nil
}

// isExpectedError reports whether err is a known, non-actionable failure
// mode (provider API errors, missing provider API keys) that shouldn't page
// anyone via the error tracker (spec §4.7, §7).
func isExpectedError(err error) bool {
	switch domain.AsDomainError(err).Kind {
	case domain.ErrorKindAuthentication, domain.ErrorKindBadRequest, domain.ErrorKindRateLimit:
		return true
	}
	return strings.Contains(err.Error(), apiKeyErrorSubstring)
}
