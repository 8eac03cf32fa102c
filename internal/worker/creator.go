// Package worker implements the eval-job-creator (C6) and eval-executor
// (C7) worker pools: each consumes one queue.Queue, wraps every job in an
// instrumented span, and invokes the corresponding opaque business function.
package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/SPAN-LLC/langfuse/internal/domain"
	"github.com/SPAN-LLC/langfuse/internal/queue"
	"github.com/SPAN-LLC/langfuse/internal/telemetry"
)

// TraceUpsertQueueName is the queue.Queue name C5's receiving worker
// publishes trace-upsert jobs onto and C6 consumes from (spec §4.6).
const TraceUpsertQueueName = "trace-upsert"

// Creator is the eval-job-creator worker (C6).
type Creator struct {
	jobCreator EvalJobCreator
	logger     *slog.Logger
}

// NewCreator wires C6 against a business EvalJobCreator.
func NewCreator(jobCreator EvalJobCreator, logger *slog.Logger) *Creator {
	return &Creator{jobCreator: jobCreator, logger: logger}
}

// Run blocks, consuming q's TraceUpsertQueueName at the given concurrency
// until ctx is cancelled (spec §4.6, §5).
func (c *Creator) Run(ctx context.Context, q queue.Queue, concurrency int) error {
	return q.Consume(ctx, TraceUpsertQueueName, concurrency, func(ctx context.Context, payload []byte) error {
		return c.handle(ctx, q, payload)
	})
}

func (c *Creator) handle(ctx context.Context, q queue.Queue, payload []byte) error {
	var job domain.TraceUpsertJob
	if err := json.Unmarshal(payload, &job); err != nil {
		c.logger.Error("trace upsert job payload malformed", slog.String("error", err.Error()))
		return domain.BadRequestError("malformed trace upsert job")
	}

	attrs := map[string]string{"projectId": job.ProjectID}
	telemetry.RecordIncrement("trace_upsert_queue_request", 0, attrs)
	telemetry.RecordHistogram("trace_upsert_queue_wait_time", time.Since(job.EnqueuedAt).Seconds(), "s")

	if length, err := q.Len(ctx, TraceUpsertQueueName); err == nil {
		telemetry.RecordGauge("trace_upsert_queue_length", float64(length), "1")
	}

	start := time.Now()
	err := telemetry.Instrument(ctx, telemetry.SpanOptions{
		Name:     "eval-job-creator.process",
		RootSpan: true,
		SpanKind: trace.SpanKindConsumer,
	}, func(ctx context.Context) error {
		return c.jobCreator.CreateEvalJobs(ctx, job.ProjectID, job.TraceID)
	})
	telemetry.RecordHistogram("trace_upsert_queue_processing_time", time.Since(start).Seconds(), "s")

	if err != nil {
		c.logger.Error("eval job creation failed",
			slog.String("project_id", job.ProjectID), slog.String("trace_id", job.TraceID), slog.String("error", err.Error()))
		return err
	}
	return nil
}
