// Package dispatch implements the cross-service dispatcher (C5): posting
// trace-upsert notifications to a separate worker service over HTTP,
// grounded directly on internal/pipeline/webhook_stage.go's doRequest shape
// (marshal JSON, http.NewRequestWithContext, fixed-timeout client) and using
// internal/pkg/safehttp.SafeTransport to block SSRF via a misconfigured
// WORKER_HOST.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/SPAN-LLC/langfuse/internal/domain"
	"github.com/SPAN-LLC/langfuse/internal/pkg/safehttp"
	"github.com/SPAN-LLC/langfuse/internal/telemetry"
)

const requestTimeout = 5 * time.Second

// WorkerClient posts trace-upsert notifications to the worker service's
// /api/events endpoint (spec §4.5, §6).
type WorkerClient struct {
	host     string
	password string
	client   *http.Client
	logger   *slog.Logger
}

// NewWorkerClient constructs a WorkerClient. host/password come from the
// WORKER_HOST/WORKER_PASSWORD env vars (spec §6); an empty host makes
// NotifyTraceUpserts a no-op, matching deployments with no worker service.
func NewWorkerClient(host, password string, logger *slog.Logger) *WorkerClient {
	return &WorkerClient{
		host:     host,
		password: password,
		client:   &http.Client{Timeout: requestTimeout, Transport: safehttp.SafeTransport},
		logger:   logger,
	}
}

// WithTransport overrides the client's transport, used by tests to splice
// in a VCR recorder in place of safehttp.SafeTransport.
func (c *WorkerClient) WithTransport(rt http.RoundTripper) *WorkerClient {
	c.client = &http.Client{Timeout: requestTimeout, Transport: rt}
	return c
}

// NotifyTraceUpserts fans out all TRACE_CREATE results from one ingestion
// batch to the worker service (spec §4.4 step 10). Best-effort: failures are
// logged and recorded as a metric, never propagated to the caller.
func (c *WorkerClient) NotifyTraceUpserts(ctx context.Context, traceIDs []string, projectID string) {
	if c.host == "" || c.password == "" || len(traceIDs) == 0 {
		return
	}

	notifications := make([]domain.TraceUpsertNotification, len(traceIDs))
	for i, id := range traceIDs {
		notifications[i] = domain.TraceUpsertNotification{TraceID: id, ProjectID: projectID}
	}

	if err := c.doRequest(ctx, notifications); err != nil {
		c.logger.Warn("worker notification failed", slog.String("error", err.Error()), slog.String("project_id", projectID))
		telemetry.RecordIncrement("worker-notify-failed", 0, map[string]string{"projectId": projectID})
	}
}

func (c *WorkerClient) doRequest(ctx context.Context, notifications []domain.TraceUpsertNotification) error {
	body, err := json.Marshal(notifications)
	if err != nil {
		return fmt.Errorf("marshal notifications: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/api/events", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth("server", c.password)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("notify worker: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("worker returned status %d", resp.StatusCode)
	}
	return nil
}
