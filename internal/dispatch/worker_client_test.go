package dispatch

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/SPAN-LLC/langfuse/internal/testutil"
)

func TestWorkerClient_NotifyTraceUpserts(t *testing.T) {
	recorder, cleanup := testutil.NewVCRRecorder(t, "worker_notify")
	defer cleanup()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	client := NewWorkerClient("http://worker.internal", "secret", logger).WithTransport(recorder)

	client.NotifyTraceUpserts(context.Background(), []string{"trace1", "trace2"}, "proj1")
	// Best-effort: NotifyTraceUpserts never returns an error. This test's
	// assertion is that it completes without panicking against the cassette.
}

func TestWorkerClient_NotifyTraceUpserts_NoopWithoutHost(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	client := NewWorkerClient("", "", logger)

	client.NotifyTraceUpserts(context.Background(), []string{"trace1"}, "proj1")
}
