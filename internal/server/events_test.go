package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/SPAN-LLC/langfuse/internal/domain"
	"github.com/SPAN-LLC/langfuse/internal/queue"
	"github.com/SPAN-LLC/langfuse/internal/worker"
)

// fakeEventsQueue is an in-memory queue.Queue sufficient to assert what
// EventsHandler enqueues, without needing a live Redis instance.
type fakeEventsQueue struct {
	mu      sync.Mutex
	pending map[string][][]byte
}

func newFakeEventsQueue() *fakeEventsQueue {
	return &fakeEventsQueue{pending: make(map[string][][]byte)}
}

func (f *fakeEventsQueue) Enqueue(ctx context.Context, queueName string, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending[queueName] = append(f.pending[queueName], payload)
	return nil
}

func (f *fakeEventsQueue) Len(ctx context.Context, queueName string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.pending[queueName])), nil
}

func (f *fakeEventsQueue) Consume(ctx context.Context, queueName string, concurrency int, handler queue.Handler) error {
	return nil
}

var _ queue.Queue = (*fakeEventsQueue)(nil)

func discardEventsLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEventsHandler_MissingAuth(t *testing.T) {
	q := newFakeEventsQueue()
	handler := EventsHandler(q, "secret", discardEventsLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/events", strings.NewReader(`[]`))
	rr := httptest.NewRecorder()
	handler(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
}

func TestEventsHandler_WrongPassword(t *testing.T) {
	q := newFakeEventsQueue()
	handler := EventsHandler(q, "secret", discardEventsLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/events", strings.NewReader(`[]`))
	req.SetBasicAuth("server", "wrong")
	rr := httptest.NewRecorder()
	handler(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
}

func TestEventsHandler_EnqueuesOnePerNotification(t *testing.T) {
	q := newFakeEventsQueue()
	handler := EventsHandler(q, "secret", discardEventsLogger())

	body := `[{"traceId":"t1","projectId":"p1"},{"traceId":"t2","projectId":"p1"}]`
	req := httptest.NewRequest(http.MethodPost, "/api/events", strings.NewReader(body))
	req.SetBasicAuth("server", "secret")
	rr := httptest.NewRecorder()
	handler(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rr.Code)
	}

	n, err := q.Len(context.Background(), worker.TraceUpsertQueueName)
	if err != nil {
		t.Fatalf("Len() error = %v", err)
	}
	if n != 2 {
		t.Fatalf("pending jobs = %d, want 2", n)
	}

	q.mu.Lock()
	var job domain.TraceUpsertJob
	if err := json.Unmarshal(q.pending[worker.TraceUpsertQueueName][0], &job); err != nil {
		q.mu.Unlock()
		t.Fatalf("unmarshal enqueued job: %v", err)
	}
	q.mu.Unlock()

	if job.TraceID != "t1" || job.ProjectID != "p1" {
		t.Fatalf("job = %+v, want traceId=t1 projectId=p1", job)
	}
}

func TestEventsHandler_WrongMethod(t *testing.T) {
	q := newFakeEventsQueue()
	handler := EventsHandler(q, "secret", discardEventsLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req.SetBasicAuth("server", "secret")
	rr := httptest.NewRecorder()
	handler(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rr.Code)
	}
}
