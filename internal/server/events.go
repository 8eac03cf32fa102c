package server

import (
	"crypto/subtle"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/SPAN-LLC/langfuse/internal/domain"
	"github.com/SPAN-LLC/langfuse/internal/queue"
	"github.com/SPAN-LLC/langfuse/internal/worker"
)

// maxEventsBodyBytes caps the /api/events request body (spec §4.5, §6).
const maxEventsBodyBytes = 1_000_000

// NewEventsServer wires the worker binary's receiving end of C5: POST
// /api/events, authenticated with Basic auth "server:${WORKER_PASSWORD}",
// enqueuing a TraceUpsertJob per notification onto queue.Queue for C6 to
// consume. Mirrors New's middleware stack so both HTTP surfaces in this
// service share the same request-id/logging/recovery/otel conventions.
func NewEventsServer(port int, logger *slog.Logger, q queue.Queue, password string) *Server {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(logger))
	r.Use(TimeoutMiddleware(30 * time.Second))
	r.Use(middleware.Recoverer)
	r.Use(func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, "langfuse-worker-events")
	})

	r.Post("/api/events", EventsHandler(q, password, logger))

	return &Server{
		Router: r,
		Port:   port,
		logger: logger,
	}
}

// EventsHandler implements the receiving end of C5 (spec §4.5): verify the
// server credential, then enqueue a TraceUpsertJob per notification onto
// worker.TraceUpsertQueueName for C6's eval-job-creator pool to pick up.
func EventsHandler(q queue.Queue, password string, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		if !authenticateServer(r, password) {
			http.Error(w, "unauthenticated", http.StatusUnauthorized)
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, maxEventsBodyBytes+1))
		if err != nil {
			http.Error(w, "failed to read request body", http.StatusBadRequest)
			return
		}
		if len(body) > maxEventsBodyBytes {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}

		var notifications []domain.TraceUpsertNotification
		if err := json.Unmarshal(body, &notifications); err != nil {
			AddError(r.Context(), err)
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		for _, n := range notifications {
			job := domain.TraceUpsertJob{
				TraceID:    n.TraceID,
				ProjectID:  n.ProjectID,
				EnqueuedAt: time.Now(),
			}
			payload, err := json.Marshal(job)
			if err != nil {
				AddError(r.Context(), err)
				continue
			}
			if err := q.Enqueue(r.Context(), worker.TraceUpsertQueueName, payload); err != nil {
				logger.Error("enqueue trace upsert job failed",
					slog.String("project_id", n.ProjectID), slog.String("trace_id", n.TraceID), slog.String("error", err.Error()))
				AddError(r.Context(), err)
				http.Error(w, "failed to enqueue job", http.StatusInternalServerError)
				return
			}
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// authenticateServer verifies the Basic auth credential C5 sends:
// "server:${WORKER_PASSWORD}" (spec §4.5, §6).
func authenticateServer(r *http.Request, password string) bool {
	user, pass, ok := r.BasicAuth()
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(user), []byte("server")) == 1 &&
		subtle.ConstantTimeCompare([]byte(pass), []byte(password)) == 1
}
