package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/SPAN-LLC/langfuse/internal/domain"
	"github.com/SPAN-LLC/langfuse/internal/ingestion"
	"github.com/SPAN-LLC/langfuse/internal/ratelimit"
	"github.com/SPAN-LLC/langfuse/internal/storage"
)

// Server is the ingestion HTTP service (C4's entrypoint, wrapping C2's
// auth+rate-limit middleware).
type Server struct {
	Router *chi.Mux
	Port   int
	logger *slog.Logger
}

// New wires the ingestion HTTP surface: request ID, structured logging,
// timeout, panic recovery, otel instrumentation, then C2's
// AuthAndRateLimitMiddleware gating POST /api/public/ingestion.
func New(port int, logger *slog.Logger, store storage.OrgKeyStore, limiter *ratelimit.Limiter, coordinator *ingestion.Coordinator) *Server {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(logger))
	r.Use(TimeoutMiddleware(30 * time.Second))
	r.Use(middleware.Recoverer)
	r.Use(func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, "langfuse-ingestion")
	})

	r.Route("/api/public/ingestion", func(r chi.Router) {
		r.Use(AuthAndRateLimitMiddleware(store, limiter, domain.ResourceIngestion))
		r.Post("/", IngestionHandler(coordinator))
	})

	return &Server{
		Router: r,
		Port:   port,
		logger: logger,
	}
}

func (s *Server) Start() error {
	s.logger.Info("starting server", slog.Int("port", s.Port))
	return http.ListenAndServe(fmt.Sprintf(":%d", s.Port), s.Router)
}
