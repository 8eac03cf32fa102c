// Package ingestservice is the embeddable entrypoint for the batch ingestion
// HTTP service (C2's auth+rate-limit middleware in front of C4's
// coordinator), mirroring the teacher's public pkg/gateway API: a
// functional-options New(opts...) constructor plus Start/Shutdown lifecycle
// methods, so the service can be run standalone (cmd/ingestion) or embedded
// by another Go program.
package ingestservice

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SPAN-LLC/langfuse/internal/config"
	"github.com/SPAN-LLC/langfuse/internal/dispatch"
	"github.com/SPAN-LLC/langfuse/internal/ingestion"
	"github.com/SPAN-LLC/langfuse/internal/processor"
	"github.com/SPAN-LLC/langfuse/internal/ratelimit"
	"github.com/SPAN-LLC/langfuse/internal/server"
	"github.com/SPAN-LLC/langfuse/internal/storage/sqlite"
)

// Service is a running (or buildable) instance of the ingestion API.
type Service struct {
	logger  *slog.Logger
	cfg     *config.Config
	store   *sqlite.Store
	limiter *ratelimit.Limiter
	srv     *server.Server
}

// Option configures a Service during New.
type Option func(*Service) error

// New builds a Service from opts. WithConfig is required; WithSQLiteStore
// and WithRateLimiter must also be supplied since the coordinator and C2
// middleware depend on both.
func New(opts ...Option) (*Service, error) {
	s := &Service{logger: slog.Default()}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}
	if s.cfg == nil {
		return nil, fmt.Errorf("config required (use WithConfig)")
	}
	if s.store == nil {
		return nil, fmt.Errorf("sqlite store required (use WithSQLiteStore)")
	}
	if s.limiter == nil {
		return nil, fmt.Errorf("rate limiter required (use WithRateLimiter)")
	}

	registry := processor.NewRegistry(s.store)
	notifier := dispatch.NewWorkerClient(s.cfg.Worker.Host, s.cfg.Worker.Password, s.logger)
	coordinator := ingestion.NewCoordinator(s.store, registry, notifier)
	s.srv = server.New(s.cfg.Server.Port, s.logger, s.store, s.limiter, coordinator)

	return s, nil
}

// Start begins serving HTTP in the background and returns immediately.
func (s *Service) Start(ctx context.Context) error {
	go func() {
		if err := s.srv.Start(); err != nil {
			s.logger.Error("ingestion server stopped", slog.String("error", err.Error()))
		}
	}()
	return nil
}

// Shutdown releases the store and rate limiter's connections.
func (s *Service) Shutdown(ctx context.Context) error {
	var firstErr error
	if err := s.limiter.Close(); err != nil {
		firstErr = err
	}
	if err := s.store.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
