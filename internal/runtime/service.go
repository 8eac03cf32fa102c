// Package runtime provides the functional-options lifecycle wiring for the
// worker binary, generalized from the teacher's runtime.Gateway
// (internal/runtime/gateway.go): New(opts...) builds a service from injected
// dependencies, Run consumes until cancelled, and Shutdown releases
// everything cleanly. Where the teacher's WithKafkaEvents/WithNATSEvents
// were unimplemented TODO stubs, WithRedisQueue here is fully wired. The
// ingestion side of this same pattern lives in the public pkg/ingestservice
// package so it can be embedded by other programs.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/SPAN-LLC/langfuse/internal/config"
	"github.com/SPAN-LLC/langfuse/internal/queue"
	"github.com/SPAN-LLC/langfuse/internal/server"
	"github.com/SPAN-LLC/langfuse/internal/storage/sqlite"
	"github.com/SPAN-LLC/langfuse/internal/worker"
)

// base holds the dependencies assembled by Option functions before
// WorkerService is built.
type base struct {
	logger *slog.Logger
	cfg    *config.Config
	store  *sqlite.Store
	queue  queue.Queue
}

// Option configures a base during New.
type Option func(*base) error

func newBase(opts ...Option) (*base, error) {
	b := &base{logger: slog.Default()}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}
	if b.cfg == nil {
		return nil, fmt.Errorf("config required (use WithConfig)")
	}
	return b, nil
}

// WorkerService runs the eval-job-creator (C6) and eval-executor (C7) pools
// against a shared queue, fed by the C5 receiving endpoint (spec §4.5,
// §4.6, §4.7).
type WorkerService struct {
	*base
	creator   *worker.Creator
	executor  *worker.Executor
	eventsSrv *server.Server
}

// NewWorkerService builds the worker pools. Requires WithConfig,
// WithSQLiteStore, and WithRedisQueue. jobCreator/evaluator default to the
// Noop implementations when nil, matching the opaque business-logic
// boundary (spec §1).
func NewWorkerService(jobCreator worker.EvalJobCreator, evaluator worker.Evaluator, opts ...Option) (*WorkerService, error) {
	b, err := newBase(opts...)
	if err != nil {
		return nil, err
	}
	if b.store == nil {
		return nil, fmt.Errorf("sqlite store required (use WithSQLiteStore)")
	}
	if b.queue == nil {
		return nil, fmt.Errorf("queue required (use WithRedisQueue)")
	}
	if jobCreator == nil {
		jobCreator = worker.NoopEvalJobCreator{}
	}
	if evaluator == nil {
		evaluator = worker.NoopEvaluator{}
	}

	return &WorkerService{
		base:      b,
		creator:   worker.NewCreator(jobCreator, b.logger),
		executor:  worker.NewExecutor(evaluator, b.store, b.logger),
		eventsSrv: server.NewEventsServer(b.cfg.Worker.Port, b.logger, b.queue, b.cfg.Worker.Password),
	}, nil
}

// Run starts the C5 receiving endpoint and blocks both worker pools until
// ctx is cancelled (spec §4.5, §5).
func (s *WorkerService) Run(ctx context.Context) error {
	go func() {
		if err := s.eventsSrv.Start(); err != nil {
			s.logger.Error("events server stopped", slog.String("error", err.Error()))
		}
	}()

	var wg sync.WaitGroup
	errs := make(chan error, 2)

	wg.Add(2)
	go func() {
		defer wg.Done()
		errs <- s.creator.Run(ctx, s.queue, s.cfg.Worker.CreatorConcurrency)
	}()
	go func() {
		defer wg.Done()
		errs <- s.executor.Run(ctx, s.queue, s.cfg.Worker.ExecutorConcurrency)
	}()

	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil && err != context.Canceled {
			return err
		}
	}
	return nil
}

// Shutdown releases the store's connection.
func (s *WorkerService) Shutdown(ctx context.Context) error {
	return s.store.Close()
}
