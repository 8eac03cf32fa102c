// worker runs the eval-job-creator (C6) and eval-executor (C7) pools against
// the shared Redis queue, fed by POST /api/events, the receiving end of C5
// that the ingestion service's dispatcher notifies.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/SPAN-LLC/langfuse/internal/config"
	"github.com/SPAN-LLC/langfuse/internal/runtime"
	"github.com/SPAN-LLC/langfuse/internal/telemetry"
)

func main() {
	_ = godotenv.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	shutdownTracer, err := telemetry.InitTracer("langfuse-worker", logger)
	if err != nil {
		log.Fatalf("init tracer: %v", err)
	}
	defer shutdownTracer(context.Background())

	shutdownMeter, err := telemetry.InitMeter("langfuse-worker", logger)
	if err != nil {
		log.Fatalf("init meter: %v", err)
	}
	defer shutdownMeter(context.Background())

	// jobCreator/evaluator default to runtime's Noop implementations: the
	// "which evaluators run and how they score" business logic is out of
	// scope, only the queueing/worker mechanics around it.
	svc, err := runtime.NewWorkerService(nil, nil,
		runtime.WithLogger(logger),
		runtime.WithConfig(cfg),
		runtime.WithSQLiteStore(),
		runtime.WithRedisQueue(30*time.Second),
	)
	if err != nil {
		log.Fatalf("build worker service: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- svc.Run(ctx)
	}()
	logger.Info("worker service started",
		slog.Int("events_port", cfg.Worker.Port),
		slog.Int("creator_concurrency", cfg.Worker.CreatorConcurrency),
		slog.Int("executor_concurrency", cfg.Worker.ExecutorConcurrency))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sig:
		logger.Info("shutting down")
		cancel()
		<-done
	case err := <-done:
		if err != nil {
			logger.Error("worker service stopped", slog.String("error", err.Error()))
		}
	}

	if err := svc.Shutdown(context.Background()); err != nil {
		logger.Error("shutdown error", slog.String("error", err.Error()))
	}
}
