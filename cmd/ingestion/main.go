// ingestion runs the batch ingestion HTTP service: C2's auth+rate-limit
// middleware in front of C4's coordinator, fanning trace upserts out to the
// worker service via C5.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/SPAN-LLC/langfuse/internal/config"
	"github.com/SPAN-LLC/langfuse/internal/telemetry"
	"github.com/SPAN-LLC/langfuse/pkg/ingestservice"
)

func main() {
	_ = godotenv.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	shutdownTracer, err := telemetry.InitTracer("langfuse-ingestion", logger)
	if err != nil {
		log.Fatalf("init tracer: %v", err)
	}
	defer shutdownTracer(context.Background())

	shutdownMeter, err := telemetry.InitMeter("langfuse-ingestion", logger)
	if err != nil {
		log.Fatalf("init meter: %v", err)
	}
	defer shutdownMeter(context.Background())

	svc, err := ingestservice.New(
		ingestservice.WithLogger(logger),
		ingestservice.WithConfig(cfg),
		ingestservice.WithSQLiteStore(),
		ingestservice.WithRateLimiter(),
	)
	if err != nil {
		log.Fatalf("build ingestion service: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := svc.Start(ctx); err != nil {
		log.Fatalf("start ingestion service: %v", err)
	}
	logger.Info("ingestion service started", slog.Int("port", cfg.Server.Port))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Info("shutting down")
	if err := svc.Shutdown(context.Background()); err != nil {
		logger.Error("shutdown error", slog.String("error", err.Error()))
	}
}
