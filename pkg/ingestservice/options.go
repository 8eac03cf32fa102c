package ingestservice

import (
	"fmt"
	"log/slog"

	"github.com/SPAN-LLC/langfuse/internal/config"
	"github.com/SPAN-LLC/langfuse/internal/ratelimit"
	"github.com/SPAN-LLC/langfuse/internal/storage/sqlite"
)

// WithConfig sets the loaded configuration (required).
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) error {
		s.cfg = cfg
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) error {
		s.logger = logger
		return nil
	}
}

// WithSQLiteStore opens the SQLite database at cfg.Database.Path, completing
// the teacher's WithSQLite for this domain's storage.Store.
func WithSQLiteStore() Option {
	return func(s *Service) error {
		if s.cfg == nil {
			return fmt.Errorf("config must be set before WithSQLiteStore")
		}
		store, err := sqlite.New(s.cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("open sqlite store: %w", err)
		}
		s.store = store
		return nil
	}
}

// WithRateLimiter wires C1 against cfg.Redis/cfg.Cloud, completing the
// teacher's unimplemented WithRateLimitPolicy stub (internal/runtime/options.go).
func WithRateLimiter() Option {
	return func(s *Service) error {
		if s.cfg == nil {
			return fmt.Errorf("config must be set before WithRateLimiter")
		}
		s.limiter = ratelimit.New(s.cfg.Redis.Addr, s.cfg.Redis.Password, s.cfg.Cloud)
		return nil
	}
}
