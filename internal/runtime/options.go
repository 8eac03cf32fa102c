package runtime

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/SPAN-LLC/langfuse/internal/config"
	"github.com/SPAN-LLC/langfuse/internal/queue/redisqueue"
	"github.com/SPAN-LLC/langfuse/internal/storage/sqlite"
)

// WithConfig sets the loaded configuration (required).
func WithConfig(cfg *config.Config) Option {
	return func(b *base) error {
		b.cfg = cfg
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *base) error {
		b.logger = logger
		return nil
	}
}

// WithSQLiteStore opens the SQLite database at cfg.Database.Path, completing
// the teacher's WithSQLite for this domain's storage.Store.
func WithSQLiteStore() Option {
	return func(b *base) error {
		if b.cfg == nil {
			return fmt.Errorf("config must be set before WithSQLiteStore")
		}
		store, err := sqlite.New(b.cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("open sqlite store: %w", err)
		}
		b.store = store
		return nil
	}
}

// WithRedisQueue wires the C6/C7 job queue over Redis, completing the
// teacher's unimplemented WithKafkaEvents/WithNATSEvents stubs with the
// queue system this domain actually has available (no broker library is
// present anywhere in the retrieved example pack).
func WithRedisQueue(lease time.Duration) Option {
	return func(b *base) error {
		if b.cfg == nil {
			return fmt.Errorf("config must be set before WithRedisQueue")
		}
		client := redis.NewClient(&redis.Options{Addr: b.cfg.Redis.Addr, Password: b.cfg.Redis.Password})
		b.queue = redisqueue.New(client, lease, b.logger)
		return nil
	}
}
