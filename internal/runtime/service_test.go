package runtime

import (
	"path/filepath"
	"testing"

	"github.com/SPAN-LLC/langfuse/internal/config"
)

func TestNewWorkerService_RequiresQueue(t *testing.T) {
	cfg := &config.Config{Database: config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "test.db")}}

	if _, err := NewWorkerService(nil, nil, WithConfig(cfg), WithSQLiteStore()); err == nil {
		t.Fatal("expected an error without WithRedisQueue")
	}
}
