// Package storage defines the persistence ports used by the processor
// registry (C3), the raw-event audit sink (§4.4 step 6), the org API key
// store (C2), and the eval-executor's terminal job-execution state (C7).
package storage

import (
	"context"

	"github.com/SPAN-LLC/langfuse/internal/domain"
)

// EntityStore upserts the four domain entity families idempotently by
// (projectId, id), matching spec §4.3's "last-writer-wins on *_UPDATE" rule.
type EntityStore interface {
	UpsertTrace(ctx context.Context, projectID, id string, body []byte) error
	UpsertObservation(ctx context.Context, projectID, id, observationType string, body []byte) error
	UpsertScore(ctx context.Context, projectID, id string, body []byte) error
	InsertSdkLog(ctx context.Context, projectID, id string, body []byte) error

	// PersistRawEvent records the cleaned event verbatim for audit purposes,
	// before typed processing (spec §4.4 step 6).
	PersistRawEvent(ctx context.Context, projectID string, event *domain.Event, metadata []byte) error
}

// JobExecutionStore persists the terminal state of evaluation job executions
// (spec §3 invariant: ERROR can overwrite only non-terminal states).
type JobExecutionStore interface {
	MarkError(ctx context.Context, id, projectID, displayError string) error
	Get(ctx context.Context, id, projectID string) (*domain.JobExecution, error)
}

// OrgKeyStore resolves a public API key to its org record (C2).
type OrgKeyStore interface {
	Lookup(ctx context.Context, publicKey string) (*domain.OrgEnrichedApiKey, error)
	Put(ctx context.Context, key *domain.OrgEnrichedApiKey) error
}

// Store is the union implemented by internal/storage/sqlite.
type Store interface {
	EntityStore
	JobExecutionStore
	OrgKeyStore
	Close() error
}
