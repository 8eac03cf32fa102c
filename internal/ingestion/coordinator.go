// Package ingestion implements the ingestion coordinator (C4): parses the
// batch envelope, validates and cleans each event, persists a raw audit
// copy, sorts creates before updates, dispatches each event through the
// event processor registry with retry, fans out trace upserts to C5, and
// assembles the 207 multi-status response (spec §4.4).
package ingestion

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/SPAN-LLC/langfuse/internal/domain"
	"github.com/SPAN-LLC/langfuse/internal/processor"
	"github.com/SPAN-LLC/langfuse/internal/storage"
)

// WorkerNotifier is the subset of dispatch.WorkerClient the coordinator
// depends on, kept as an interface so ingestion doesn't import dispatch
// directly and tests can substitute a recorder.
type WorkerNotifier interface {
	NotifyTraceUpserts(ctx context.Context, traceIDs []string, projectID string)
}

// Coordinator runs the full ingestion pipeline for one batch request.
type Coordinator struct {
	store    storage.EntityStore
	registry *processor.Registry
	notifier WorkerNotifier
}

// NewCoordinator wires C4 against the storage layer, the C3 registry, and
// the C5 notifier.
func NewCoordinator(store storage.EntityStore, registry *processor.Registry, notifier WorkerNotifier) *Coordinator {
	return &Coordinator{store: store, registry: registry, notifier: notifier}
}

// HandleBatch implements spec §4.4 steps 4-11, given an already-authenticated
// scope and an already-parsed envelope (steps 1-3 happen in the HTTP
// middleware and IngestionHandler).
func (c *Coordinator) HandleBatch(ctx context.Context, scope *domain.Scope, batch *domain.Batch, metadata json.RawMessage) *domain.BatchResponse {
	resp := &domain.BatchResponse{Successes: []domain.BatchSuccess{}, Errors: []domain.BatchError{}}

	events := make([]*domain.Event, 0, len(batch.Batch))
	for i := range batch.Batch {
		event := &batch.Batch[i]

		if !event.Type.Valid() {
			resp.AddError(event.EnvelopeID(), domain.BadRequestError("unknown event type: "+string(event.Type)))
			continue
		}

		cleaned, err := CleanEventBody(event.Body)
		if err != nil {
			resp.AddError(event.EnvelopeID(), domain.BadRequestError("invalid event body: "+err.Error()))
			continue
		}
		event.Body = cleaned

		if err := c.store.PersistRawEvent(ctx, scope.ProjectID, event, metadata); err != nil {
			resp.AddError(event.EnvelopeID(), domain.DBError(err.Error()))
			continue
		}

		events = append(events, event)
	}

	sortCreatesBeforeUpdates(events)

	var traceIDs []string
	for _, event := range events {
		var result *processor.ProcessedResult
		err := retryWithBackoff(ctx, func() error {
			var processErr error
			result, processErr = c.registry.Process(ctx, scope, event)
			return processErr
		})

		if err != nil {
			resp.AddError(event.EnvelopeID(), err)
			continue
		}

		resp.AddSuccess(event.EnvelopeID())
		if event.Type == domain.EventTraceCreate {
			traceIDs = append(traceIDs, result.ID)
		}
	}

	if len(traceIDs) > 0 {
		c.notifier.NotifyTraceUpserts(ctx, traceIDs, scope.ProjectID)
	}

	return resp
}

// sortCreatesBeforeUpdates is a stable partition: non-update events keep
// their original relative order first, followed by update events in their
// original relative order (spec §4.4 step 7).
func sortCreatesBeforeUpdates(events []*domain.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return !events[i].Type.IsUpdate() && events[j].Type.IsUpdate()
	})
}
