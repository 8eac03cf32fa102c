// Package processor implements the event processor registry (C3): each
// Processor validates, deduplicates, and idempotently persists one event
// type family, grounded on the teacher's conversation.EventLogger which
// performs the same validate-then-persist shape for a single entity kind
// (internal/conversation/eventlogger.go).
package processor

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/SPAN-LLC/langfuse/internal/domain"
	"github.com/SPAN-LLC/langfuse/internal/storage"
)

// ProcessedResult is what a Processor returns on success (spec §4.3): at
// minimum the persisted entity's id, consulted downstream by C5 to find
// TRACE_CREATE results.
type ProcessedResult struct {
	EventType domain.EventType
	ID        string
	ProjectID string
}

// Processor handles one family of event types.
type Processor interface {
	Process(ctx context.Context, scope *domain.Scope, event *domain.Event) (*ProcessedResult, error)
}

// Registry maps an EventType to the Processor responsible for it (spec §4.3
// table).
type Registry struct {
	trace       Processor
	observation Processor
	score       Processor
	sdkLog      Processor
}

// NewRegistry wires all four processors against a shared storage.EntityStore.
func NewRegistry(store storage.EntityStore) *Registry {
	return &Registry{
		trace:       &TraceProcessor{store: store},
		observation: &ObservationProcessor{store: store},
		score:       &ScoreProcessor{store: store},
		sdkLog:      &SdkLogProcessor{store: store},
	}
}

// For returns the Processor responsible for et, or nil if et is unrecognized
// (the caller should already have rejected this during per-event validation).
func (r *Registry) For(et domain.EventType) Processor {
	switch {
	case et == domain.EventTraceCreate:
		return r.trace
	case et.IsObservationFamily():
		return r.observation
	case et == domain.EventScoreCreate:
		return r.score
	case et == domain.EventSdkLog:
		return r.sdkLog
	default:
		return nil
	}
}

// Process enforces the access-level pre-check (spec §4.3: a scores-only
// scope may submit only SCORE_CREATE, failing before processor invocation)
// and then dispatches to the responsible Processor.
func (r *Registry) Process(ctx context.Context, scope *domain.Scope, event *domain.Event) (*ProcessedResult, error) {
	if !scope.CanSubmit(event.Type) {
		return nil, domain.AuthenticationError(fmt.Sprintf("scope with access level %q cannot submit %s", scope.AccessLevel, event.Type))
	}

	p := r.For(event.Type)
	if p == nil {
		return nil, domain.BadRequestError(fmt.Sprintf("unsupported event type %s", event.Type))
	}
	return p.Process(ctx, scope, event)
}

// entityBody is the subset of an event body every entity family shares:
// its own id (independent of the envelope id) to upsert by.
type entityBody struct {
	ID string `json:"id"`
}

func parseBody(body json.RawMessage, dst interface{}) error {
	if err := json.Unmarshal(body, dst); err != nil {
		return domain.BadRequestError("invalid event body: " + err.Error())
	}
	return nil
}
