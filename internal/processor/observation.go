package processor

import (
	"context"

	"github.com/SPAN-LLC/langfuse/internal/domain"
	"github.com/SPAN-LLC/langfuse/internal/storage"
)

// ObservationProcessor handles OBSERVATION_*, SPAN_*, GENERATION_*, and
// EVENT_CREATE, which all persist to the same observations table keyed by
// their own id with last-writer-wins on *_UPDATE (spec §4.3 table).
type ObservationProcessor struct {
	store storage.EntityStore
}

func (p *ObservationProcessor) Process(ctx context.Context, scope *domain.Scope, event *domain.Event) (*ProcessedResult, error) {
	var body entityBody
	if err := parseBody(event.Body, &body); err != nil {
		return nil, err
	}
	if body.ID == "" {
		return nil, domain.BadRequestError("observation body missing id")
	}

	if err := p.store.UpsertObservation(ctx, scope.ProjectID, body.ID, string(event.Type), event.Body); err != nil {
		return nil, domain.DBError(err.Error())
	}
	return &ProcessedResult{EventType: event.Type, ID: body.ID, ProjectID: scope.ProjectID}, nil
}
