package processor

import (
	"context"

	"github.com/SPAN-LLC/langfuse/internal/domain"
	"github.com/SPAN-LLC/langfuse/internal/storage"
)

// TraceProcessor handles TRACE_CREATE (spec §4.3 table).
type TraceProcessor struct {
	store storage.EntityStore
}

func (p *TraceProcessor) Process(ctx context.Context, scope *domain.Scope, event *domain.Event) (*ProcessedResult, error) {
	var body entityBody
	if err := parseBody(event.Body, &body); err != nil {
		return nil, err
	}
	if body.ID == "" {
		return nil, domain.BadRequestError("trace body missing id")
	}

	if err := p.store.UpsertTrace(ctx, scope.ProjectID, body.ID, event.Body); err != nil {
		return nil, domain.DBError(err.Error())
	}
	return &ProcessedResult{EventType: event.Type, ID: body.ID, ProjectID: scope.ProjectID}, nil
}
