package processor

import (
	"context"

	"github.com/SPAN-LLC/langfuse/internal/domain"
	"github.com/SPAN-LLC/langfuse/internal/storage"
)

// ScoreProcessor handles SCORE_CREATE, the one event type a "scores" access
// level scope may submit (spec §4.3).
type ScoreProcessor struct {
	store storage.EntityStore
}

func (p *ScoreProcessor) Process(ctx context.Context, scope *domain.Scope, event *domain.Event) (*ProcessedResult, error) {
	var body entityBody
	if err := parseBody(event.Body, &body); err != nil {
		return nil, err
	}
	if body.ID == "" {
		return nil, domain.BadRequestError("score body missing id")
	}

	if err := p.store.UpsertScore(ctx, scope.ProjectID, body.ID, event.Body); err != nil {
		return nil, domain.DBError(err.Error())
	}
	return &ProcessedResult{EventType: event.Type, ID: body.ID, ProjectID: scope.ProjectID}, nil
}
