package processor

import (
	"context"

	"github.com/SPAN-LLC/langfuse/internal/domain"
	"github.com/SPAN-LLC/langfuse/internal/storage"
)

// SdkLogProcessor handles SDK_LOG, retained for SDK integration debugging
// (SPEC_FULL.md §3 supplement) rather than as a first-class telemetry entity.
type SdkLogProcessor struct {
	store storage.EntityStore
}

func (p *SdkLogProcessor) Process(ctx context.Context, scope *domain.Scope, event *domain.Event) (*ProcessedResult, error) {
	var body entityBody
	if err := parseBody(event.Body, &body); err != nil {
		return nil, err
	}
	if body.ID == "" {
		return nil, domain.BadRequestError("sdk log body missing id")
	}

	if err := p.store.InsertSdkLog(ctx, scope.ProjectID, body.ID, event.Body); err != nil {
		return nil, domain.DBError(err.Error())
	}
	return &ProcessedResult{EventType: event.Type, ID: body.ID, ProjectID: scope.ProjectID}, nil
}
