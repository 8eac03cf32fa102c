package auth

import (
	"context"
	"net/http"

	"github.com/SPAN-LLC/langfuse/internal/domain"
	"github.com/SPAN-LLC/langfuse/internal/ratelimit"
	"github.com/SPAN-LLC/langfuse/internal/storage"
)

// AuthAndRateLimit implements the C2 composition (spec §4.2): verify the
// Authorization header, then on success invoke C1 for resource. A failed
// verification short-circuits before any rate-limit call.
func AuthAndRateLimit(ctx context.Context, store storage.OrgKeyStore, limiter *ratelimit.Limiter, r *http.Request, resource domain.Resource) (*domain.Scope, *ratelimit.Result, error) {
	publicKey, secretKey, err := ExtractBasicAuth(r)
	if err != nil {
		return &domain.Scope{ValidKey: false, Error: err.Error()}, nil, nil
	}

	key, err := VerifyKey(ctx, store, publicKey, secretKey)
	if err != nil {
		if de := domain.AsDomainError(err); de.Kind == domain.ErrorKindAuthentication {
			return &domain.Scope{ValidKey: false, Error: de.Message}, nil, nil
		}
		return nil, nil, err
	}

	accessLevel := key.AccessLevel
	if accessLevel == "" {
		accessLevel = domain.AccessLevelAll
	}
	scope := &domain.Scope{
		ValidKey:    true,
		APIKey:      key,
		ProjectID:   key.ProjectID,
		AccessLevel: accessLevel,
	}

	rl, err := limiter.Check(ctx, key, resource)
	if err != nil {
		return scope, nil, err
	}
	return scope, rl, nil
}
