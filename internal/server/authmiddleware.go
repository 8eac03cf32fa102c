package server

import (
	"context"
	"net/http"

	"github.com/SPAN-LLC/langfuse/internal/auth"
	"github.com/SPAN-LLC/langfuse/internal/domain"
	"github.com/SPAN-LLC/langfuse/internal/ratelimit"
	"github.com/SPAN-LLC/langfuse/internal/storage"
)

// scopeContextKey is the context key holding the authenticated domain.Scope,
// generalized from the teacher's TenantContextKey to the richer scope shape
// C2 produces (spec §4.2).
type scopeContextKey struct{}

// AuthAndRateLimitMiddleware composes C2: on each request it resolves the
// caller's Scope via internal/auth and enforces the C1 budget for resource,
// short-circuiting with 401 or 429 per spec §4.2/§4.4 step 2.
func AuthAndRateLimitMiddleware(store storage.OrgKeyStore, limiter *ratelimit.Limiter, resource domain.Resource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope, rl, err := auth.AuthAndRateLimit(r.Context(), store, limiter, r, resource)
			if err != nil {
				AddError(r.Context(), err)
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			if !scope.ValidKey {
				http.Error(w, scope.Error, http.StatusUnauthorized)
				return
			}
			if rl.Exceeded() {
				sendRateLimitResponse(w, rl)
				return
			}

			ctx := context.WithValue(r.Context(), scopeContextKey{}, scope)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetScope retrieves the authenticated Scope from context.
// Returns nil if no scope is set.
func GetScope(ctx context.Context) *domain.Scope {
	if s, ok := ctx.Value(scopeContextKey{}).(*domain.Scope); ok {
		return s
	}
	return nil
}
