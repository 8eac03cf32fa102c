package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SPAN-LLC/langfuse/internal/auth"
	"github.com/SPAN-LLC/langfuse/internal/config"
	"github.com/SPAN-LLC/langfuse/internal/domain"
	"github.com/SPAN-LLC/langfuse/internal/ratelimit"
)

type fakeOrgKeyStore struct {
	keys map[string]*domain.OrgEnrichedApiKey
}

func (s *fakeOrgKeyStore) Lookup(ctx context.Context, publicKey string) (*domain.OrgEnrichedApiKey, error) {
	return s.keys[publicKey], nil
}

func (s *fakeOrgKeyStore) Put(ctx context.Context, key *domain.OrgEnrichedApiKey) error {
	if s.keys == nil {
		s.keys = make(map[string]*domain.OrgEnrichedApiKey)
	}
	s.keys[key.PublicKey] = key
	return nil
}

func newTestKey(publicKey, secret string) *domain.OrgEnrichedApiKey {
	return &domain.OrgEnrichedApiKey{
		OrgID:      "org1",
		ProjectID:  "proj1",
		PublicKey:  publicKey,
		SecretHash: auth.HashSecretKey(secret),
		Plan:       domain.PlanDefault,
	}
}

// the test Limiter is built with a zero-value (non-cloud) CloudConfig, so
// Check never touches Redis: exercising AuthAndRateLimitMiddleware's 401
// path doesn't require a live Redis instance.
func newTestLimiter() *ratelimit.Limiter {
	return ratelimit.New("unused:0", "", config.CloudConfig{})
}

func TestAuthAndRateLimitMiddleware_MissingAuthHeader(t *testing.T) {
	store := &fakeOrgKeyStore{}
	mw := AuthAndRateLimitMiddleware(store, newTestLimiter(), domain.ResourceIngestion)

	called := false
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/public/ingestion", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
	if called {
		t.Fatal("next handler should not run on auth failure")
	}
}

func TestAuthAndRateLimitMiddleware_ValidKeyReachesHandler(t *testing.T) {
	key := newTestKey("pk_test", "sk_test")
	store := &fakeOrgKeyStore{keys: map[string]*domain.OrgEnrichedApiKey{"pk_test": key}}
	mw := AuthAndRateLimitMiddleware(store, newTestLimiter(), domain.ResourceIngestion)

	var gotScope *domain.Scope
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotScope = GetScope(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/public/ingestion", nil)
	req.SetBasicAuth("pk_test", "sk_test")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if gotScope == nil || !gotScope.ValidKey {
		t.Fatal("expected a valid scope in context")
	}
	if gotScope.ProjectID != "proj1" {
		t.Fatalf("ProjectID = %q, want proj1", gotScope.ProjectID)
	}
}

func TestAuthAndRateLimitMiddleware_WrongSecretIsUnauthorized(t *testing.T) {
	key := newTestKey("pk_test", "sk_correct")
	store := &fakeOrgKeyStore{keys: map[string]*domain.OrgEnrichedApiKey{"pk_test": key}}
	mw := AuthAndRateLimitMiddleware(store, newTestLimiter(), domain.ResourceIngestion)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not run on auth failure")
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/public/ingestion", nil)
	req.SetBasicAuth("pk_test", "sk_wrong")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
}
