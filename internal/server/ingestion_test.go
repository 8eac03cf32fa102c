package server

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/SPAN-LLC/langfuse/internal/domain"
)

func withScope(req *http.Request, scope *domain.Scope) *http.Request {
	ctx := context.WithValue(req.Context(), scopeContextKey{}, scope)
	return req.WithContext(ctx)
}

func TestIngestionHandler_WrongMethod(t *testing.T) {
	handler := IngestionHandler(nil)
	req := httptest.NewRequest(http.MethodGet, "/api/public/ingestion", nil)
	rr := httptest.NewRecorder()
	handler(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rr.Code)
	}
}

func TestIngestionHandler_MissingScope(t *testing.T) {
	handler := IngestionHandler(nil)
	req := httptest.NewRequest(http.MethodPost, "/api/public/ingestion", strings.NewReader(`{"batch":[]}`))
	rr := httptest.NewRecorder()
	handler(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
}

func TestIngestionHandler_BodyTooLarge(t *testing.T) {
	handler := IngestionHandler(nil)
	body := bytes.Repeat([]byte("a"), maxBatchBodyBytes+1)
	req := httptest.NewRequest(http.MethodPost, "/api/public/ingestion", bytes.NewReader(body))
	req = withScope(req, &domain.Scope{ValidKey: true, ProjectID: "proj1"})
	rr := httptest.NewRecorder()
	handler(rr, req)

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", rr.Code)
	}
}

func TestIngestionHandler_InvalidJSON(t *testing.T) {
	handler := IngestionHandler(nil)
	req := httptest.NewRequest(http.MethodPost, "/api/public/ingestion", strings.NewReader(`not json`))
	req = withScope(req, &domain.Scope{ValidKey: true, ProjectID: "proj1"})
	rr := httptest.NewRecorder()
	handler(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}
