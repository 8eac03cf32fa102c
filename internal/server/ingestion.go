package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/SPAN-LLC/langfuse/internal/domain"
	"github.com/SPAN-LLC/langfuse/internal/ingestion"
)

// maxBatchBodyBytes caps the request body at 4.5 MB (spec §6).
const maxBatchBodyBytes = 4_500_000

// IngestionHandler exposes POST /api/public/ingestion (C4 entrypoint, spec
// §4.4, §6). Auth and rate limiting happen upstream in
// AuthAndRateLimitMiddleware; this handler only parses the envelope and runs
// the coordinator.
func IngestionHandler(coordinator *ingestion.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		scope := GetScope(r.Context())
		if scope == nil || !scope.ValidKey {
			http.Error(w, "unauthenticated", http.StatusUnauthorized)
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, maxBatchBodyBytes+1))
		if err != nil {
			http.Error(w, "failed to read request body", http.StatusBadRequest)
			return
		}
		if len(body) > maxBatchBodyBytes {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}

		var batch domain.Batch
		if err := json.Unmarshal(body, &batch); err != nil {
			AddError(r.Context(), err)
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		resp := coordinator.HandleBatch(r.Context(), scope, &batch, batch.Metadata)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusMultiStatus)
		_ = json.NewEncoder(w).Encode(resp)
	}
}
