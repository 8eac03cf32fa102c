package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/SPAN-LLC/langfuse/internal/ratelimit"
	"github.com/SPAN-LLC/langfuse/internal/telemetry"
)

// sendRateLimitResponse implements spec §4.2 step 3: respond 429, increment
// the exceeded-budget metric, and set the standard rate-limit headers.
func sendRateLimitResponse(w http.ResponseWriter, rl *ratelimit.Result) {
	h := w.Header()
	h.Set("Retry-After", strconv.FormatInt(rl.MsBeforeNext/1000, 10))
	h.Set("X-RateLimit-Limit", strconv.Itoa(rl.Points))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(rl.RemainingPoints))
	h.Set("X-RateLimit-Reset", rl.ResetAt().Format(time.RFC3339))

	telemetry.RecordIncrement("rate-limit-exceeded", 0, map[string]string{
		"orgId":    rl.APIKey.OrgID,
		"plan":     string(rl.APIKey.Plan),
		"resource": string(rl.Resource),
	})

	http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
}
