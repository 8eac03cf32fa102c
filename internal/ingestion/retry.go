package ingestion

import (
	"context"
	"math/rand"
	"time"

	"github.com/SPAN-LLC/langfuse/internal/domain"
)

// maxAttempts bounds the per-event dispatch retry loop (spec §4.4 step 8).
const maxAttempts = 3

// retryWithBackoff runs fn up to maxAttempts times with exponential
// backoff and jitter between attempts, grounded on the teacher's
// WebhookStage retry loop (pipeline/webhook_stage.go Process): a bounded
// attempt count, no retry once the context is done, and a final error that
// is whatever the last attempt produced. Unlike WebhookStage, the retry
// predicate here is the error's own retryability rather than a fixed count
// of attempts for every error.
func retryWithBackoff(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !domain.IsRetryable(lastErr) {
			return lastErr
		}
		if ctx.Err() != nil {
			return lastErr
		}
		if attempt == maxAttempts-1 {
			break
		}

		backoff := time.Duration(1<<uint(attempt)) * 50 * time.Millisecond
		jitter := time.Duration(rand.Int63n(int64(backoff) + 1))
		select {
		case <-time.After(backoff + jitter):
		case <-ctx.Done():
			return lastErr
		}
	}
	return lastErr
}
