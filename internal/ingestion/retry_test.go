package ingestion

import (
	"context"
	"errors"
	"testing"

	"github.com/SPAN-LLC/langfuse/internal/domain"
)

func TestRetryWithBackoff_SucceedsOnFirstAttempt(t *testing.T) {
	calls := 0
	err := retryWithBackoff(context.Background(), func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("retryWithBackoff() error = %v", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestRetryWithBackoff_RetryableErrorRetriesUpToMaxAttempts(t *testing.T) {
	calls := 0
	err := retryWithBackoff(context.Background(), func() error {
		calls++
		return domain.DBError("db is down")
	})
	if err == nil {
		t.Fatal("expected a non-nil error after exhausting retries")
	}
	if calls != maxAttempts {
		t.Fatalf("calls = %d, want %d", calls, maxAttempts)
	}
}

func TestRetryWithBackoff_AuthenticationErrorIsNotRetried(t *testing.T) {
	calls := 0
	err := retryWithBackoff(context.Background(), func() error {
		calls++
		return domain.AuthenticationError("invalid API key")
	})
	if err == nil {
		t.Fatal("expected a non-nil error")
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1 (no retry for AuthenticationError)", calls)
	}
}

func TestRetryWithBackoff_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := retryWithBackoff(context.Background(), func() error {
		calls++
		if calls < maxAttempts {
			return domain.DBError("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("retryWithBackoff() error = %v", err)
	}
	if calls != maxAttempts {
		t.Fatalf("calls = %d, want %d", calls, maxAttempts)
	}
}

func TestRetryWithBackoff_NonDomainErrorIsRetried(t *testing.T) {
	calls := 0
	err := retryWithBackoff(context.Background(), func() error {
		calls++
		return errors.New("unrecognized failure")
	})
	if err == nil {
		t.Fatal("expected a non-nil error after exhausting retries")
	}
	if calls != maxAttempts {
		t.Fatalf("calls = %d, want %d (non-domain errors are treated as retryable)", calls, maxAttempts)
	}
}

func TestRetryWithBackoff_StopsOnContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := retryWithBackoff(ctx, func() error {
		calls++
		if calls == 1 {
			cancel()
		}
		return domain.DBError("db is down")
	})
	if err == nil {
		t.Fatal("expected a non-nil error")
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1 (no further attempts once context is cancelled)", calls)
	}
}
