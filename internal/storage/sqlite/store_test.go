package sqlite

import (
	"context"
	"os"
	"testing"

	"github.com/SPAN-LLC/langfuse/internal/domain"
)

func TestStore_UpsertTraceIsIdempotent(t *testing.T) {
	store, err := New("file:storetest1?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.UpsertTrace(ctx, "proj1", "trace1", []byte(`{"name":"first"}`)); err != nil {
		t.Fatalf("UpsertTrace() error = %v", err)
	}
	if err := store.UpsertTrace(ctx, "proj1", "trace1", []byte(`{"name":"second"}`)); err != nil {
		t.Fatalf("UpsertTrace() replay error = %v", err)
	}

	var body string
	row := store.db.QueryRowContext(ctx, `SELECT body FROM traces WHERE project_id = ? AND id = ?`, "proj1", "trace1")
	if err := row.Scan(&body); err != nil {
		t.Fatalf("scan error = %v", err)
	}
	if body != `{"name":"second"}` {
		t.Errorf("body = %v, want last-writer-wins value", body)
	}

	var count int
	row = store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM traces WHERE project_id = ?`, "proj1")
	if err := row.Scan(&count); err != nil {
		t.Fatalf("scan count error = %v", err)
	}
	if count != 1 {
		t.Errorf("count = %v, want 1 (idempotent upsert)", count)
	}
}

func TestStore_MarkErrorDoesNotOverwriteTerminalState(t *testing.T) {
	store, err := New("file:storetest2?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.MarkError(ctx, "job1", "proj1", "boom"); err != nil {
		t.Fatalf("MarkError() error = %v", err)
	}
	je, err := store.Get(ctx, "job1", "proj1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if je.Status != domain.JobExecutionError {
		t.Fatalf("Status = %v, want ERROR", je.Status)
	}
	if je.EndTime == nil {
		t.Fatal("EndTime is nil, want non-nil for terminal state")
	}

	firstEndTime := *je.EndTime
	if err := store.MarkError(ctx, "job1", "proj1", "different error"); err != nil {
		t.Fatalf("MarkError() second call error = %v", err)
	}
	je, err = store.Get(ctx, "job1", "proj1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if *je.Error != "boom" {
		t.Errorf("Error = %v, want first terminal error preserved", *je.Error)
	}
	if !je.EndTime.Equal(firstEndTime) {
		t.Errorf("EndTime changed after terminal state was already reached")
	}
}

func TestStore_OrgKeyRoundTrip(t *testing.T) {
	store, err := New("file:storetest3?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	points := 100
	duration := 60
	key := &domain.OrgEnrichedApiKey{
		OrgID:      "org1",
		PublicKey:  "pk_live_abc",
		SecretHash: "hash123",
		Plan:       domain.PlanDefault,
		RateLimits: []domain.RateLimitConfig{
			{Resource: domain.ResourceIngestion, Points: &points, DurationSeconds: &duration},
		},
	}
	if err := store.Put(ctx, key); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := store.Lookup(ctx, "pk_live_abc")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if got == nil {
		t.Fatal("Lookup() = nil, want key")
	}
	if got.OrgID != "org1" || got.SecretHash != "hash123" {
		t.Errorf("got = %+v", got)
	}
	if len(got.RateLimits) != 1 || *got.RateLimits[0].Points != 100 {
		t.Errorf("RateLimits = %+v", got.RateLimits)
	}

	missing, err := store.Lookup(ctx, "does-not-exist")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if missing != nil {
		t.Errorf("Lookup() = %+v, want nil for missing key", missing)
	}
}

func TestStore_Persistence(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "langfuse-*.db")
	if err != nil {
		t.Fatalf("CreateTemp() error = %v", err)
	}
	defer os.Remove(tmpfile.Name())
	tmpfile.Close()

	store, err := New(tmpfile.Name())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := store.UpsertTrace(context.Background(), "proj1", "persist-trace", []byte(`{}`)); err != nil {
		t.Fatalf("UpsertTrace() error = %v", err)
	}
	store.Close()

	store2, err := New(tmpfile.Name())
	if err != nil {
		t.Fatalf("reopen New() error = %v", err)
	}
	defer store2.Close()

	var count int
	row := store2.db.QueryRowContext(context.Background(), `SELECT COUNT(*) FROM traces WHERE id = ?`, "persist-trace")
	if err := row.Scan(&count); err != nil {
		t.Fatalf("scan error = %v", err)
	}
	if count != 1 {
		t.Errorf("count = %v, want 1 after reopen", count)
	}
}
