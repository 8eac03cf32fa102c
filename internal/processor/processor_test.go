package processor

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/SPAN-LLC/langfuse/internal/domain"
)

// fakeStore is a minimal in-memory storage.EntityStore for processor tests.
type fakeStore struct {
	traces       map[string][]byte
	observations map[string][]byte
	scores       map[string][]byte
	sdkLogs      map[string][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		traces:       map[string][]byte{},
		observations: map[string][]byte{},
		scores:       map[string][]byte{},
		sdkLogs:      map[string][]byte{},
	}
}

func (s *fakeStore) UpsertTrace(ctx context.Context, projectID, id string, body []byte) error {
	s.traces[projectID+"/"+id] = body
	return nil
}

func (s *fakeStore) UpsertObservation(ctx context.Context, projectID, id, observationType string, body []byte) error {
	s.observations[projectID+"/"+id] = body
	return nil
}

func (s *fakeStore) UpsertScore(ctx context.Context, projectID, id string, body []byte) error {
	s.scores[projectID+"/"+id] = body
	return nil
}

func (s *fakeStore) InsertSdkLog(ctx context.Context, projectID, id string, body []byte) error {
	s.sdkLogs[projectID+"/"+id] = body
	return nil
}

func (s *fakeStore) PersistRawEvent(ctx context.Context, projectID string, event *domain.Event, metadata []byte) error {
	return nil
}

func allScope() *domain.Scope {
	return &domain.Scope{ValidKey: true, ProjectID: "proj1", AccessLevel: domain.AccessLevelAll}
}

func TestRegistry_RoutesByEventType(t *testing.T) {
	store := newFakeStore()
	reg := NewRegistry(store)

	cases := []struct {
		name string
		et   domain.EventType
	}{
		{"trace", domain.EventTraceCreate},
		{"observation", domain.EventObservationCreate},
		{"span", domain.EventSpanCreate},
		{"generation", domain.EventGenerationUpdate},
		{"score", domain.EventScoreCreate},
		{"sdklog", domain.EventSdkLog},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			event := &domain.Event{ID: "env1", Type: c.et, Body: json.RawMessage(`{"id":"e-` + c.name + `"}`)}
			res, err := reg.Process(context.Background(), allScope(), event)
			if err != nil {
				t.Fatalf("Process() error = %v", err)
			}
			if res.ID != "e-"+c.name {
				t.Errorf("ID = %v, want e-%s", res.ID, c.name)
			}
		})
	}
}

func TestRegistry_ScoresOnlyScopeRejectsNonScore(t *testing.T) {
	store := newFakeStore()
	reg := NewRegistry(store)
	scope := &domain.Scope{ValidKey: true, ProjectID: "proj1", AccessLevel: domain.AccessLevelScores}

	event := &domain.Event{ID: "env1", Type: domain.EventTraceCreate, Body: json.RawMessage(`{"id":"t1"}`)}
	_, err := reg.Process(context.Background(), scope, event)

	de := domain.AsDomainError(err)
	if de == nil || de.Kind != domain.ErrorKindAuthentication {
		t.Fatalf("Process() error = %v, want AuthenticationError", err)
	}
}

func TestRegistry_ScoresOnlyScopeAllowsScore(t *testing.T) {
	store := newFakeStore()
	reg := NewRegistry(store)
	scope := &domain.Scope{ValidKey: true, ProjectID: "proj1", AccessLevel: domain.AccessLevelScores}

	event := &domain.Event{ID: "env1", Type: domain.EventScoreCreate, Body: json.RawMessage(`{"id":"s1"}`)}
	res, err := reg.Process(context.Background(), scope, event)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if res.ID != "s1" {
		t.Errorf("ID = %v, want s1", res.ID)
	}
}

func TestRegistry_MissingBodyIDIsBadRequest(t *testing.T) {
	store := newFakeStore()
	reg := NewRegistry(store)

	event := &domain.Event{ID: "env1", Type: domain.EventTraceCreate, Body: json.RawMessage(`{}`)}
	_, err := reg.Process(context.Background(), allScope(), event)

	de := domain.AsDomainError(err)
	if de == nil || de.Kind != domain.ErrorKindBadRequest {
		t.Fatalf("Process() error = %v, want BadRequestError", err)
	}
}
