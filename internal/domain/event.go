package domain

import (
	"encoding/json"
	"time"
)

// EventType is the closed set of inbound event types (spec §3).
type EventType string

const (
	EventTraceCreate        EventType = "TRACE_CREATE"
	EventObservationCreate  EventType = "OBSERVATION_CREATE"
	EventObservationUpdate  EventType = "OBSERVATION_UPDATE"
	EventSpanCreate         EventType = "SPAN_CREATE"
	EventSpanUpdate         EventType = "SPAN_UPDATE"
	EventGenerationCreate   EventType = "GENERATION_CREATE"
	EventGenerationUpdate   EventType = "GENERATION_UPDATE"
	EventEventCreate        EventType = "EVENT_CREATE"
	EventScoreCreate        EventType = "SCORE_CREATE"
	EventSdkLog             EventType = "SDK_LOG"
)

// knownEventTypes is used to validate the tagged union at the per-event
// validation stage (spec §4.4 step 4).
var knownEventTypes = map[EventType]bool{
	EventTraceCreate:       true,
	EventObservationCreate: true,
	EventObservationUpdate: true,
	EventSpanCreate:        true,
	EventSpanUpdate:        true,
	EventGenerationCreate:  true,
	EventGenerationUpdate:  true,
	EventEventCreate:       true,
	EventScoreCreate:       true,
	EventSdkLog:            true,
}

// IsUpdate reports whether the event type participates in the
// create-before-update partition (spec §4.4 step 7). Only observation-family
// updates are deferred; SPAN_UPDATE and GENERATION_UPDATE are observation
// updates under a different surface name.
func (t EventType) IsUpdate() bool {
	switch t {
	case EventObservationUpdate, EventSpanUpdate, EventGenerationUpdate:
		return true
	default:
		return false
	}
}

func (t EventType) Valid() bool {
	return knownEventTypes[t]
}

// IsObservationFamily reports whether the event type is routed to the
// Observation processor (spec §4.3 table).
func (t EventType) IsObservationFamily() bool {
	switch t {
	case EventObservationCreate, EventObservationUpdate,
		EventSpanCreate, EventSpanUpdate,
		EventGenerationCreate, EventGenerationUpdate,
		EventEventCreate:
		return true
	default:
		return false
	}
}

// Event is one element of an inbound batch (spec §3).
type Event struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Body      json.RawMessage `json:"body"`
}

// EnvelopeID returns the id used to key this event in the batch response,
// falling back to "unknown" when the envelope itself is malformed enough
// that no id could be parsed (spec §4.4 step 4).
func (e *Event) EnvelopeID() string {
	if e == nil || e.ID == "" {
		return "unknown"
	}
	return e.ID
}
