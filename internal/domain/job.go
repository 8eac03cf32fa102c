package domain

import "time"

// JobExecutionStatus is the closed set of terminal/non-terminal states for a
// persisted evaluation job execution (spec §3).
type JobExecutionStatus string

const (
	JobExecutionPending   JobExecutionStatus = "PENDING"
	JobExecutionCompleted JobExecutionStatus = "COMPLETED"
	JobExecutionError     JobExecutionStatus = "ERROR"
)

// IsTerminal reports whether status is a terminal state.
func (s JobExecutionStatus) IsTerminal() bool {
	return s == JobExecutionCompleted || s == JobExecutionError
}

// JobExecution is the persisted record a worker updates to a terminal state
// exactly once per successful completion (spec §3 invariants).
type JobExecution struct {
	ID        string
	ProjectID string
	Status    JobExecutionStatus
	EndTime   *time.Time
	Error     *string
}

// TraceUpsertJob is the payload enqueued onto the TraceUpsert queue (spec §3, §6).
type TraceUpsertJob struct {
	TraceID     string    `json:"traceId"`
	ProjectID   string    `json:"projectId"`
	EnqueuedAt  time.Time `json:"enqueuedAt"`
	TraceContext string   `json:"traceContext,omitempty"`
}

// EvaluationExecutionJob is the payload enqueued onto the EvaluationExecution
// queue (spec §3, §6).
type EvaluationExecutionJob struct {
	JobExecutionID string    `json:"jobExecutionId"`
	ProjectID      string    `json:"projectId"`
	EnqueuedAt     time.Time `json:"enqueuedAt"`
	TraceContext   string    `json:"traceContext,omitempty"`
}

// TraceUpsertNotification is one element of the body C5 posts to the worker
// service's /api/events endpoint (spec §4.5, §6).
type TraceUpsertNotification struct {
	TraceID   string `json:"traceId"`
	ProjectID string `json:"projectId"`
}
