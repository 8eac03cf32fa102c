// Package queue defines the job queue port consumed by the eval-job-creator
// (C6) and eval-executor (C7) worker pools. internal/queue/redisqueue
// provides the concrete Redis-list-backed implementation (SPEC_FULL.md §5):
// no production queue library exists anywhere in the retrieved pack (only
// unimplemented WithKafkaEvents/WithNATSEvents stubs), so the queue is
// hand-rolled atop github.com/redis/go-redis/v9 the same way C1 is.
package queue

import "context"

// Handler processes one job's raw payload. A non-nil error leaves the job
// available for redelivery once its lease expires (at-least-once delivery).
type Handler func(ctx context.Context, payload []byte) error

// Queue is the port both worker pools consume.
type Queue interface {
	// Enqueue pushes payload onto queueName.
	Enqueue(ctx context.Context, queueName string, payload []byte) error

	// Consume blocks, dispatching each dequeued payload to handler, until ctx
	// is cancelled. concurrency controls how many handler invocations may run
	// at once.
	Consume(ctx context.Context, queueName string, concurrency int, handler Handler) error

	// Len reports the number of jobs currently pending (not yet leased to a
	// worker) on queueName, for the worker pools' queue-length gauges.
	Len(ctx context.Context, queueName string) (int64, error)
}
