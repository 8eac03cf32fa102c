// Package redisqueue is the Redis-list-backed Queue implementation
// (SPEC_FULL.md §5): a pending list for ready jobs, a payload hash, and an
// in-flight sorted set keyed by lease deadline that a redelivery sweep
// reclaims, giving at-least-once delivery with a visibility timeout without
// depending on a queue library absent from the retrieved pack.
package redisqueue

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/SPAN-LLC/langfuse/internal/queue"
)

const (
	pollTimeout  = 2 * time.Second
	defaultLease = 30 * time.Second
)

// Queue is a Redis-backed queue.Queue.
type Queue struct {
	client        *redis.Client
	lease         time.Duration
	sweepInterval time.Duration
	logger        *slog.Logger
}

var _ queue.Queue = (*Queue)(nil)

// New constructs a redisqueue.Queue. An empty lease duration defaults to
// 30s; the redelivery sweep runs at half the lease interval.
func New(client *redis.Client, lease time.Duration, logger *slog.Logger) *Queue {
	if lease <= 0 {
		lease = defaultLease
	}
	return &Queue{client: client, lease: lease, sweepInterval: lease / 2, logger: logger}
}

func (q *Queue) pendingKey(name string) string  { return "queue:" + name + ":pending" }
func (q *Queue) jobsKey(name string) string     { return "queue:" + name + ":jobs" }
func (q *Queue) inflightKey(name string) string { return "queue:" + name + ":inflight" }

// Enqueue implements queue.Queue.
func (q *Queue) Enqueue(ctx context.Context, queueName string, payload []byte) error {
	id := uuid.New().String()
	if err := q.client.HSet(ctx, q.jobsKey(queueName), id, payload).Err(); err != nil {
		return err
	}
	return q.client.RPush(ctx, q.pendingKey(queueName), id).Err()
}

// Len implements queue.Queue.
func (q *Queue) Len(ctx context.Context, queueName string) (int64, error) {
	return q.client.LLen(ctx, q.pendingKey(queueName)).Result()
}

// Consume implements queue.Queue: one poller goroutine feeds a buffered
// channel drained by concurrency worker goroutines, plus a redelivery sweep
// goroutine, mirroring the teacher's absence of an external scheduler
// library (no asynq/river in the retrieved pack).
func (q *Queue) Consume(ctx context.Context, queueName string, concurrency int, handler queue.Handler) error {
	if concurrency <= 0 {
		concurrency = 1
	}

	jobs := make(chan string, concurrency)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		q.sweep(ctx, queueName)
	}()

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.worker(ctx, queueName, jobs, handler)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		q.poll(ctx, queueName, jobs)
	}()

	<-ctx.Done()
	close(jobs)
	wg.Wait()
	return ctx.Err()
}

func (q *Queue) poll(ctx context.Context, queueName string, jobs chan<- string) {
	for {
		if ctx.Err() != nil {
			return
		}

		res, err := q.client.BLPop(ctx, pollTimeout, q.pendingKey(queueName)).Result()
		if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			q.logger.Warn("queue poll error", slog.String("queue", queueName), slog.String("error", err.Error()))
			time.Sleep(time.Second)
			continue
		}

		id := res[1]
		deadline := float64(time.Now().Add(q.lease).UnixMilli())
		if err := q.client.ZAdd(ctx, q.inflightKey(queueName), redis.Z{Score: deadline, Member: id}).Err(); err != nil {
			q.logger.Warn("queue lease error", slog.String("queue", queueName), slog.String("error", err.Error()))
		}

		select {
		case jobs <- id:
		case <-ctx.Done():
			return
		}
	}
}

func (q *Queue) worker(ctx context.Context, queueName string, jobs <-chan string, handler queue.Handler) {
	for id := range jobs {
		payload, err := q.client.HGet(ctx, q.jobsKey(queueName), id).Bytes()
		if err != nil {
			q.logger.Warn("queue payload missing", slog.String("queue", queueName), slog.String("job_id", id))
			continue
		}

		if err := handler(ctx, payload); err != nil {
			q.logger.Warn("queue handler error, leaving for redelivery",
				slog.String("queue", queueName), slog.String("job_id", id), slog.String("error", err.Error()))
			continue
		}

		q.client.ZRem(ctx, q.inflightKey(queueName), id)
		q.client.HDel(ctx, q.jobsKey(queueName), id)
	}
}

// sweep requeues jobs whose lease has expired without being acknowledged,
// the redelivery half of the at-least-once contract.
func (q *Queue) sweep(ctx context.Context, queueName string) {
	ticker := time.NewTicker(q.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := time.Now().UnixMilli()
			expired, err := q.client.ZRangeByScore(ctx, q.inflightKey(queueName), &redis.ZRangeBy{
				Min: "0", Max: strconv.FormatInt(now, 10),
			}).Result()
			if err != nil {
				q.logger.Warn("queue sweep error", slog.String("queue", queueName), slog.String("error", err.Error()))
				continue
			}

			for _, id := range expired {
				q.client.ZRem(ctx, q.inflightKey(queueName), id)
				q.client.RPush(ctx, q.pendingKey(queueName), id)
			}
		}
	}
}

