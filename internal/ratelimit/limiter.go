// Package ratelimit implements the rate-limit service (C1): per-(org,
// resource) request admission over Redis fixed-window counters with
// plan-based budgets, completing the teacher's unimplemented
// WithRateLimitPolicy stub in internal/runtime/options.go.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/SPAN-LLC/langfuse/internal/config"
	"github.com/SPAN-LLC/langfuse/internal/domain"
)

// Result is the outcome of a Check call. A nil *Result (with nil error)
// means the caller is not subject to limiting.
type Result struct {
	APIKey             *domain.OrgEnrichedApiKey
	Resource           domain.Resource
	Points             int
	RemainingPoints    int
	MsBeforeNext       int64
	ConsumedPoints     int
	IsFirstInDuration  bool
}

// Limiter checks and consumes per-(org, resource) rate-limit budget.
type Limiter struct {
	client *redis.Client
	cloud  config.CloudConfig
	script *redis.Script
}

// New constructs a Limiter backed by a Redis client at addr/password.
func New(addr, password string, cloud config.CloudConfig) *Limiter {
	return &Limiter{
		client: redis.NewClient(&redis.Options{Addr: addr, Password: password}),
		cloud:  cloud,
		script: redis.NewScript(incrScript),
	}
}

// Close releases the underlying Redis connection pool.
func (l *Limiter) Close() error {
	return l.client.Close()
}

// Check implements the C1 admission operation (spec §4.1). It returns
// (nil, nil) when the deployment is not cloud, or when the effective
// config for resource is unlimited.
func (l *Limiter) Check(ctx context.Context, apiKey *domain.OrgEnrichedApiKey, resource domain.Resource) (*Result, error) {
	if !l.cloud.IsCloud() {
		return nil, nil
	}

	cfg, err := effectiveConfig(apiKey, resource)
	if err != nil {
		return nil, err
	}
	if cfg.Unlimited() {
		return nil, nil
	}

	key := fmt.Sprintf("rate-limit:%s:%s", resource, apiKey.OrgID)
	res, err := l.script.Run(ctx, l.client, []string{key}, *cfg.DurationSeconds).Result()
	if err != nil {
		return nil, fmt.Errorf("rate limit script: %w", err)
	}

	values, ok := res.([]interface{})
	if !ok || len(values) != 2 {
		return nil, fmt.Errorf("rate limit script: unexpected reply %T", res)
	}
	count := toInt64(values[0])
	ttlMs := toInt64(values[1])

	remaining := int(*cfg.Points) - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return &Result{
		APIKey:            apiKey,
		Resource:          resource,
		Points:            *cfg.Points,
		RemainingPoints:   remaining,
		MsBeforeNext:      ttlMs,
		ConsumedPoints:    int(count),
		IsFirstInDuration: count == 1,
	}, nil
}

// Exceeded reports whether r represents a depleted budget (spec §4.2 step 3:
// "remainingPoints <= 0 and consumption failed").
func (r *Result) Exceeded() bool {
	return r != nil && r.RemainingPoints <= 0 && r.ConsumedPoints > r.Points
}

// ResetAt is the absolute wall-clock time the current window resets,
// used for the X-RateLimit-Reset header (spec §4.2).
func (r *Result) ResetAt() time.Time {
	return time.Now().Add(time.Duration(r.MsBeforeNext) * time.Millisecond)
}

func toInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	default:
		return 0
	}
}
