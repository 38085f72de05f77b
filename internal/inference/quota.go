package inference

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Quota checks and records per-user inference usage.
type Quota interface {
	// Check returns true if the user has quota remaining.
	Check(ctx context.Context, userID string) (bool, error)
	// Record adds n requests to the user's usage.
	Record(ctx context.Context, userID string, n int) error
	// Usage returns current usage and the configured limit for a user.
	Usage(ctx context.Context, userID string) (used int64, limit int64, err error)
}

// InMemoryQuota is a simple in-memory quota tracker for development.
type InMemoryQuota struct {
	mu     sync.RWMutex
	limits map[string]int64
	usage  map[string]int64
}

// NewInMemoryQuota creates a new in-memory quota tracker.
func NewInMemoryQuota() *InMemoryQuota {
	return &InMemoryQuota{
		limits: make(map[string]int64),
		usage:  make(map[string]int64),
	}
}

// SetLimit sets the request limit for a user.
func (q *InMemoryQuota) SetLimit(userID string, limit int64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.limits[userID] = limit
}

func (q *InMemoryQuota) Check(_ context.Context, userID string) (bool, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	limit, hasLimit := q.limits[userID]
	if !hasLimit {
		// No limit set means unlimited.
		return true, nil
	}
	return q.usage[userID] < limit, nil
}

func (q *InMemoryQuota) Record(_ context.Context, userID string, n int) error {
	if n < 0 {
		return fmt.Errorf("count must be non-negative, got %d", n)
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	q.usage[userID] += int64(n)
	return nil
}

func (q *InMemoryQuota) Usage(_ context.Context, userID string) (int64, int64, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.usage[userID], q.limits[userID], nil
}

// RedisQuota tracks usage in Redis so multiple server instances share one
// counter. Counters expire after the window so quotas reset on their own.
type RedisQuota struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

// NewRedisQuota creates a Redis-backed quota with a shared per-user limit.
// A limit of zero or less means unlimited.
func NewRedisQuota(client *redis.Client, limit int64, window time.Duration) *RedisQuota {
	if window <= 0 {
		window = 24 * time.Hour
	}
	return &RedisQuota{client: client, limit: limit, window: window}
}

func quotaKey(userID string) string {
	return "quota:inference:" + userID
}

func (q *RedisQuota) Check(ctx context.Context, userID string) (bool, error) {
	if q.limit <= 0 {
		return true, nil
	}
	used, err := q.client.Get(ctx, quotaKey(userID)).Int64()
	if err == redis.Nil {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("read quota: %w", err)
	}
	return used < q.limit, nil
}

func (q *RedisQuota) Record(ctx context.Context, userID string, n int) error {
	if n < 0 {
		return fmt.Errorf("count must be non-negative, got %d", n)
	}

	key := quotaKey(userID)
	pipe := q.client.TxPipeline()
	pipe.IncrBy(ctx, key, int64(n))
	pipe.ExpireNX(ctx, key, q.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record quota: %w", err)
	}
	return nil
}

func (q *RedisQuota) Usage(ctx context.Context, userID string) (int64, int64, error) {
	used, err := q.client.Get(ctx, quotaKey(userID)).Int64()
	if err == redis.Nil {
		return 0, q.limit, nil
	}
	if err != nil {
		return 0, 0, fmt.Errorf("read quota: %w", err)
	}
	return used, q.limit, nil
}
