package detection

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RecentFeed keeps the last N detections per user in Redis so clients can
// show a live detection strip without hitting Postgres.
type RecentFeed struct {
	client *redis.Client
	size   int64
}

// NewRecentFeed creates a feed keeping up to size entries per user.
func NewRecentFeed(client *redis.Client, size int) *RecentFeed {
	if size <= 0 {
		size = 20
	}
	return &RecentFeed{client: client, size: int64(size)}
}

func feedKey(userID string) string {
	return "detections:recent:" + userID
}

// Push prepends a detection to the user's feed and trims it to size.
func (f *RecentFeed) Push(ctx context.Context, d DetectedSign) error {
	payload, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal detection: %w", err)
	}

	key := feedKey(d.UserID)
	pipe := f.client.TxPipeline()
	pipe.LPush(ctx, key, payload)
	pipe.LTrim(ctx, key, 0, f.size-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("push detection: %w", err)
	}
	return nil
}

// Recent returns the user's feed, newest first.
func (f *RecentFeed) Recent(ctx context.Context, userID string) ([]DetectedSign, error) {
	raw, err := f.client.LRange(ctx, feedKey(userID), 0, f.size-1).Result()
	if err != nil {
		return nil, fmt.Errorf("read feed: %w", err)
	}

	out := make([]DetectedSign, 0, len(raw))
	for _, entry := range raw {
		var d DetectedSign
		if err := json.Unmarshal([]byte(entry), &d); err != nil {
			return nil, fmt.Errorf("decode feed entry: %w", err)
		}
		out = append(out, d)
	}
	return out, nil
}
