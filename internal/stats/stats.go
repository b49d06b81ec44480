// Package stats records document deliveries.
package stats

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// Recorder counts successful deliveries per document.
type Recorder interface {
	Served(ctx context.Context, docID string) error
	Count(ctx context.Context, docID string) (int64, error)
}

// Forgetter is implemented by recorders that can drop a document's counter.
type Forgetter interface {
	Forget(ctx context.Context, docID string) error
}

// Nop discards events. Used when Redis is not configured.
type Nop struct{}

func (Nop) Served(context.Context, string) error          { return nil }
func (Nop) Count(context.Context, string) (int64, error) { return 0, nil }

// RedisRecorder keeps one counter per document under "<prefix><id>".
type RedisRecorder struct {
	client *redis.Client
	prefix string
}

// NewRedisRecorder creates a Redis-based recorder. Prefix may be empty.
func NewRedisRecorder(client *redis.Client, prefix string) *RedisRecorder {
	if prefix == "" {
		prefix = "served:"
	}
	return &RedisRecorder{client: client, prefix: prefix}
}

func (r *RedisRecorder) key(id string) string {
	return r.prefix + id
}

func (r *RedisRecorder) Served(ctx context.Context, docID string) error {
	return r.client.Incr(ctx, r.key(docID)).Err()
}

func (r *RedisRecorder) Count(ctx context.Context, docID string) (int64, error) {
	n, err := r.client.Get(ctx, r.key(docID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, err
	}
	return n, nil
}

var _ Forgetter = (*RedisRecorder)(nil)

// Forget drops the counter, e.g. when the document is deleted.
func (r *RedisRecorder) Forget(ctx context.Context, docID string) error {
	return r.client.Del(ctx, r.key(docID)).Err()
}
