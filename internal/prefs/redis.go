package prefs

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps a scope in a single Redis hash.
type RedisStore struct {
	client *redis.Client
	prefix string
	scope  string
}

func NewRedisStore(client *redis.Client, scope string) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "prefs:",
		scope:  scope,
	}
}

func (r *RedisStore) key() string {
	return r.prefix + r.scope
}

func (r *RedisStore) Snapshot(ctx context.Context) (Values, error) {
	m, err := r.client.HGetAll(ctx, r.key()).Result()
	if err != nil {
		return nil, fmt.Errorf("prefs: hgetall: %w", err)
	}
	return Values(m), nil
}

func (r *RedisStore) Commit(ctx context.Context, e *Edit) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if e.clear {
			pipe.Del(ctx, r.key())
		}
		if len(e.puts) > 0 {
			args := make([]interface{}, 0, len(e.puts)*2)
			for k, v := range e.puts {
				args = append(args, k, v)
			}
			pipe.HSet(ctx, r.key(), args...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("prefs: redis commit: %w", err)
	}
	return nil
}

// Close is a no-op; the client is owned by the caller.
func (r *RedisStore) Close() error { return nil }
