package kv

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"resume-review/internal/shared/util"
)

const (
	redisKeyPrefix = "rr:kv:"
	redisScanCount = 200
)

// RedisStore keeps entries as plain string keys named rr:kv:<owner hash>:<key>.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore connects using a redis:// URL.
func NewRedisStore(redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &RedisStore{rdb: redis.NewClient(opts)}, nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

// Ping checks connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

func (s *RedisStore) Get(ctx context.Context, owner, key string) (string, bool, error) {
	val, err := s.rdb.Get(ctx, ownerPrefix(owner)+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("kv get %s: %w", key, err)
	}
	return val, true, nil
}

func (s *RedisStore) Set(ctx context.Context, owner, key, value string) error {
	return s.SetWithTTL(ctx, owner, key, value, 0)
}

// SetWithTTL stores value and lets Redis expire it after ttl. A zero ttl
// keeps the entry.
func (s *RedisStore) SetWithTTL(ctx context.Context, owner, key, value string, ttl time.Duration) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, ownerPrefix(owner)+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("kv set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context, owner, pattern string, includeValues bool) ([]Item, error) {
	prefix := ownerPrefix(owner)
	keys, err := s.scan(ctx, prefix+escapeRedisGlob(pattern))
	if err != nil {
		return nil, fmt.Errorf("kv list %s: %w", pattern, err)
	}
	sort.Strings(keys)

	out := make([]Item, 0, len(keys))
	if !includeValues || len(keys) == 0 {
		for _, k := range keys {
			out = append(out, Item{Key: strings.TrimPrefix(k, prefix)})
		}
		return out, nil
	}

	vals, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("kv list values: %w", err)
	}
	for i, k := range keys {
		str, ok := vals[i].(string)
		if !ok {
			// deleted between SCAN and MGET
			continue
		}
		out = append(out, Item{Key: strings.TrimPrefix(k, prefix), Value: str})
	}
	return out, nil
}

func (s *RedisStore) Flush(ctx context.Context, owner string) error {
	keys, err := s.scan(ctx, ownerPrefix(owner)+"*")
	if err != nil {
		return fmt.Errorf("kv flush scan: %w", err)
	}
	for start := 0; start < len(keys); start += redisScanCount {
		end := start + redisScanCount
		if end > len(keys) {
			end = len(keys)
		}
		if err := s.rdb.Del(ctx, keys[start:end]...).Err(); err != nil {
			return fmt.Errorf("kv flush del: %w", err)
		}
	}
	return nil
}

func (s *RedisStore) scan(ctx context.Context, match string) ([]string, error) {
	var (
		cursor uint64
		keys   []string
	)
	seen := make(map[string]struct{})
	for {
		batch, next, err := s.rdb.Scan(ctx, cursor, match, redisScanCount).Result()
		if err != nil {
			return nil, err
		}
		for _, k := range batch {
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
		cursor = next
		if cursor == 0 {
			return keys, nil
		}
	}
}

func ownerPrefix(owner string) string {
	return redisKeyPrefix + util.OwnerKey(owner) + ":"
}

// escapeRedisGlob keeps '*' as a wildcard and makes every other glob
// metacharacter literal.
func escapeRedisGlob(pattern string) string {
	var b strings.Builder
	for _, r := range pattern {
		switch r {
		case '?', '[', ']', '\\', '^':
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

var (
	_ Store   = (*RedisStore)(nil)
	_ Expirer = (*RedisStore)(nil)
)
