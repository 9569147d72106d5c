package kv

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrInvalidKey is returned for empty keys.
var ErrInvalidKey = errors.New("kv: key is required")

// Item is one entry returned by List. Value is empty when values were not requested.
type Item struct {
	Key   string `json:"key"`
	Value string `json:"value,omitempty"`
}

// Store is the key-value capability. Every operation is scoped to an owner;
// Flush removes the owner's entries only.
type Store interface {
	Get(ctx context.Context, owner, key string) (string, bool, error)
	Set(ctx context.Context, owner, key, value string) error
	List(ctx context.Context, owner, pattern string, includeValues bool) ([]Item, error)
	Flush(ctx context.Context, owner string) error
}

// Expirer is implemented by stores that can drop an entry after ttl.
type Expirer interface {
	SetWithTTL(ctx context.Context, owner, key, value string, ttl time.Duration) error
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	return nil
}

// Match reports whether key matches pattern, where '*' matches any run of
// characters (including none) and every other character is literal.
func Match(pattern, key string) bool {
	parts := strings.Split(pattern, "*")
	if len(parts) == 1 {
		return pattern == key
	}
	if !strings.HasPrefix(key, parts[0]) {
		return false
	}
	rest := key[len(parts[0]):]
	last := parts[len(parts)-1]
	for _, part := range parts[1 : len(parts)-1] {
		idx := strings.Index(rest, part)
		if idx < 0 {
			return false
		}
		rest = rest[idx+len(part):]
	}
	return len(rest) >= len(last) && strings.HasSuffix(rest, last)
}
