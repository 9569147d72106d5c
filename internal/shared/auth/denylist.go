package auth

import (
	"context"
	"strconv"
	"strings"
	"time"

	"resume-review/internal/shared/storage/kv"
)

// Denylist records signed-out token ids until they expire.
type Denylist interface {
	Revoke(ctx context.Context, id string, exp time.Time) error
	Revoked(ctx context.Context, id string) (bool, error)
}

// denylistOwner keeps revoked ids apart from user data.
const denylistOwner = "system:auth"

// KVDenylist keeps revoked ids in the key-value store.
type KVDenylist struct {
	Store kv.Store
	Now   func() time.Time
}

// NewKVDenylist returns a denylist backed by store.
func NewKVDenylist(store kv.Store) *KVDenylist {
	return &KVDenylist{Store: store, Now: time.Now}
}

// Revoke implements Denylist. Stores that implement kv.Expirer drop the
// entry once the token expires; on other stores it stays until flushed.
func (d *KVDenylist) Revoke(ctx context.Context, id string, exp time.Time) error {
	if strings.TrimSpace(id) == "" {
		return nil
	}
	ttl := exp.Sub(d.now())
	if ttl <= 0 {
		return nil
	}
	key, value := "revoked:"+id, strconv.FormatInt(exp.Unix(), 10)
	if ex, ok := d.Store.(kv.Expirer); ok {
		// whole seconds so the entry never lapses before exp
		return ex.SetWithTTL(ctx, denylistOwner, key, value, ttl.Truncate(time.Second)+time.Second)
	}
	return d.Store.Set(ctx, denylistOwner, key, value)
}

// Revoked implements Denylist. Entries past their expiry no longer count.
func (d *KVDenylist) Revoked(ctx context.Context, id string) (bool, error) {
	if strings.TrimSpace(id) == "" {
		return false, nil
	}
	raw, ok, err := d.Store.Get(ctx, denylistOwner, "revoked:"+id)
	if err != nil || !ok {
		return false, err
	}
	exp, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return true, nil
	}
	return d.now().Unix() <= exp, nil
}

func (d *KVDenylist) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}
