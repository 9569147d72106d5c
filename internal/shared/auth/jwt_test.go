package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"

	"resume-review/internal/shared/storage/kv"
)

func TestSignAndVerify(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ENV", "dev")

	token, err := SignJWT(Claims{Sub: "google:1", Email: "a@example.com", Name: "Ada"})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	claims, err := VerifyJWT(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Sub != "google:1" || claims.Name != "Ada" || claims.Email != "a@example.com" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if claims.ID == "" {
		t.Fatalf("expected token id")
	}
	if claims.Exp <= time.Now().Unix() {
		t.Fatalf("expected future expiry")
	}
}

func TestVerifyRejectsTampering(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	token, err := SignJWT(Claims{Sub: "u"})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	t.Setenv("JWT_SECRET", "other-secret")
	if _, err := VerifyJWT(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	past := time.Now().Add(-2 * time.Hour)
	token, err := SignJWT(Claims{Sub: "u", Iat: past.Unix(), Exp: past.Add(time.Minute).Unix()})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := VerifyJWT(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired token rejected, got %v", err)
	}
}

func TestVerifyRejectsOtherAlgorithms(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "u"})
	raw, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := VerifyJWT(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected alg none rejected, got %v", err)
	}
}

func TestSecretRequiredInProduction(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET", "")
	if _, err := SignJWT(Claims{Sub: "u"}); !errors.Is(err, errMissingSecret) {
		t.Fatalf("expected missing secret error, got %v", err)
	}
}

func TestKVDenylist(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	d := NewKVDenylist(kv.NewMemoryStore())
	d.Now = func() time.Time { return now }
	ctx := context.Background()

	revoked, err := d.Revoked(ctx, "jti-1")
	if err != nil || revoked {
		t.Fatalf("unexpected revoked=%v err=%v", revoked, err)
	}
	if err := d.Revoke(ctx, "jti-1", now.Add(time.Hour)); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if revoked, _ := d.Revoked(ctx, "jti-1"); !revoked {
		t.Fatalf("expected revoked")
	}
	now = now.Add(2 * time.Hour)
	if revoked, _ := d.Revoked(ctx, "jti-1"); revoked {
		t.Fatalf("expected entry to lapse after expiry")
	}
}

func TestKVDenylistExpiresRedisEntries(t *testing.T) {
	mr := miniredis.RunT(t)
	store := kv.NewRedisStoreFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = store.Close() })

	now := time.Now()
	d := NewKVDenylist(store)
	d.Now = func() time.Time { return now }
	ctx := context.Background()

	if err := d.Revoke(ctx, "jti-1", now.Add(time.Hour)); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if revoked, _ := d.Revoked(ctx, "jti-1"); !revoked {
		t.Fatalf("expected revoked")
	}
	keys := mr.Keys()
	if len(keys) != 1 {
		t.Fatalf("expected one key, got %v", keys)
	}
	if ttl := mr.TTL(keys[0]); ttl < time.Hour || ttl > time.Hour+time.Second {
		t.Fatalf("unexpected ttl %v", ttl)
	}

	mr.FastForward(time.Hour + 2*time.Second)
	if len(mr.Keys()) != 0 {
		t.Fatalf("expected entry removed after expiry, got %v", mr.Keys())
	}
	if revoked, err := d.Revoked(ctx, "jti-1"); err != nil || revoked {
		t.Fatalf("unexpected revoked=%v err=%v", revoked, err)
	}
}

func TestKVDenylistSkipsExpiredTokens(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	store := kv.NewMemoryStore()
	d := NewKVDenylist(store)
	d.Now = func() time.Time { return now }
	ctx := context.Background()

	if err := d.Revoke(ctx, "jti-old", now.Add(-time.Minute)); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	items, err := store.List(ctx, denylistOwner, "*", false)
	if err != nil || len(items) != 0 {
		t.Fatalf("expected nothing stored, got %v err=%v", items, err)
	}
}
