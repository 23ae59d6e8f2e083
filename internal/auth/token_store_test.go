package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func newTestTokenStore(t *testing.T) (*miniredis.Miniredis, *RedisTokenStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisTokenStore(client)
}

func TestTokenStoreSaveAndValidate(t *testing.T) {
	_, store := newTestTokenStore(t)
	ctx := context.Background()
	userID := uuid.New()

	if err := store.Save(ctx, userID, "jti-1", time.Hour); err != nil {
		t.Fatalf("save: %v", err)
	}

	valid, err := store.IsValid(ctx, userID, "jti-1")
	if err != nil {
		t.Fatalf("is valid: %v", err)
	}
	if !valid {
		t.Error("freshly saved token reported invalid")
	}

	valid, err = store.IsValid(ctx, userID, "jti-unknown")
	if err != nil {
		t.Fatalf("is valid: %v", err)
	}
	if valid {
		t.Error("unknown token reported valid")
	}
}

func TestTokenStoreExpiry(t *testing.T) {
	mr, store := newTestTokenStore(t)
	ctx := context.Background()
	userID := uuid.New()

	if err := store.Save(ctx, userID, "jti-1", time.Minute); err != nil {
		t.Fatalf("save: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	valid, err := store.IsValid(ctx, userID, "jti-1")
	if err != nil {
		t.Fatalf("is valid: %v", err)
	}
	if valid {
		t.Error("expired token reported valid")
	}
}

func TestTokenStoreRevoke(t *testing.T) {
	_, store := newTestTokenStore(t)
	ctx := context.Background()
	userID := uuid.New()

	if err := store.Save(ctx, userID, "jti-1", time.Hour); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Revoke(ctx, userID, "jti-1"); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	valid, _ := store.IsValid(ctx, userID, "jti-1")
	if valid {
		t.Error("revoked token reported valid")
	}
}

func TestTokenStoreRevokeAll(t *testing.T) {
	_, store := newTestTokenStore(t)
	ctx := context.Background()
	userID := uuid.New()
	other := uuid.New()

	for _, jti := range []string{"a", "b", "c"} {
		if err := store.Save(ctx, userID, jti, time.Hour); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	if err := store.Save(ctx, other, "keep", time.Hour); err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := store.RevokeAll(ctx, userID); err != nil {
		t.Fatalf("revoke all: %v", err)
	}

	for _, jti := range []string{"a", "b", "c"} {
		if valid, _ := store.IsValid(ctx, userID, jti); valid {
			t.Errorf("token %s survived revoke all", jti)
		}
	}
	// Other users keep their sessions.
	if valid, _ := store.IsValid(ctx, other, "keep"); !valid {
		t.Error("unrelated user's token was revoked")
	}
}

func TestTokenStoreRevokeAllEmpty(t *testing.T) {
	_, store := newTestTokenStore(t)

	if err := store.RevokeAll(context.Background(), uuid.New()); err != nil {
		t.Fatalf("revoke all on empty store: %v", err)
	}
}
