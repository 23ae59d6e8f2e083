package identity

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestWithUserIDAndUserIDFromContext(t *testing.T) {
	id := uuid.New()
	ctx := WithUserID(context.Background(), id)

	got, ok := UserIDFromContext(ctx)
	if !ok {
		t.Fatal("expected user id to be present")
	}
	if got != id {
		t.Fatalf("expected %s, got %s", id, got)
	}
}

func TestUserIDFromContext_Missing(t *testing.T) {
	if _, ok := UserIDFromContext(context.Background()); ok {
		t.Fatal("expected missing user id to return false")
	}

	ctx := context.WithValue(context.Background(), userKey, "not-a-uuid")
	if _, ok := UserIDFromContext(ctx); ok {
		t.Fatal("expected non-uuid value to return false")
	}

	ctx = WithUserID(context.Background(), uuid.Nil)
	if _, ok := UserIDFromContext(ctx); ok {
		t.Fatal("expected nil uuid to return false")
	}
}
