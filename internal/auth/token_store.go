package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// TokenStore tracks which refresh tokens are still valid. Password
// changes revoke every outstanding token for the user at once.
type TokenStore interface {
	Save(ctx context.Context, userID uuid.UUID, jti string, ttl time.Duration) error
	IsValid(ctx context.Context, userID uuid.UUID, jti string) (bool, error)
	Revoke(ctx context.Context, userID uuid.UUID, jti string) error
	RevokeAll(ctx context.Context, userID uuid.UUID) error
}

// RedisTokenStore keeps one key per outstanding refresh token, expiring
// with the token itself, plus a per-user set for bulk revocation.
type RedisTokenStore struct {
	client *redis.Client
}

// NewRedisTokenStore creates a store on an existing client.
func NewRedisTokenStore(client *redis.Client) *RedisTokenStore {
	if client == nil {
		panic("auth: redis client required")
	}
	return &RedisTokenStore{client: client}
}

func tokenKey(userID uuid.UUID, jti string) string {
	return fmt.Sprintf("refresh:%s:%s", userID, jti)
}

func userSetKey(userID uuid.UUID) string {
	return fmt.Sprintf("refresh_tokens:%s", userID)
}

// Save records a freshly issued refresh token.
func (s *RedisTokenStore) Save(ctx context.Context, userID uuid.UUID, jti string, ttl time.Duration) error {
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, tokenKey(userID, jti), "1", ttl)
	pipe.SAdd(ctx, userSetKey(userID), jti)
	// The set must outlive the longest-lived member.
	pipe.Expire(ctx, userSetKey(userID), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("auth: save refresh token: %w", err)
	}
	return nil
}

// IsValid reports whether the token is still outstanding.
func (s *RedisTokenStore) IsValid(ctx context.Context, userID uuid.UUID, jti string) (bool, error) {
	err := s.client.Get(ctx, tokenKey(userID, jti)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("auth: check refresh token: %w", err)
	}
	return true, nil
}

// Revoke invalidates one refresh token, typically on rotation.
func (s *RedisTokenStore) Revoke(ctx context.Context, userID uuid.UUID, jti string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, tokenKey(userID, jti))
	pipe.SRem(ctx, userSetKey(userID), jti)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("auth: revoke refresh token: %w", err)
	}
	return nil
}

// RevokeAll invalidates every outstanding refresh token for the user.
func (s *RedisTokenStore) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	jtis, err := s.client.SMembers(ctx, userSetKey(userID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("auth: list refresh tokens: %w", err)
	}

	keys := make([]string, 0, len(jtis)+1)
	for _, jti := range jtis {
		keys = append(keys, tokenKey(userID, jti))
	}
	keys = append(keys, userSetKey(userID))

	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("auth: revoke all refresh tokens: %w", err)
	}
	return nil
}
