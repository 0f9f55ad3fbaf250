// Package revocation provides the Redis-backed token revocation list.
package revocation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"auth_backend/internal/feature/auth/usecase"
)

// RevocationRedis implements usecase.RevocationStore using Redis.
// Each revoked token is a single key whose TTL ends when the token could no
// longer be refreshed, so Redis prunes the list by itself.
type RevocationRedis struct {
	client *redis.Client
	prefix string
}

// Compile-time check to ensure RevocationRedis implements RevocationStore.
var _ usecase.RevocationStore = (*RevocationRedis)(nil)

// NewRevocationRedis creates a new RevocationRedis instance.
// If prefix is empty, it uses "revoked".
func NewRevocationRedis(client *redis.Client, prefix string) *RevocationRedis {
	if prefix == "" {
		prefix = "revoked"
	}
	return &RevocationRedis{
		client: client,
		prefix: prefix,
	}
}

// tokenKey returns the Redis key for a revoked token.
func (r *RevocationRedis) tokenKey(tokenID string) string {
	return fmt.Sprintf("%s:%s", r.prefix, tokenID)
}

// Revoke stores the token ID until the given time. Tokens already past that
// time are skipped since they cannot be presented again anyway.
func (r *RevocationRedis) Revoke(ctx context.Context, tokenID string, userID uint, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	value := strconv.FormatUint(uint64(userID), 10)
	if err := r.client.Set(ctx, r.tokenKey(tokenID), value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether the token ID is present in the list.
func (r *RevocationRedis) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	err := r.client.Get(ctx, r.tokenKey(tokenID)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
