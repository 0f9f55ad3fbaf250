// Package di provides dependency injection factories for creating application components.
package di

import (
	authadapters "auth_backend/internal/feature/auth/adapters"
	"auth_backend/internal/feature/auth/usecase"
	"auth_backend/internal/platform/revocation"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// NewRevocationStore creates a RevocationStore implementation.
// It returns nil when the revocation list is disabled, which keeps the
// service fully stateless. If Redis is available, it returns a Redis-backed
// implementation. Otherwise, it falls back to the SQL table.
func NewRevocationStore(enabled bool, rdb *redis.Client, db *gorm.DB) usecase.RevocationStore {
	if !enabled {
		return nil
	}
	if rdb != nil {
		return revocation.NewRevocationRedis(rdb, "revoked")
	}
	return authadapters.NewRevokedTokenGorm(db)
}
