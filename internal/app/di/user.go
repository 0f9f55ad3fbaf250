package di

import (
	"time"

	authadapters "auth_backend/internal/feature/auth/adapters"
	"auth_backend/internal/feature/auth/usecase"
	"auth_backend/internal/platform/cache"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// NewUserRepository creates the GORM user repository, wrapped in a Redis
// read-through cache when Redis is available.
func NewUserRepository(rdb *redis.Client, db *gorm.DB, ttl time.Duration) usecase.UserRepository {
	users := authadapters.NewUserGorm(db)
	if rdb == nil {
		return users
	}
	return cache.NewCachingUserRepository(rdb, ttl, users, "users")
}
