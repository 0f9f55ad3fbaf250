package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	redisv9 "github.com/redis/go-redis/v9"

	appconfig "auth_backend/internal/app/config"
	"auth_backend/internal/app/di"
	"auth_backend/internal/app/router"
	authadapters "auth_backend/internal/feature/auth/adapters"
	"auth_backend/internal/feature/auth/domain/entity"
	authhandler "auth_backend/internal/feature/auth/transport/handler"
	"auth_backend/internal/feature/auth/transport/http/dto"
	authusecase "auth_backend/internal/feature/auth/usecase"
	platformdb "auth_backend/internal/platform/db"
	platformhandler "auth_backend/internal/platform/http/handler"
	jwtmw "auth_backend/internal/platform/jwt"
	"auth_backend/internal/platform/logger"
	platformredis "auth_backend/internal/platform/redis"
	"auth_backend/internal/shared/ratelimiter"
)

func main() {
	appconfig.LoadDotEnv()
	cfg, err := appconfig.Load()
	if err != nil {
		log.Fatal(err)
	}
	slog.SetDefault(logger.New(os.Stdout, cfg.LogLevel, cfg.LogFormat))

	// JWT_SECRETチェック
	jwtCfg := jwtmw.LoadConfigFromEnv()
	if jwtCfg.Secret == "" {
		slog.Error("JWT_SECRET is not set; refusing to sign tokens with an empty key", "env", jwtmw.EnvKeyJWTSecret)
		os.Exit(1)
	}

	// db
	db, err := platformdb.Open(platformdb.LoadConfigFromEnv(), &entity.User{}, &authadapters.RevokedTokenModel{})
	if err != nil {
		slog.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	sqlDB, err := db.DB()
	if err != nil {
		slog.Error("failed to get sql.DB", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}()

	// Redis
	var rdb *redisv9.Client
	redisCfg := platformredis.LoadConfigFromEnv()
	if redisCfg.Host == "" {
		slog.Warn("REDIS_HOST is not set. Running without cache, throttling and Redis revocation list.")
	} else if tmp, err := platformredis.NewRedisClient(redisCfg); err != nil {
		slog.Warn("Redis unavailable. Running without cache, throttling and Redis revocation list.", "error", err)
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				slog.Error("failed to close Redis client", "error", err)
			}
		}()
	}

	if err := dto.RegisterValidation(); err != nil {
		slog.Error("failed to register validation messages", "error", err)
		os.Exit(1)
	}

	// Repository
	userRepo := di.NewUserRepository(rdb, db, cfg.UserCacheTTL)
	revoked := di.NewRevocationStore(jwtCfg.BlacklistEnabled, rdb, db)
	tokens := jwtmw.NewManager(jwtCfg)

	// Usecase
	authUC := authusecase.NewAuthUsecase(userRepo, tokens, revoked)

	// Handler
	authH := authhandler.NewAuthHandler(authUC, tokens.TTL())
	checks := map[string]platformhandler.Check{
		"db": func(ctx context.Context) error { return sqlDB.PingContext(ctx) },
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	deps := router.Deps{
		Auth:    authH,
		Health:  platformhandler.NewHealthHandler(checks),
		Tokens:  tokens,
		Limiter: ratelimiter.NewRateLimiter(rdb, cfg.ThrottleLimit, cfg.ThrottleWindow, "throttle"),
	}
	if revoked != nil {
		deps.Revoked = revoked
	}

	// ルータ生成
	r := router.NewRouter(deps)

	// CORS追加 スマホアプリなのでコメントアウト
	// r.Use(cors.Default())

	slog.Info("server starting", "addr", cfg.Addr(), "revocation", revoked != nil, "redis", rdb != nil)
	if err := r.Run(cfg.Addr()); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
