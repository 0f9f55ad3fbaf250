package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	appconfig "auth_backend/internal/app/config"
	authadapters "auth_backend/internal/feature/auth/adapters"
	platformdb "auth_backend/internal/platform/db"
	"auth_backend/internal/platform/logger"
)

// prune は期限切れの失効トークン行をSQLテーブルから削除するバッチです。
// Redisの失効リストはキーのTTLで自動的に消えるため対象外です。
func main() {
	appconfig.LoadDotEnv()
	cfg, err := appconfig.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logger.New(os.Stdout, cfg.LogLevel, cfg.LogFormat))

	db, err := platformdb.Open(platformdb.LoadConfigFromEnv(), &authadapters.RevokedTokenModel{})
	if err != nil {
		slog.Error("database unavailable", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	deleted, err := authadapters.NewRevokedTokenGorm(db).DeleteExpired(ctx)
	if err != nil {
		slog.Error("prune failed", "error", err)
		os.Exit(1)
	}
	slog.Info("prune ok", "deleted", deleted)
}
