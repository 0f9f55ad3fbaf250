// Package router はアプリケーションのHTTPルーティングを組み立てます。
package router

import (
	authhandler "auth_backend/internal/feature/auth/transport/handler"
	platformhandler "auth_backend/internal/platform/http/handler"
	jwtmw "auth_backend/internal/platform/jwt"
	"auth_backend/internal/shared/ratelimiter"

	"github.com/gin-gonic/gin"
)

// Deps はルーターが必要とするハンドラーとミドルウェアの依存関係です。
type Deps struct {
	Auth    *authhandler.AuthHandler
	Health  *platformhandler.HealthHandler
	Tokens  jwtmw.TokenParser
	Revoked jwtmw.RevocationChecker // nilの場合は失効チェックを行わない
	Limiter *ratelimiter.RateLimiter
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.Default()

	// 認証不要
	// 導通確認用
	r.GET("/healthz", d.Health.Live)
	r.HEAD("/healthz", d.Health.Live)
	r.OPTIONS("/healthz", d.Health.Live)
	r.GET("/readyz", d.Health.Ready)

	// ブルートフォース対策としてIP単位で制限する
	throttle := ratelimiter.Middleware(d.Limiter)
	// 新規ユーザー登録
	r.POST("/register", throttle, d.Auth.Register)
	// ログイン（JWT 発行）
	r.POST("/login", throttle, d.Auth.Login)

	// 期限切れトークンもリフレッシュ期間内であれば受け付ける
	r.GET("/refresh", jwtmw.RefreshRequired(d.Tokens, d.Revoked), d.Auth.Refresh)

	// 認証必須のルート
	// r.Group("/") でルートグループを作成
	auth := r.Group("/")
	// jwtmw.AuthRequired() ミドルウェアを適用
	// → リクエストヘッダーに JWT が必要になる
	auth.Use(jwtmw.AuthRequired(d.Tokens, d.Revoked))
	{
		auth.GET("/profile", d.Auth.Profile)
		auth.GET("/logout", d.Auth.Logout)
	}

	return r
}
