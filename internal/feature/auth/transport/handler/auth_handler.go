// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"auth_backend/internal/feature/auth/domain/entity"
	"auth_backend/internal/feature/auth/transport/http/dto"
	"auth_backend/internal/feature/auth/usecase"
	jwtmw "auth_backend/internal/platform/jwt"
)

const (
	msgRegistered     = "registration successful"
	msgLoggedIn       = "login successful"
	msgProfile        = "profile data"
	msgRefreshed      = "token refreshed"
	msgLoggedOut      = "logged out successfully"
	msgInvalidRequest = "invalid request"
	msgValidation     = "validation failed"
	msgInvalidCreds   = "invalid email or password"
	msgUnauthorized   = "unauthorized"
	msgInternal       = "internal error"
)

// AuthUsecase は認証操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	// Register は新規ユーザーを登録します。
	Register(ctx context.Context, name, email, password string) (*entity.User, error)
	// Login はユーザーを認証し、成功時にJWTトークンを返します。
	Login(ctx context.Context, email, password string) (string, error)
	// Profile は指定IDのユーザーを返します。
	Profile(ctx context.Context, userID uint) (*entity.User, error)
	// Refresh は現在のトークンを新しいトークンに交換します。
	Refresh(ctx context.Context, current *entity.Token) (string, error)
	// Logout は現在のトークンを無効化します。
	Logout(ctx context.Context, current *entity.Token) error
}

// AuthHandler は認証操作のHTTPリクエストを処理します。
// AuthUsecaseインターフェースに依存し、JSONリクエスト/レスポンスを処理します。
type AuthHandler struct {
	auth     AuthUsecase
	tokenTTL time.Duration
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
// tokenTTLはレスポンスのexpires_inとして返却されます。
func NewAuthHandler(auth AuthUsecase, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{auth: auth, tokenTTL: tokenTTL}
}

// Register はユーザー登録APIエンドポイントを処理します。
// - JSON構文エラー時は400を返却
// - バリデーションエラー（メール重複を含む）時は422を返却
// - 成功時は201を返却
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterReq
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	switch {
	case errors.Is(err, usecase.ErrEmailAlreadyExists):
		slog.Warn("register rejected: email taken", "email", req.Email, "remote_addr", c.ClientIP())
		respondValidation(c, dto.AddFieldError(nil, "email", "email has already been taken"))
		return
	case errors.Is(err, usecase.ErrWeakPassword), errors.Is(err, usecase.ErrPasswordTooLong):
		respondValidation(c, dto.AddFieldError(nil, "password", err.Error()))
		return
	case errors.Is(err, usecase.ErrNameRequired):
		respondValidation(c, dto.AddFieldError(nil, "name", "name is a required field"))
		return
	case err != nil:
		slog.Error("register failed", "error", err, "email", req.Email, "remote_addr", c.ClientIP())
		c.JSON(http.StatusInternalServerError, dto.Fail(msgInternal))
		return
	}

	slog.Info("user registered", "user_id", user.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusCreated, dto.Response{Status: true, Message: msgRegistered})
}

// Login はユーザーログインAPIエンドポイントを処理します。
// - 認証失敗時は401を返却（どのフィールドが誤っているかは公開しない）
// - 認証成功時はJWTトークン付きで200を返却
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if !bindJSON(c, &req) {
		return
	}

	token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, usecase.ErrInvalidCredentials):
		// ユーザー列挙攻撃を防止するため、実際のエラーを公開しない
		slog.Warn("login failed", "email", req.Email, "remote_addr", c.ClientIP())
		c.JSON(http.StatusUnauthorized, dto.Fail(msgInvalidCreds))
		return
	case err != nil:
		slog.Error("login failed", "error", err, "email", req.Email, "remote_addr", c.ClientIP())
		c.JSON(http.StatusInternalServerError, dto.Fail(msgInternal))
		return
	}

	slog.Info("user login successful", "email", req.Email, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.TokenResponse(msgLoggedIn, token, h.tokenTTL))
}

// Profile は認証済みユーザーのプロフィールを返します。
func (h *AuthHandler) Profile(c *gin.Context) {
	token, ok := jwtmw.TokenFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.Fail(msgUnauthorized))
		return
	}

	user, err := h.auth.Profile(c.Request.Context(), token.UserID)
	switch {
	case errors.Is(err, usecase.ErrUserNotFound):
		// 署名は有効だがユーザーが存在しない
		slog.Warn("profile for unknown user", "user_id", token.UserID)
		c.JSON(http.StatusUnauthorized, dto.Fail(msgUnauthorized))
		return
	case err != nil:
		slog.Error("profile lookup failed", "error", err, "user_id", token.UserID)
		c.JSON(http.StatusInternalServerError, dto.Fail(msgInternal))
		return
	}

	c.JSON(http.StatusOK, dto.Response{Status: true, Message: msgProfile, Data: dto.NewUserRes(user)})
}

// Refresh は新しいトークンを発行します。
func (h *AuthHandler) Refresh(c *gin.Context) {
	current, ok := jwtmw.TokenFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.Fail(msgUnauthorized))
		return
	}

	token, err := h.auth.Refresh(c.Request.Context(), current)
	switch {
	case errors.Is(err, usecase.ErrTokenNotRefreshable):
		c.JSON(http.StatusUnauthorized, dto.Fail("token can no longer be refreshed"))
		return
	case err != nil:
		slog.Error("token refresh failed", "error", err, "user_id", current.UserID)
		c.JSON(http.StatusInternalServerError, dto.Fail(msgInternal))
		return
	}

	c.JSON(http.StatusOK, dto.TokenResponse(msgRefreshed, token, h.tokenTTL))
}

// Logout は現在のトークンを無効化します。
func (h *AuthHandler) Logout(c *gin.Context) {
	current, ok := jwtmw.TokenFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.Fail(msgUnauthorized))
		return
	}

	if err := h.auth.Logout(c.Request.Context(), current); err != nil {
		slog.Error("logout failed", "error", err, "user_id", current.UserID)
		c.JSON(http.StatusInternalServerError, dto.Fail(msgInternal))
		return
	}

	slog.Info("user logged out", "user_id", current.UserID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.Response{Status: true, Message: msgLoggedOut})
}

// bindJSON はリクエストボディをバインドし、失敗時はレスポンスを書き込んでfalseを返します。
func bindJSON(c *gin.Context, req any) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}
	if fields, ok := dto.FieldErrors(err); ok {
		slog.Warn("request validation failed", "path", c.FullPath(), "fields", fields, "remote_addr", c.ClientIP())
		respondValidation(c, fields)
		return false
	}
	slog.Warn("malformed request body", "error", err, "path", c.FullPath(), "remote_addr", c.ClientIP())
	c.JSON(http.StatusBadRequest, dto.Fail(msgInvalidRequest))
	return false
}

func respondValidation(c *gin.Context, fields map[string][]string) {
	c.JSON(http.StatusUnprocessableEntity, dto.Response{Status: false, Message: msgValidation, Errors: fields})
}
