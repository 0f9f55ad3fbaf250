package jwtmw

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"auth_backend/internal/feature/auth/domain/entity"
)

const (
	// ContextUserID is the gin context key holding the authenticated user ID (uint).
	ContextUserID = "userID"
	// ContextToken is the gin context key holding the verified *entity.Token.
	ContextToken = "authToken"
)

// TokenParser verifies a raw bearer token.
type TokenParser interface {
	Parse(tokenStr string) (*entity.Token, error)
	ParseForRefresh(tokenStr string) (*entity.Token, error)
}

// RevocationChecker reports whether a token ID has been revoked.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// AuthRequired returns a Gin middleware function that validates JWT tokens
// and restricts access to authenticated users only.
// revoked may be nil when the revocation list is disabled.
func AuthRequired(parser TokenParser, revoked RevocationChecker) gin.HandlerFunc {
	return authenticate(parser.Parse, revoked)
}

// RefreshRequired is like AuthRequired but lets expired tokens through while
// they are still inside the refresh window. Use it only on the refresh route.
func RefreshRequired(parser TokenParser, revoked RevocationChecker) gin.HandlerFunc {
	return authenticate(parser.ParseForRefresh, revoked)
}

func authenticate(parse func(string) (*entity.Token, error), revoked RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Get Authorization header
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": false, "message": "missing bearer token"})
			return
		}
		tokenStr := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))

		// 2. Verify signature and claims
		token, err := parse(tokenStr)
		if err != nil {
			slog.Debug("token rejected", "error", err, "remote_addr", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": false, "message": "invalid token"})
			return
		}

		// 3. Check the revocation list
		if revoked != nil {
			isRevoked, err := revoked.IsRevoked(c.Request.Context(), token.ID)
			if err != nil {
				slog.Error("revocation check failed", "error", err, "jti", token.ID)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"status": false, "message": "internal error"})
				return
			}
			if isRevoked {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": false, "message": "token has been revoked"})
				return
			}
		}

		// 4. Expose identity to handlers
		c.Set(ContextUserID, token.UserID)
		c.Set(ContextToken, token)
		c.Next()
	}
}

// TokenFromContext returns the token stored by AuthRequired or RefreshRequired.
func TokenFromContext(c *gin.Context) (*entity.Token, bool) {
	v, ok := c.Get(ContextToken)
	if !ok {
		return nil, false
	}
	t, ok := v.(*entity.Token)
	return t, ok && t != nil
}
