package jwtmw

import (
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auth_backend/internal/feature/auth/domain/entity"
)

const testSecret = "test-secret"

// newTestManager はテスト用に時刻を固定できるManagerを生成します。
func newTestManager(now func() time.Time) *Manager {
	m := NewManager(Config{
		Secret:     testSecret,
		TTL:        time.Hour,
		RefreshTTL: 24 * time.Hour,
		Issuer:     "auth_backend",
	})
	if now != nil {
		m.now = now
	}
	return m
}

// signRaw はテスト用に任意のクレームで署名済みトークンを生成します。
func signRaw(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.Claims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return signed
}

// TestNewManager は設定値が正しく反映されることを検証します。
func TestNewManager(t *testing.T) {
	t.Parallel()

	m := NewManager(Config{Secret: "s", TTL: time.Minute, RefreshTTL: time.Hour, Issuer: "iss"})

	assert.Equal(t, []byte("s"), m.secret)
	assert.Equal(t, time.Minute, m.TTL())
	assert.Equal(t, time.Hour, m.refreshTTL)
	assert.Equal(t, "iss", m.issuer)
}

// TestManager_GenerateToken は生成されたトークンが正しいクレームを含むことを検証します。
func TestManager_GenerateToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		userID uint
		email  string
	}{
		{"basic user", 1, "user@example.com"},
		{"user with special email", 42, "user+tag@example.com"},
		{"large user id", 999999, "test@test.com"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := newTestManager(nil)
			tokenStr, err := m.GenerateToken(tt.userID, tt.email)
			require.NoError(t, err)
			require.NotEmpty(t, tokenStr)

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
				return []byte(testSecret), nil
			})
			require.NoError(t, err)
			assert.True(t, token.Valid)
			assert.Equal(t, "HS256", token.Header["alg"])

			assert.Equal(t, strconv.FormatUint(uint64(tt.userID), 10), claims.Subject)
			assert.Equal(t, tt.email, claims.Email)
			assert.Equal(t, "auth_backend", claims.Issuer)
			assert.NotEmpty(t, claims.ID, "jti should be set")
			require.NotNil(t, claims.OrigIssuedAt)
			assert.Equal(t, claims.IssuedAt.Unix(), claims.OrigIssuedAt.Unix())
			assert.Equal(t, time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
		})
	}
}

// TestManager_GenerateToken_Unique は同一ユーザー・同一秒でも異なるトークンが生成されることを検証します。
func TestManager_GenerateToken_Unique(t *testing.T) {
	t.Parallel()

	fixed := time.Now()
	m := newTestManager(func() time.Time { return fixed })

	token1, err := m.GenerateToken(1, "user@example.com")
	require.NoError(t, err)
	token2, err := m.GenerateToken(1, "user@example.com")
	require.NoError(t, err)

	assert.NotEqual(t, token1, token2)
}

// TestManager_Parse は有効・無効なトークンの検証結果を確認します。
func TestManager_Parse(t *testing.T) {
	t.Parallel()

	m := newTestManager(nil)
	valid, err := m.GenerateToken(7, "seven@example.com")
	require.NoError(t, err)

	now := time.Now()
	baseClaims := func(exp time.Time) Claims {
		return Claims{
			Email: "x@example.com",
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        "jti",
				Subject:   "1",
				Issuer:    "auth_backend",
				IssuedAt:  jwt.NewNumericDate(now.Add(-2 * time.Hour)),
				ExpiresAt: jwt.NewNumericDate(exp),
			},
		}
	}
	wrongIssuer := baseClaims(now.Add(time.Hour))
	wrongIssuer.Issuer = "someone-else"
	badSubject := baseClaims(now.Add(time.Hour))
	badSubject.Subject = "not-a-number"
	noExp := baseClaims(now.Add(time.Hour))
	noExp.ExpiresAt = nil

	tests := []struct {
		name    string
		token   string
		wantErr bool
	}{
		{"valid token", valid, false},
		{"malformed token", "not.a.valid.token", true},
		{"random string", "randomstring", true},
		{"wrong secret", signRaw(t, jwt.SigningMethodHS256, []byte("wrong-secret"), baseClaims(now.Add(time.Hour))), true},
		{"expired token", signRaw(t, jwt.SigningMethodHS256, []byte(testSecret), baseClaims(now.Add(-time.Hour))), true},
		{"wrong issuer", signRaw(t, jwt.SigningMethodHS256, []byte(testSecret), wrongIssuer), true},
		{"non-numeric subject", signRaw(t, jwt.SigningMethodHS256, []byte(testSecret), badSubject), true},
		{"missing exp", signRaw(t, jwt.SigningMethodHS256, []byte(testSecret), noExp), true},
		{"none algorithm", signRaw(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, baseClaims(now.Add(time.Hour))), true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := m.Parse(tt.token)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidToken)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, uint(7), got.UserID)
			assert.Equal(t, "seven@example.com", got.Email)
			assert.Equal(t, got.OriginalIssuedAt.Add(24*time.Hour), got.RefreshableUntil)
		})
	}
}

// TestManager_ParseForRefresh は期限切れトークンがリフレッシュ期間内のみ受理されることを検証します。
func TestManager_ParseForRefresh(t *testing.T) {
	t.Parallel()

	issuedAt := time.Now().Add(-3 * time.Hour)
	issuer := newTestManager(func() time.Time { return issuedAt })
	expired, err := issuer.GenerateToken(5, "five@example.com")
	require.NoError(t, err)

	t.Run("expired but inside refresh window", func(t *testing.T) {
		t.Parallel()

		m := newTestManager(nil)
		_, err := m.Parse(expired)
		assert.ErrorIs(t, err, ErrInvalidToken, "Parse must reject expired tokens")

		got, err := m.ParseForRefresh(expired)
		require.NoError(t, err)
		assert.Equal(t, uint(5), got.UserID)
		assert.True(t, got.IsExpired())
	})

	t.Run("expired and outside refresh window", func(t *testing.T) {
		t.Parallel()

		m := newTestManager(func() time.Time { return issuedAt.Add(25 * time.Hour) })
		_, err := m.ParseForRefresh(expired)
		assert.ErrorIs(t, err, ErrRefreshWindowExpired)
	})

	t.Run("expired with wrong secret", func(t *testing.T) {
		t.Parallel()

		forged := NewManager(Config{Secret: "other", TTL: time.Hour, RefreshTTL: 24 * time.Hour, Issuer: "auth_backend"})
		forged.now = func() time.Time { return issuedAt }
		tokenStr, err := forged.GenerateToken(5, "five@example.com")
		require.NoError(t, err)

		_, err = newTestManager(nil).ParseForRefresh(tokenStr)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired with wrong issuer", func(t *testing.T) {
		t.Parallel()

		other := NewManager(Config{Secret: testSecret, TTL: time.Hour, RefreshTTL: 24 * time.Hour, Issuer: "other"})
		other.now = func() time.Time { return issuedAt }
		tokenStr, err := other.GenerateToken(5, "five@example.com")
		require.NoError(t, err)

		_, err = newTestManager(nil).ParseForRefresh(tokenStr)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

// TestManager_RefreshToken は再発行トークンがorig_iatを引き継ぎ、値が異なることを検証します。
func TestManager_RefreshToken(t *testing.T) {
	t.Parallel()

	m := newTestManager(nil)
	original, err := m.GenerateToken(3, "three@example.com")
	require.NoError(t, err)
	current, err := m.Parse(original)
	require.NoError(t, err)

	refreshed, err := m.RefreshToken(current)
	require.NoError(t, err)
	assert.NotEqual(t, original, refreshed)

	next, err := m.Parse(refreshed)
	require.NoError(t, err)
	assert.Equal(t, current.UserID, next.UserID)
	assert.Equal(t, current.Email, next.Email)
	assert.NotEqual(t, current.ID, next.ID)
	assert.Equal(t, current.OriginalIssuedAt.Unix(), next.OriginalIssuedAt.Unix())

	t.Run("outside refresh window", func(t *testing.T) {
		stale := &entity.Token{
			ID:               "old",
			UserID:           3,
			OriginalIssuedAt: time.Now().Add(-48 * time.Hour),
		}
		_, err := m.RefreshToken(stale)
		assert.ErrorIs(t, err, ErrRefreshWindowExpired)
	})
}
