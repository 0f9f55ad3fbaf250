package jwtmw

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"auth_backend/internal/feature/auth/domain/entity"
)

var (
	// ErrInvalidToken is returned for malformed, badly signed or expired tokens.
	ErrInvalidToken = errors.New("invalid token")

	// ErrRefreshWindowExpired is returned when a token is too old to be refreshed.
	ErrRefreshWindowExpired = errors.New("refresh window expired")
)

// Claims is the JWT payload issued by Manager.
type Claims struct {
	Email string `json:"email"`
	// OrigIssuedAt is the time of the original login; it survives refreshes.
	OrigIssuedAt *jwt.NumericDate `json:"orig_iat,omitempty"`
	jwt.RegisteredClaims
}

// Manager signs and verifies tokens with a shared HMAC secret.
type Manager struct {
	secret     []byte
	ttl        time.Duration
	refreshTTL time.Duration
	issuer     string
	now        func() time.Time
}

// NewManager creates a Manager from the provided configuration.
func NewManager(cfg Config) *Manager {
	return &Manager{
		secret:     []byte(cfg.Secret),
		ttl:        cfg.TTL,
		refreshTTL: cfg.RefreshTTL,
		issuer:     cfg.Issuer,
		now:        time.Now,
	}
}

// TTL returns the lifetime of newly issued tokens.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// GenerateToken creates a signed token for a fresh login.
func (m *Manager) GenerateToken(userID uint, email string) (string, error) {
	return m.sign(userID, email, m.now())
}

// RefreshToken creates a new token for the same user, keeping the original
// login time so the refresh window cannot be extended indefinitely.
func (m *Manager) RefreshToken(current *entity.Token) (string, error) {
	if !m.now().Before(current.OriginalIssuedAt.Add(m.refreshTTL)) {
		return "", ErrRefreshWindowExpired
	}
	return m.sign(current.UserID, current.Email, current.OriginalIssuedAt)
}

func (m *Manager) sign(userID uint, email string, origIssuedAt time.Time) (string, error) {
	now := m.now()
	claims := Claims{
		Email:        email,
		OrigIssuedAt: jwt.NewNumericDate(origIssuedAt),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatUint(uint64(userID), 10),
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies the signature and all time-based claims.
func (m *Manager) Parse(tokenStr string) (*entity.Token, error) {
	claims, err := m.parse(tokenStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return m.toEntity(claims)
}

// ParseForRefresh is like Parse but also accepts an expired token while it
// is still inside the refresh window. The signature is always checked.
func (m *Manager) ParseForRefresh(tokenStr string) (*entity.Token, error) {
	claims, err := m.parse(tokenStr)
	if err != nil && !onlyExpired(err) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	t, convErr := m.toEntity(claims)
	if convErr != nil {
		return nil, convErr
	}
	if err != nil && !m.now().Before(t.RefreshableUntil) {
		return nil, ErrRefreshWindowExpired
	}
	return t, nil
}

func (m *Manager) parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		// Check signing algorithm (only HMAC allowed)
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	return claims, err
}

// onlyExpired reports whether expiry is the sole reason validation failed.
// The validator joins every claim error, so an expired token with a foreign
// issuer must still be rejected.
func onlyExpired(err error) bool {
	if !errors.Is(err, jwt.ErrTokenExpired) {
		return false
	}
	for _, other := range []error{
		jwt.ErrTokenSignatureInvalid,
		jwt.ErrTokenInvalidIssuer,
		jwt.ErrTokenNotValidYet,
		jwt.ErrTokenUsedBeforeIssued,
		jwt.ErrTokenRequiredClaimMissing,
		jwt.ErrTokenMalformed,
	} {
		if errors.Is(err, other) {
			return false
		}
	}
	return true
}

func (m *Manager) toEntity(c *Claims) (*entity.Token, error) {
	userID, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil || userID == 0 {
		return nil, fmt.Errorf("%w: bad subject %q", ErrInvalidToken, c.Subject)
	}
	if c.ID == "" || c.IssuedAt == nil || c.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: missing jti, iat or exp", ErrInvalidToken)
	}

	orig := c.IssuedAt.Time
	if c.OrigIssuedAt != nil {
		orig = c.OrigIssuedAt.Time
	}
	return &entity.Token{
		ID:               c.ID,
		UserID:           uint(userID),
		Email:            c.Email,
		IssuedAt:         c.IssuedAt.Time,
		ExpiresAt:        c.ExpiresAt.Time,
		OriginalIssuedAt: orig,
		RefreshableUntil: orig.Add(m.refreshTTL),
	}, nil
}
