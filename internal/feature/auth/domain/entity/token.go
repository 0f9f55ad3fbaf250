package entity

import "time"

// Token is the verified content of a signed access token.
// Tokens are stateless: validity comes from the signature and the time
// fields below, plus an optional revocation list keyed by ID.
type Token struct {
	ID               string    // jti claim (UUID)
	UserID           uint      // sub claim
	Email            string    // email claim
	IssuedAt         time.Time // iat claim
	ExpiresAt        time.Time // exp claim
	OriginalIssuedAt time.Time // orig_iat claim, carried over on refresh
	RefreshableUntil time.Time // OriginalIssuedAt + refresh TTL
}

// IsExpired returns true if the token has passed its expiration time.
func (t *Token) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}

// CanRefresh returns true while the token is still inside its refresh window.
func (t *Token) CanRefresh() bool {
	return time.Now().Before(t.RefreshableUntil)
}
