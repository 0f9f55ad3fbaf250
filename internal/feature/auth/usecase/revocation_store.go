package usecase

import (
	"context"
	"time"
)

// RevocationStore abstracts the token revocation list (denylist).
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type RevocationStore interface {
	// Revoke records the token ID as revoked until the given time.
	// Revoking an already revoked ID is not an error.
	Revoke(ctx context.Context, tokenID string, userID uint, until time.Time) error

	// IsRevoked reports whether the token ID is currently revoked.
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
