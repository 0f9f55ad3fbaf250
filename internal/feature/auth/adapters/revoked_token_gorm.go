package adapters

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"auth_backend/internal/feature/auth/usecase"
)

// revokedTokenGorm is a SQL implementation of the RevocationStore interface.
// It is used when Redis is not available.
type revokedTokenGorm struct {
	db *gorm.DB
}

// Compile-time check to ensure revokedTokenGorm implements RevocationStore.
var _ usecase.RevocationStore = (*revokedTokenGorm)(nil)

// NewRevokedTokenGorm creates a new instance of revokedTokenGorm.
func NewRevokedTokenGorm(db *gorm.DB) *revokedTokenGorm {
	return &revokedTokenGorm{db: db}
}

// Revoke records the token ID. Revoking the same ID twice keeps the first row.
func (r *revokedTokenGorm) Revoke(ctx context.Context, tokenID string, userID uint, until time.Time) error {
	model := &RevokedTokenModel{
		TokenID:   tokenID,
		UserID:    userID,
		ExpiresAt: until,
		CreatedAt: time.Now(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(model).Error
}

// IsRevoked reports whether an unexpired revocation row exists for the token ID.
func (r *revokedTokenGorm) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&RevokedTokenModel{}).
		Where("token_id = ? AND expires_at > ?", tokenID, time.Now()).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// DeleteExpired removes revocation rows whose tokens can no longer be used.
// Returns the number of deleted rows.
func (r *revokedTokenGorm) DeleteExpired(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", time.Now()).
		Delete(&RevokedTokenModel{})
	return result.RowsAffected, result.Error
}
