package adapters

import "time"

// RevokedTokenModel is the GORM model for the revoked_tokens table.
type RevokedTokenModel struct {
	TokenID   string    `gorm:"primaryKey;size:36"` // jti (UUID)
	UserID    uint      `gorm:"index;not null"`
	ExpiresAt time.Time `gorm:"index;not null"` // row can be pruned after this
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM.
func (RevokedTokenModel) TableName() string {
	return "revoked_tokens"
}
