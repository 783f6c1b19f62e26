package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sahilchouksey/course-catalog/model"
)

// RevokeToken blacklists a token id until it expires. Revoking the same id
// twice is not an error.
func (r *Repository) RevokeToken(ctx context.Context, jti string, userID uint, expiresAt time.Time, reason string) error {
	entry := model.JWTTokenBlacklist{
		Token:     jti,
		UserID:    userID,
		Reason:    reason,
		ExpiresAt: expiresAt,
	}
	return r.run(ctx, func(db *gorm.DB) error {
		entry.ID = 0
		return db.Omit(clause.Associations).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "token"}}, DoNothing: true}).
			Create(&entry).Error
	})
}

// IsTokenRevoked reports whether jti is blacklisted and not yet expired.
func (r *Repository) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	var revoked bool
	err := r.run(ctx, func(db *gorm.DB) error {
		found, err := exists(db, "SELECT 1 FROM jwt_token_blacklist WHERE token = ? AND expires_at > ?", jti, time.Now())
		revoked = found
		return err
	})
	return revoked, err
}

// CleanupExpiredTokens removes blacklist entries past their expiry and
// returns how many were removed.
func (r *Repository) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	var removed int64
	err := r.run(ctx, func(db *gorm.DB) error {
		res := db.Where("expires_at < ?", time.Now()).Delete(&model.JWTTokenBlacklist{})
		removed = res.RowsAffected
		return res.Error
	})
	return removed, err
}
