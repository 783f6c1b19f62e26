package auth

import (
	"context"
	"time"
)

// RevocationStore persists revoked token ids.
type RevocationStore interface {
	RevokeToken(ctx context.Context, jti string, userID uint, expiresAt time.Time, reason string) error
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
	CleanupExpiredTokens(ctx context.Context) (int64, error)
}

// BlacklistService handles JWT token revocation
type BlacklistService struct {
	store RevocationStore
}

// NewBlacklistService creates a new blacklist service
func NewBlacklistService(store RevocationStore) *BlacklistService {
	return &BlacklistService{store: store}
}

// Revoke blacklists the token behind claims until it would have expired anyway.
func (s *BlacklistService) Revoke(ctx context.Context, claims *Claims, reason string) error {
	expiresAt := time.Now()
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	return s.store.RevokeToken(ctx, claims.ID, claims.UserID, expiresAt, reason)
}

// IsRevoked checks if a token id is in the blacklist
func (s *BlacklistService) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return s.store.IsTokenRevoked(ctx, jti)
}

// Cleanup removes expired entries from the blacklist
func (s *BlacklistService) Cleanup(ctx context.Context) (int64, error) {
	return s.store.CleanupExpiredTokens(ctx)
}
