package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahilchouksey/course-catalog/model"
)

func testManager(expiry time.Duration) *JWTManager {
	return NewJWTManager(JWTConfig{Secret: "test-secret", Expiry: expiry, RefreshExpiry: time.Hour, Issuer: "test"})
}

func testUser() *model.User {
	return &model.User{ID: 4, Email: "ada@example.com", AccessGroup: model.GroupAdmin, TokenVersion: 2}
}

func TestTokenPairRoundTrip(t *testing.T) {
	m := testManager(time.Minute)
	pair, err := m.GeneratePair(testUser())
	require.NoError(t, err)

	claims, err := m.ValidateTokenOfType(pair.AccessToken, TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, uint(4), claims.UserID)
	assert.Equal(t, model.GroupAdmin, claims.Group)
	assert.Equal(t, 2, claims.TokenVersion)
	assert.NotEmpty(t, claims.ID)

	refresh, err := m.ValidateTokenOfType(pair.RefreshToken, TokenTypeRefresh)
	require.NoError(t, err)
	assert.NotEqual(t, claims.ID, refresh.ID)

	_, err = m.ValidateTokenOfType(pair.RefreshToken, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsForeignSecretAndExpiry(t *testing.T) {
	token, _, err := testManager(time.Minute).GenerateAccessToken(testUser())
	require.NoError(t, err)

	other := NewJWTManager(JWTConfig{Secret: "other"})
	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, _, err := testManager(-time.Minute).generate(testUser(), TokenTypeAccess, -time.Minute)
	require.NoError(t, err)
	_, err = testManager(time.Minute).ValidateToken(expired)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestPasswordHashing(t *testing.T) {
	Cost = 4
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.NoError(t, VerifyPassword(hash, "correct horse"))
	assert.ErrorIs(t, VerifyPassword(hash, "wrong horse"), ErrPasswordMismatch)

	_, err = HashPassword("short")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

type memoryRevocations map[string]time.Time

func (m memoryRevocations) RevokeToken(_ context.Context, jti string, _ uint, expiresAt time.Time, _ string) error {
	m[jti] = expiresAt
	return nil
}

func (m memoryRevocations) IsTokenRevoked(_ context.Context, jti string) (bool, error) {
	exp, ok := m[jti]
	return ok && exp.After(time.Now()), nil
}

func (m memoryRevocations) CleanupExpiredTokens(context.Context) (int64, error) {
	var n int64
	for jti, exp := range m {
		if !exp.After(time.Now()) {
			delete(m, jti)
			n++
		}
	}
	return n, nil
}

func TestBlacklistRevokeUsesTokenExpiry(t *testing.T) {
	store := memoryRevocations{}
	svc := NewBlacklistService(store)
	m := testManager(time.Minute)

	token, _, err := m.GenerateAccessToken(testUser())
	require.NoError(t, err)
	claims, err := m.ValidateToken(token)
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(context.Background(), claims, "logout"))
	revoked, err := svc.IsRevoked(context.Background(), claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.WithinDuration(t, claims.ExpiresAt.Time, store[claims.ID], time.Second)

	store["stale"] = time.Now().Add(-time.Hour)
	n, err := svc.Cleanup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
