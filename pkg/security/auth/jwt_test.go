package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShakirYasin/exact-sol-test/pkg/config"
)

func newTestService(expiryHours int) *JWTService {
	return NewJWTService(&config.Config{
		Auth: config.AuthConfig{
			JWTSecret:      "test-secret",
			JWTExpiryHours: expiryHours,
			JWTIssuer:      "test",
		},
	})
}

func TestGenerateAndValidateToken(t *testing.T) {
	svc := newTestService(24)
	userID := uuid.New()

	token, err := svc.GenerateToken(userID, "alice@x.com", "admin")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "alice@x.com", claims.Email)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	svc := newTestService(24)

	token, err := svc.GenerateToken(uuid.New(), "bob@x.com", "user")
	require.NoError(t, err)

	_, err = ValidateToken(token, "other-secret")
	assert.Error(t, err)
}

func TestValidateTokenGarbage(t *testing.T) {
	_, err := ValidateToken("not-a-token", "test-secret")
	assert.Error(t, err)
}

func TestTokenBlacklist(t *testing.T) {
	bl := NewTokenBlacklist()

	assert.False(t, bl.IsBlacklisted("tok"))

	bl.Add("tok", time.Now().Add(time.Hour))
	assert.True(t, bl.IsBlacklisted("tok"))

	// An expired entry is purged on the next Add.
	bl.Add("old", time.Now().Add(-time.Hour))
	bl.Add("tok2", time.Now().Add(time.Hour))
	assert.False(t, bl.IsBlacklisted("old"))
	assert.True(t, bl.IsBlacklisted("tok2"))
}
