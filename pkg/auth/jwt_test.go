package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePairRoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", 15*time.Minute, 7*24*time.Hour, "agenda-api")
	userID := uuid.New()

	pair, err := svc.GeneratePair(userID, "owner@studio.test")
	require.NoError(t, err)
	assert.Equal(t, int64(900), pair.ExpiresIn)

	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "owner@studio.test", claims.Email)
	assert.Equal(t, "agenda-api", claims.Issuer)

	claims, err = svc.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
}

func TestTokenTypesAreNotInterchangeable(t *testing.T) {
	svc := NewJWTService("test-secret", 15*time.Minute, 7*24*time.Hour, "agenda-api")

	pair, err := svc.GeneratePair(uuid.New(), "owner@studio.test")
	require.NoError(t, err)

	_, err = svc.ValidateRefreshToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrWrongType)

	_, err = svc.ValidateAccessToken(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrWrongType)
}

func TestExpiredTokenRejected(t *testing.T) {
	svc := NewJWTService("test-secret", -time.Minute, 7*24*time.Hour, "agenda-api")

	pair, err := svc.GeneratePair(uuid.New(), "owner@studio.test")
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestForeignSignatureRejected(t *testing.T) {
	issuing := NewJWTService("secret-one", 15*time.Minute, time.Hour, "agenda-api")
	validating := NewJWTService("secret-two", 15*time.Minute, time.Hour, "agenda-api")

	pair, err := issuing.GeneratePair(uuid.New(), "owner@studio.test")
	require.NoError(t, err)

	_, err = validating.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
