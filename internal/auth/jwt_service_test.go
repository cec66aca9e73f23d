package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestJWTServiceRoundTrip(t *testing.T) {
	svc, err := NewJWTService(JWTConfig{Secret: "test-secret", Issuer: "flightdeck"})
	require.NoError(t, err)

	token, err := svc.GenerateAccessToken(AccessTokenInput{
		UserID:      "user-1",
		Username:    "pilot",
		DisplayName: "Test Pilot",
	})
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UserID)
	require.Equal(t, "pilot", claims.Username)
	require.Equal(t, "Test Pilot", claims.DisplayName)
	require.Equal(t, "flightdeck", claims.Issuer)
}

func TestJWTServiceRejectsExpiredToken(t *testing.T) {
	issuedAt := time.Now().Add(-2 * time.Hour)
	issuer, err := NewJWTService(JWTConfig{
		Secret:         "test-secret",
		AccessTokenTTL: time.Hour,
		Clock:          func() time.Time { return issuedAt },
	})
	require.NoError(t, err)

	token, err := issuer.GenerateAccessToken(AccessTokenInput{UserID: "user-1"})
	require.NoError(t, err)

	validator, err := NewJWTService(JWTConfig{Secret: "test-secret"})
	require.NoError(t, err)

	_, err = validator.ValidateAccessToken(token)
	require.Error(t, err)
}

func TestJWTServiceRejectsWrongSecret(t *testing.T) {
	svc, err := NewJWTService(JWTConfig{Secret: "test-secret"})
	require.NoError(t, err)

	token, err := svc.GenerateAccessToken(AccessTokenInput{UserID: "user-1"})
	require.NoError(t, err)

	other, err := NewJWTService(JWTConfig{Secret: "different-secret"})
	require.NoError(t, err)

	_, err = other.ValidateAccessToken(token)
	require.Error(t, err)
}

func TestJWTServiceRejectsWrongIssuer(t *testing.T) {
	svc, err := NewJWTService(JWTConfig{Secret: "test-secret", Issuer: "other"})
	require.NoError(t, err)

	token, err := svc.GenerateAccessToken(AccessTokenInput{UserID: "user-1"})
	require.NoError(t, err)

	strict, err := NewJWTService(JWTConfig{Secret: "test-secret", Issuer: "flightdeck"})
	require.NoError(t, err)

	_, err = strict.ValidateAccessToken(token)
	require.Error(t, err)
}

func TestNewJWTServiceRequiresSecret(t *testing.T) {
	_, err := NewJWTService(JWTConfig{})
	require.Error(t, err)
}
