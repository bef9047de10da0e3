package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret string, subject string, role string, expiry time.Time) string {
	t.Helper()
	claims := adminClaims{
		Subject: subject,
		Role:    role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiry),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestAdminJWTValidator_ValidToken(t *testing.T) {
	validator := NewAdminJWTValidator("test-secret")
	token := signToken(t, "test-secret", "operator-1", "admin", time.Now().Add(time.Hour))

	identity, err := validator.ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "operator-1", identity.UserID)
	assert.Equal(t, "admin", identity.Role)
}

func TestAdminJWTValidator_DefaultsToUserRole(t *testing.T) {
	validator := NewAdminJWTValidator("test-secret")
	token := signToken(t, "test-secret", "operator-1", "", time.Now().Add(time.Hour))

	identity, err := validator.ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "user", identity.Role)
}

func TestAdminJWTValidator_ExpiredToken(t *testing.T) {
	validator := NewAdminJWTValidator("test-secret")
	token := signToken(t, "test-secret", "operator-1", "admin", time.Now().Add(-time.Hour))

	_, err := validator.ValidateJWT(token)
	assert.Error(t, err)
}

func TestAdminJWTValidator_WrongSecret(t *testing.T) {
	validator := NewAdminJWTValidator("test-secret")
	token := signToken(t, "other-secret", "operator-1", "admin", time.Now().Add(time.Hour))

	_, err := validator.ValidateJWT(token)
	assert.Error(t, err)
}
