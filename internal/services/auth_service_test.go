package services_test

import (
	"testing"
	"time"

	"productapi/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService_IssueAndValidate(t *testing.T) {
	tokens := services.NewTokenService("test_jwt_secret", time.Hour)

	token, err := tokens.IssueToken("catalog-admin")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := tokens.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "catalog-admin", claims["sub"])

	_, err = tokens.IssueToken("")
	assert.Error(t, err)
}

func TestTokenService_ValidateToken(t *testing.T) {
	tokens := services.NewTokenService("test_jwt_secret", time.Hour)

	// Malformed token
	_, err := tokens.ValidateToken("invalid.token.string")
	assert.ErrorContains(t, err, "invalid token")

	// Wrong secret
	other := services.NewTokenService("another_secret", time.Hour)
	foreign, err := other.IssueToken("intruder")
	require.NoError(t, err)
	_, err = tokens.ValidateToken(foreign)
	assert.ErrorContains(t, err, "invalid token")

	// Expired token
	expiredToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "catalog-admin",
		"exp": jwt.TimeFunc().Add(-time.Hour).Unix(),
	})
	expiredTokenString, err := expiredToken.SignedString([]byte("test_jwt_secret"))
	require.NoError(t, err)
	_, err = tokens.ValidateToken(expiredTokenString)
	assert.ErrorContains(t, err, "invalid token")
}
