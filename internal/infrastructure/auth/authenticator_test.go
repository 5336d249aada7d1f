package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	a := NewAuthenticator("test-secret", "dormdrop", time.Hour)

	token, err := a.GenerateToken("user-123", "jdoe")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := a.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "jdoe", claims.Username)
	assert.Equal(t, "dormdrop", claims.Issuer)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	a := NewAuthenticator("secret-one", "dormdrop", time.Hour)
	b := NewAuthenticator("secret-two", "dormdrop", time.Hour)

	token, err := a.GenerateToken("user-123", "")
	require.NoError(t, err)

	_, err = b.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateExpiredToken(t *testing.T) {
	a := NewAuthenticator("test-secret", "dormdrop", -time.Minute)

	token, err := a.GenerateToken("user-123", "")
	require.NoError(t, err)

	_, err = a.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateGarbageToken(t *testing.T) {
	a := NewAuthenticator("test-secret", "dormdrop", time.Hour)

	_, err := a.ValidateToken("not-a-token")
	assert.Error(t, err)
}
