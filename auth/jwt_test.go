package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	t.Parallel()

	m := NewJWTManager("test-secret", time.Hour)

	token, err := m.GenerateToken("admin")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
}

func TestExpiredTokenRejected(t *testing.T) {
	t.Parallel()

	m := NewJWTManager("test-secret", -time.Minute)

	token, err := m.GenerateToken("admin")
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.Error(t, err)
}

func TestWrongSecretRejected(t *testing.T) {
	t.Parallel()

	token, err := NewJWTManager("secret-a", time.Hour).GenerateToken("admin")
	require.NoError(t, err)

	_, err = NewJWTManager("secret-b", time.Hour).ValidateToken(token)
	assert.Error(t, err)
}

func TestGarbageTokenRejected(t *testing.T) {
	t.Parallel()

	m := NewJWTManager("test-secret", time.Hour)
	_, err := m.ValidateToken("not.a.token")
	assert.Error(t, err)
}
