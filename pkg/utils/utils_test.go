package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionToken_RoundTrip(t *testing.T) {
	secret := []byte("0123456789abcdef")

	tok, err := SignSessionToken(secret, "sess-1", time.Now())
	require.NoError(t, err)

	id, err := ParseSessionToken(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", id)
}

func TestSessionToken_WrongSecret(t *testing.T) {
	tok, err := SignSessionToken([]byte("0123456789abcdef"), "sess-1", time.Now())
	require.NoError(t, err)

	_, err = ParseSessionToken([]byte("fedcba9876543210"), tok)
	assert.Error(t, err)
}

func TestSessionToken_Garbage(t *testing.T) {
	_, err := ParseSessionToken([]byte("0123456789abcdef"), "not-a-token")
	assert.Error(t, err)

	_, err = SignSessionToken(nil, "sess-1", time.Now())
	assert.Error(t, err)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("admin123")
	require.NoError(t, err)
	assert.NotEqual(t, "admin123", hash)

	assert.True(t, CheckPassword(hash, "admin123"))
	assert.False(t, CheckPassword(hash, "admin124"))
	assert.False(t, CheckPassword("not-a-hash", "admin123"))
}

func TestSessionToken_IgnoresIssuedAt(t *testing.T) {
	secret := []byte("0123456789abcdef")
	tok, err := SignSessionToken(secret, "sess-2", time.Now().Add(24*time.Hour))
	require.NoError(t, err)

	id, err := ParseSessionToken(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, "sess-2", id)
}
