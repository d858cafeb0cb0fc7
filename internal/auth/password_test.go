package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("pw12345678", bcrypt.MinCost)
	require.NoError(t, err)
	require.NotEqual(t, "pw12345678", hash)

	assert.True(t, ComparePassword(hash, "pw12345678"))
	assert.False(t, ComparePassword(hash, "pw12345679"))
	assert.False(t, ComparePassword(hash, ""))
}

func TestHashPasswordSalted(t *testing.T) {
	first, err := HashPassword("same-password", bcrypt.MinCost)
	require.NoError(t, err)
	second, err := HashPassword("same-password", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, ComparePassword(first, "same-password"))
	assert.True(t, ComparePassword(second, "same-password"))
}

func TestHashPasswordTooLong(t *testing.T) {
	// bcrypt caps input at 72 bytes.
	_, err := HashPassword(strings.Repeat("x", 100), bcrypt.MinCost)
	assert.Error(t, err)
}

func TestComparePasswordMalformedHash(t *testing.T) {
	assert.False(t, ComparePassword("not-a-bcrypt-hash", "pw12345678"))
	assert.False(t, ComparePassword("", "pw12345678"))
}
