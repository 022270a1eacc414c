package selfhosted

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, version, err := HashPassword("correct horse battery")
	require.NoError(t, err)
	assert.Equal(t, HashVersionBcrypt, version)

	assert.NoError(t, VerifyPassword(hash, "correct horse battery"))
	assert.Error(t, VerifyPassword(hash, "wrong password"))
}

func TestHashPasswordTooShort(t *testing.T) {
	_, _, err := HashPassword("short")
	require.Error(t, err)
}

func TestNewTokenIsUnique(t *testing.T) {
	a, err := NewToken()
	require.NoError(t, err)
	b, err := NewToken()
	require.NoError(t, err)

	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
