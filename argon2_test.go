package accounts_test

import (
	"strings"
	"testing"

	accounts "github.com/goliatone/go-accounts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	t.Run("produces an encoded argon2id hash", func(t *testing.T) {
		hash, err := accounts.HashPassword("secret-password")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(hash, "$argon2id$"))
	})

	t.Run("salts every hash", func(t *testing.T) {
		first, err := accounts.HashPassword("secret-password")
		require.NoError(t, err)

		second, err := accounts.HashPassword("secret-password")
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
	})

	t.Run("rejects an empty password", func(t *testing.T) {
		_, err := accounts.HashPassword("")
		assert.ErrorIs(t, err, accounts.ErrNoEmptyPassword)
	})
}

func TestComparePasswordAndHash(t *testing.T) {
	hash, err := accounts.HashPassword("secret-password")
	require.NoError(t, err)

	t.Run("accepts the original password", func(t *testing.T) {
		assert.NoError(t, accounts.ComparePasswordAndHash("secret-password", hash))
	})

	t.Run("rejects a wrong password", func(t *testing.T) {
		err := accounts.ComparePasswordAndHash("wrong-password", hash)
		assert.ErrorIs(t, err, accounts.ErrInvalidCredentials)
	})

	t.Run("rejects a malformed hash", func(t *testing.T) {
		err := accounts.ComparePasswordAndHash("secret-password", "not-a-hash")
		assert.ErrorIs(t, err, accounts.ErrInvalidCredentials)
	})
}

func TestRandomPasswordHash(t *testing.T) {
	hash := accounts.RandomPasswordHash()
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))
}
