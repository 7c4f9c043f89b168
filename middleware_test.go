package accounts_test

import (
	"testing"

	accounts "github.com/goliatone/go-accounts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBearerToken(t *testing.T) {
	t.Run("extracts the token after the scheme", func(t *testing.T) {
		token, err := accounts.ParseBearerToken("Bearer abc.def.ghi")
		require.NoError(t, err)
		assert.Equal(t, "abc.def.ghi", token)
	})

	t.Run("matches the scheme case-insensitively", func(t *testing.T) {
		token, err := accounts.ParseBearerToken("bearer abc.def.ghi")
		require.NoError(t, err)
		assert.Equal(t, "abc.def.ghi", token)
	})

	t.Run("requires a space after the scheme", func(t *testing.T) {
		_, err := accounts.ParseBearerToken("Bearerabc.def.ghi")
		assert.ErrorIs(t, err, accounts.ErrInvalidToken)
	})

	t.Run("rejects an empty header", func(t *testing.T) {
		_, err := accounts.ParseBearerToken("")
		assert.ErrorIs(t, err, accounts.ErrInvalidToken)
	})

	t.Run("rejects a scheme with no credentials", func(t *testing.T) {
		_, err := accounts.ParseBearerToken("Bearer ")
		assert.ErrorIs(t, err, accounts.ErrInvalidToken)
	})

	t.Run("rejects other schemes", func(t *testing.T) {
		_, err := accounts.ParseBearerToken("Basic dXNlcjpwYXNz")
		assert.ErrorIs(t, err, accounts.ErrInvalidToken)
	})
}
