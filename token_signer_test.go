package accounts_test

import (
	"testing"
	"time"

	accounts "github.com/goliatone/go-accounts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenSigner_IssueAndVerify(t *testing.T) {
	signer := accounts.NewTokenSigner("test-issuer", nil)
	secret := []byte("current-secret")

	t.Run("verifies a token under the issuing secret", func(t *testing.T) {
		token, err := signer.Issue("subject-1", accounts.TokenClaims{Username: "pepe"}, secret, time.Hour)
		require.NoError(t, err)
		require.NotEmpty(t, token)

		claims, err := signer.Verify(token, secret)
		require.NoError(t, err)
		assert.Equal(t, "subject-1", claims.Subject())
		assert.Equal(t, "pepe", claims.Username)
	})

	t.Run("rejects a token under any other secret", func(t *testing.T) {
		token, err := signer.Issue("subject-1", accounts.TokenClaims{}, secret, time.Hour)
		require.NoError(t, err)

		_, err = signer.Verify(token, []byte("rotated-secret"))
		assert.ErrorIs(t, err, accounts.ErrInvalidToken)
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		token, err := signer.Issue("subject-1", accounts.TokenClaims{}, secret, -time.Minute)
		require.NoError(t, err)

		_, err = signer.Verify(token, secret)
		assert.ErrorIs(t, err, accounts.ErrInvalidToken)
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		_, err := signer.Verify("not-a-token", secret)
		assert.ErrorIs(t, err, accounts.ErrInvalidToken)
	})

	t.Run("carries the proposed email on email change tokens", func(t *testing.T) {
		token, err := signer.Issue("subject-1", accounts.TokenClaims{NewEmail: "new@example.com"}, secret, time.Hour)
		require.NoError(t, err)

		claims, err := signer.Verify(token, secret)
		require.NoError(t, err)
		assert.Equal(t, "new@example.com", claims.NewEmail)
	})
}

func TestTokenSigner_Decode(t *testing.T) {
	signer := accounts.NewTokenSigner("test-issuer", nil)

	t.Run("reads claims without the secret", func(t *testing.T) {
		token, err := signer.Issue("subject-1", accounts.TokenClaims{Username: "pepe"}, []byte("whatever"), time.Hour)
		require.NoError(t, err)

		claims, err := signer.Decode(token)
		require.NoError(t, err)
		assert.Equal(t, "subject-1", claims.Subject())
		assert.Equal(t, "pepe", claims.Username)
	})

	t.Run("reads claims from an expired token", func(t *testing.T) {
		token, err := signer.Issue("subject-1", accounts.TokenClaims{}, []byte("whatever"), -time.Minute)
		require.NoError(t, err)

		claims, err := signer.Decode(token)
		require.NoError(t, err)
		assert.Equal(t, "subject-1", claims.Subject())
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		_, err := signer.Decode("garbage")
		assert.ErrorIs(t, err, accounts.ErrInvalidToken)
	})
}
