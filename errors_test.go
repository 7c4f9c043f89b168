package accounts_test

import (
	"fmt"
	"testing"

	accounts "github.com/goliatone/go-accounts"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	t.Run("IsInvalidToken", func(t *testing.T) {
		assert.True(t, accounts.IsInvalidToken(accounts.ErrInvalidToken))
		assert.False(t, accounts.IsInvalidToken(accounts.ErrAccountNotFound))
		assert.False(t, accounts.IsInvalidToken(nil))
	})

	t.Run("IsConflict covers both uniqueness violations", func(t *testing.T) {
		assert.True(t, accounts.IsConflict(accounts.ErrUsernameTaken))
		assert.True(t, accounts.IsConflict(accounts.ErrEmailTaken))
		assert.False(t, accounts.IsConflict(accounts.ErrInvalidToken))
	})

	t.Run("IsNotFound matches wrapped categories", func(t *testing.T) {
		assert.True(t, accounts.IsNotFound(accounts.ErrAccountNotFound))
		assert.True(t, accounts.IsNotFound(goerrors.New("missing", goerrors.CategoryNotFound)))
		assert.False(t, accounts.IsNotFound(fmt.Errorf("plain error")))
	})

	t.Run("lifecycle errors carry stable text codes", func(t *testing.T) {
		assert.Equal(t, accounts.TextCodeInvalidToken, accounts.ErrInvalidToken.TextCode)
		assert.Equal(t, accounts.TextCodeInvalidCreds, accounts.ErrInvalidCredentials.TextCode)
		assert.Equal(t, accounts.TextCodeMailDelivery, accounts.ErrMailDelivery.TextCode)
		assert.Equal(t, accounts.TextCodeNotVerified, accounts.ErrNotVerified.TextCode)
	})
}
