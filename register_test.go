package accounts_test

import (
	"context"
	"errors"
	"testing"

	accounts "github.com/goliatone/go-accounts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRegisterHandler(t *testing.T) {
	ctx := context.Background()

	payload := func() accounts.RegisterMessage {
		return accounts.RegisterMessage{
			Username: "pepe",
			Email:    "pepe@example.com",
			Password: "secret-password",
		}
	}

	t.Run("creates an unverified account with the default role", func(t *testing.T) {
		store := newMemStore()
		repo := newFakeRepoManager(store)
		notifier := &okNotifier{}
		lifecycle := accounts.NewLifecycle(store, notifier, newTestConfig())

		handler := accounts.NewRegisterHandler(repo, lifecycle)

		account, err := handler.Execute(ctx, payload())
		require.NoError(t, err)
		require.NotNil(t, account)

		assert.False(t, account.Verified)
		assert.Contains(t, account.RoleNames(), accounts.RoleUser)
		assert.NoError(t, accounts.ComparePasswordAndHash("secret-password", account.PasswordHash))
		assert.Len(t, notifier.verifyLinks, 1)
	})

	t.Run("derives the username from the email when absent", func(t *testing.T) {
		store := newMemStore()
		lifecycle := accounts.NewLifecycle(store, &okNotifier{}, newTestConfig())
		handler := accounts.NewRegisterHandler(newFakeRepoManager(store), lifecycle)

		msg := payload()
		msg.Username = ""

		account, err := handler.Execute(ctx, msg)
		require.NoError(t, err)
		assert.Equal(t, "pepe", account.Username)
	})

	t.Run("rejects a duplicate username", func(t *testing.T) {
		store := newMemStore()
		seedAccount(t, store, "pepe", "other@example.com", "secret-password", true)

		lifecycle := accounts.NewLifecycle(store, &okNotifier{}, newTestConfig())
		handler := accounts.NewRegisterHandler(newFakeRepoManager(store), lifecycle)

		_, err := handler.Execute(ctx, payload())
		assert.ErrorIs(t, err, accounts.ErrUsernameTaken)
		assert.True(t, accounts.IsConflict(err))
	})

	t.Run("rejects a duplicate email", func(t *testing.T) {
		store := newMemStore()
		seedAccount(t, store, "other", "pepe@example.com", "secret-password", true)

		lifecycle := accounts.NewLifecycle(store, &okNotifier{}, newTestConfig())
		handler := accounts.NewRegisterHandler(newFakeRepoManager(store), lifecycle)

		_, err := handler.Execute(ctx, payload())
		assert.ErrorIs(t, err, accounts.ErrEmailTaken)
	})

	t.Run("rejects an invalid payload before touching storage", func(t *testing.T) {
		store := newMemStore()
		lifecycle := accounts.NewLifecycle(store, &okNotifier{}, newTestConfig())
		handler := accounts.NewRegisterHandler(newFakeRepoManager(store), lifecycle)

		msg := payload()
		msg.Email = "not-an-email"

		_, err := handler.Execute(ctx, msg)
		assert.Error(t, err)

		records, err := store.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("rolls the account back when the mail cannot be delivered", func(t *testing.T) {
		store := newMemStore()
		notifier := &MockNotifier{}
		notifier.On("SendVerificationMail", mock.Anything, mock.Anything, mock.Anything).
			Return(errors.New("smtp down"))

		lifecycle := accounts.NewLifecycle(store, notifier, newTestConfig())
		handler := accounts.NewRegisterHandler(newFakeRepoManager(store), lifecycle)

		_, err := handler.Execute(ctx, payload())
		assert.ErrorIs(t, err, accounts.ErrMailDelivery)

		records, err := store.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, records, "failed signup must leave no account behind")
		notifier.AssertExpectations(t)
	})

	t.Run("a rolled back signup can retry", func(t *testing.T) {
		store := newMemStore()
		notifier := &MockNotifier{}
		notifier.On("SendVerificationMail", mock.Anything, mock.Anything, mock.Anything).
			Return(errors.New("smtp down")).Once()
		notifier.On("SendVerificationMail", mock.Anything, mock.Anything, mock.Anything).
			Return(nil).Once()

		lifecycle := accounts.NewLifecycle(store, notifier, newTestConfig())
		handler := accounts.NewRegisterHandler(newFakeRepoManager(store), lifecycle)

		_, err := handler.Execute(ctx, payload())
		require.ErrorIs(t, err, accounts.ErrMailDelivery)

		account, err := handler.Execute(ctx, payload())
		require.NoError(t, err)
		assert.Equal(t, "pepe", account.Username)
		notifier.AssertExpectations(t)
	})
}
