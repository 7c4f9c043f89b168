package accounts_test

import (
	"encoding/json"
	"testing"
	"time"

	accounts "github.com/goliatone/go-accounts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccount_Serialization(t *testing.T) {
	now := time.Now()
	account := &accounts.Account{
		ID:           uuid.New(),
		Username:     "pepe",
		Email:        "pepe@example.com",
		PasswordHash: "$argon2id$secret",
		Verified:     true,
		Roles:        []*accounts.Role{{Name: accounts.RoleUser}},
		CreatedAt:    &now,
	}

	t.Run("the model itself serializes to nothing", func(t *testing.T) {
		raw, err := json.Marshal(account)
		require.NoError(t, err)
		assert.Equal(t, "{}", string(raw))
	})

	t.Run("the public projection never carries the password hash", func(t *testing.T) {
		raw, err := json.Marshal(account.Public())
		require.NoError(t, err)

		assert.NotContains(t, string(raw), "argon2id")
		assert.NotContains(t, string(raw), "password")
		assert.Contains(t, string(raw), "pepe@example.com")
	})

	t.Run("the public projection keeps the role names", func(t *testing.T) {
		public := account.Public()
		assert.Equal(t, []accounts.RoleName{accounts.RoleUser}, public.Roles)
		assert.Equal(t, account.ID.String(), public.ID)
		assert.True(t, public.Verified)
	})
}
