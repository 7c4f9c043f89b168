package accounts

import (
	"context"

	"github.com/goliatone/go-errors"
)

// AccountFinder is the store surface identity verification needs
type AccountFinder interface {
	ByIdentifier(ctx context.Context, identifier string) (*Account, error)
}

// AccountProvider resolves identities from the account store
type AccountProvider struct {
	store  AccountFinder
	logger Logger
}

var _ IdentityProvider = (*AccountProvider)(nil)

// NewAccountProvider will create a new AccountProvider
func NewAccountProvider(store AccountFinder) *AccountProvider {
	return &AccountProvider{
		store:  store,
		logger: defLogger{},
	}
}

// WithLogger overrides the logger used by the provider
func (p *AccountProvider) WithLogger(logger Logger) *AccountProvider {
	if logger != nil {
		p.logger = logger
	}
	return p
}

// VerifyIdentity finds the account, compares the password, and returns the
// identity. An unknown identifier and a wrong password produce the same
// error; distinguishing them would let callers enumerate accounts.
func (p *AccountProvider) VerifyIdentity(ctx context.Context, identifier, password string) (Identity, error) {
	account, err := p.store.ByIdentifier(ctx, identifier)
	if err != nil {
		if IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve account during verification")
	}

	if err := ComparePasswordAndHash(password, account.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}

	return newIdentity(account), nil
}

// FindIdentityByIdentifier resolves an identity without checking a password
func (p *AccountProvider) FindIdentityByIdentifier(ctx context.Context, identifier string) (Identity, error) {
	account, err := p.store.ByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}

	return newIdentity(account), nil
}

type accountIdentity struct {
	id       string
	username string
	email    string
	roles    []RoleName
	verified bool
}

var _ Identity = accountIdentity{}

func newIdentity(account *Account) accountIdentity {
	return accountIdentity{
		id:       account.ID.String(),
		username: account.Username,
		email:    account.Email,
		roles:    account.RoleNames(),
		verified: account.Verified,
	}
}

func (a accountIdentity) ID() string {
	return a.id
}

func (a accountIdentity) Username() string {
	return a.username
}

func (a accountIdentity) Email() string {
	return a.email
}

func (a accountIdentity) Roles() []RoleName {
	return a.roles
}

func (a accountIdentity) Verified() bool {
	return a.verified
}
