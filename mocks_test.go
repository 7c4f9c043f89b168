package accounts_test

import (
	"context"
	"database/sql"
	"sync"
	"time"

	accounts "github.com/goliatone/go-accounts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

// memStore is an in-memory Accounts implementation backing the flow tests
type memStore struct {
	mu      sync.Mutex
	records map[uuid.UUID]*accounts.Account
}

var _ accounts.Accounts = (*memStore)(nil)

func newMemStore(records ...*accounts.Account) *memStore {
	s := &memStore{records: map[uuid.UUID]*accounts.Account{}}
	for _, record := range records {
		if record.ID == uuid.Nil {
			record.ID = uuid.New()
		}
		s.records[record.ID] = record
	}
	return s
}

func (s *memStore) ByID(ctx context.Context, id uuid.UUID) (*accounts.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[id]
	if !ok {
		return nil, accounts.ErrAccountNotFound
	}
	return copyAccount(record), nil
}

func (s *memStore) ByUsername(ctx context.Context, username string) (*accounts.Account, error) {
	return s.find(func(a *accounts.Account) bool { return a.Username == username })
}

func (s *memStore) ByEmail(ctx context.Context, email string) (*accounts.Account, error) {
	return s.find(func(a *accounts.Account) bool { return a.Email == email })
}

func (s *memStore) ByIdentifier(ctx context.Context, identifier string) (*accounts.Account, error) {
	if id, err := uuid.Parse(identifier); err == nil {
		return s.ByID(ctx, id)
	}
	if record, err := s.ByUsername(ctx, identifier); err == nil {
		return record, nil
	}
	return s.ByEmail(ctx, identifier)
}

func (s *memStore) Register(ctx context.Context, record *accounts.Account) (*accounts.Account, error) {
	if _, err := s.ByUsername(ctx, record.Username); err == nil {
		return nil, accounts.ErrUsernameTaken
	}
	if _, err := s.ByEmail(ctx, record.Email); err == nil {
		return nil, accounts.ErrEmailTaken
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	s.records[record.ID] = copyAccount(record)

	return copyAccount(record), nil
}

func (s *memStore) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return s.update(id, func(a *accounts.Account) { a.PasswordHash = passwordHash })
}

func (s *memStore) UpdateEmail(ctx context.Context, id uuid.UUID, email string) error {
	return s.update(id, func(a *accounts.Account) { a.Email = email })
}

func (s *memStore) MarkVerified(ctx context.Context, id uuid.UUID) error {
	return s.update(id, func(a *accounts.Account) { a.Verified = true })
}

func (s *memStore) Remove(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return accounts.ErrAccountNotFound
	}
	delete(s.records, id)
	return nil
}

func (s *memStore) UpdateProfile(ctx context.Context, id uuid.UUID, update accounts.ProfileUpdate) (*accounts.Account, error) {
	err := s.update(id, func(a *accounts.Account) {
		if update.Name != nil {
			a.Name = *update.Name
		}
		if update.Surname != nil {
			a.Surname = *update.Surname
		}
		if update.Birthdate != nil {
			a.Birthdate = update.Birthdate
		}
		if update.Avatar != nil {
			a.Avatar = *update.Avatar
		}
	})
	if err != nil {
		return nil, err
	}
	return s.ByID(ctx, id)
}

func (s *memStore) UpdateUsername(ctx context.Context, id uuid.UUID, username string) (*accounts.Account, error) {
	if _, err := s.ByUsername(ctx, username); err == nil {
		return nil, accounts.ErrUsernameTaken
	}
	if err := s.update(id, func(a *accounts.Account) { a.Username = username }); err != nil {
		return nil, err
	}
	return s.ByID(ctx, id)
}

func (s *memStore) List(ctx context.Context) ([]*accounts.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*accounts.Account, 0, len(s.records))
	for _, record := range s.records {
		out = append(out, copyAccount(record))
	}
	return out, nil
}

func (s *memStore) find(match func(*accounts.Account) bool) (*accounts.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range s.records {
		if match(record) {
			return copyAccount(record), nil
		}
	}
	return nil, accounts.ErrAccountNotFound
}

func (s *memStore) update(id uuid.UUID, apply func(*accounts.Account)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[id]
	if !ok {
		return accounts.ErrAccountNotFound
	}
	apply(record)
	return nil
}

func copyAccount(record *accounts.Account) *accounts.Account {
	cp := *record
	return &cp
}

// MockNotifier implements accounts.Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendVerificationMail(ctx context.Context, account *accounts.Account, link string) error {
	args := m.Called(ctx, account, link)
	return args.Error(0)
}

func (m *MockNotifier) SendPasswordResetMail(ctx context.Context, account *accounts.Account, link string) error {
	args := m.Called(ctx, account, link)
	return args.Error(0)
}

func (m *MockNotifier) SendEmailChangeMail(ctx context.Context, email, link string) error {
	args := m.Called(ctx, email, link)
	return args.Error(0)
}

// okNotifier accepts every delivery and remembers the last link per flow
type okNotifier struct {
	mu              sync.Mutex
	verifyLinks     []string
	resetLinks      []string
	emailLinks      []string
	lastEmailChange string
}

func (n *okNotifier) SendVerificationMail(ctx context.Context, account *accounts.Account, link string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.verifyLinks = append(n.verifyLinks, link)
	return nil
}

func (n *okNotifier) SendPasswordResetMail(ctx context.Context, account *accounts.Account, link string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.resetLinks = append(n.resetLinks, link)
	return nil
}

func (n *okNotifier) SendEmailChangeMail(ctx context.Context, email, link string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.emailLinks = append(n.emailLinks, link)
	n.lastEmailChange = email
	return nil
}

// testConfig implements accounts.Config with fixed values
type testConfig struct {
	signingKey string
}

func newTestConfig() *testConfig {
	return &testConfig{signingKey: "test-signing-key"}
}

func (c *testConfig) GetSigningKey() string              { return c.signingKey }
func (c *testConfig) GetIssuer() string                  { return "test-issuer" }
func (c *testConfig) GetAudience() []string              { return []string{"test-audience"} }
func (c *testConfig) GetTokenExpiration() int            { return 24 }
func (c *testConfig) GetVerificationTTL() time.Duration  { return time.Hour }
func (c *testConfig) GetPasswordResetTTL() time.Duration { return time.Hour }
func (c *testConfig) GetEmailChangeTTL() time.Duration   { return time.Hour }
func (c *testConfig) GetVerifyLink() string              { return "https://example.com/verify" }
func (c *testConfig) GetResetPasswordLink() string       { return "https://example.com/reset-password" }
func (c *testConfig) GetChangeEmailLink() string         { return "https://example.com/change-email" }
func (c *testConfig) GetServiceName() string             { return "accounts-test" }
func (c *testConfig) GetSMTPHost() string                { return "localhost" }
func (c *testConfig) GetSMTPPort() int                   { return 1025 }
func (c *testConfig) GetSMTPUsername() string            { return "" }
func (c *testConfig) GetSMTPPassword() string            { return "" }
func (c *testConfig) GetMailFrom() string                { return "no-reply@example.com" }

// fakeRoles is an in-memory Roles implementation
type fakeRoles struct {
	mu    sync.Mutex
	roles map[accounts.RoleName]*accounts.Role
}

var _ accounts.Roles = (*fakeRoles)(nil)

func newFakeRoles() *fakeRoles {
	r := &fakeRoles{roles: map[accounts.RoleName]*accounts.Role{}}
	for _, name := range accounts.RoleCatalog() {
		r.roles[name] = &accounts.Role{ID: uuid.New(), Name: name}
	}
	return r
}

func (r *fakeRoles) GetByName(ctx context.Context, name accounts.RoleName) (*accounts.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	role, ok := r.roles[name]
	if !ok {
		return nil, accounts.ErrAccountNotFound
	}
	return role, nil
}

func (r *fakeRoles) GetByNames(ctx context.Context, names []accounts.RoleName) ([]*accounts.Role, error) {
	out := make([]*accounts.Role, 0, len(names))
	for _, name := range names {
		if role, err := r.GetByName(ctx, name); err == nil {
			out = append(out, role)
		}
	}
	return out, nil
}

func (r *fakeRoles) List(ctx context.Context) ([]*accounts.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*accounts.Role, 0, len(r.roles))
	for _, role := range r.roles {
		out = append(out, role)
	}
	return out, nil
}

func (r *fakeRoles) EnsureCatalog(ctx context.Context) error {
	return nil
}

// fakeRepoManager bundles the in-memory repositories
type fakeRepoManager struct {
	store *memStore
	roles *fakeRoles
}

var _ accounts.RepositoryManager = (*fakeRepoManager)(nil)

func newFakeRepoManager(store *memStore) *fakeRepoManager {
	return &fakeRepoManager{
		store: store,
		roles: newFakeRoles(),
	}
}

func (m *fakeRepoManager) Validate() error { return nil }
func (m *fakeRepoManager) MustValidate()   {}

func (m *fakeRepoManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	return f(ctx, bun.Tx{})
}

func (m *fakeRepoManager) Accounts() accounts.Accounts { return m.store }
func (m *fakeRepoManager) Roles() accounts.Roles       { return m.roles }
