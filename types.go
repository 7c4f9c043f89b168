package accounts

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Identity holds the attributes of an authenticated identity
type Identity interface {
	ID() string
	Username() string
	Email() string
	Roles() []RoleName
	Verified() bool
}

// Session holds attributes that are part of an auth session
type Session interface {
	GetUserID() string
	GetUserUUID() (uuid.UUID, error)
	GetAudience() []string
	GetIssuer() string
	GetIssuedAt() *time.Time
	GetRoles() []RoleName
}

// Authenticator holds methods to deal with authentication
type Authenticator interface {
	Login(ctx context.Context, identifier, password string) (string, error)
	SessionFromToken(token string) (Session, error)
	IdentityFromSession(ctx context.Context, session Session) (Identity, error)
}

// IdentityProvider ensures we have a store to retrieve auth identities
type IdentityProvider interface {
	VerifyIdentity(ctx context.Context, identifier, password string) (Identity, error)
	FindIdentityByIdentifier(ctx context.Context, identifier string) (Identity, error)
}

// AccountStore is the narrow storage surface the lifecycle flows need.
// The Bun-backed Accounts repository satisfies it; tests swap in fakes.
type AccountStore interface {
	ByID(ctx context.Context, id uuid.UUID) (*Account, error)
	ByUsername(ctx context.Context, username string) (*Account, error)
	ByEmail(ctx context.Context, email string) (*Account, error)
	Register(ctx context.Context, account *Account) (*Account, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdateEmail(ctx context.Context, id uuid.UUID, email string) error
	MarkVerified(ctx context.Context, id uuid.UUID) error
	Remove(ctx context.Context, id uuid.UUID) error
}

// Notifier delivers lifecycle mails. A failed delivery aborts the request
// phase; the controller performs no retries.
type Notifier interface {
	SendVerificationMail(ctx context.Context, account *Account, link string) error
	SendPasswordResetMail(ctx context.Context, account *Account, link string) error
	SendEmailChangeMail(ctx context.Context, email, link string) error
}

// TokenSigner issues and validates lifecycle tokens under a caller-chosen
// signing secret. Implementations are purely functional over their inputs.
type TokenSigner interface {
	Issue(subject string, claims TokenClaims, secret []byte, ttl time.Duration) (string, error)
	Verify(token string, secret []byte) (*TokenClaims, error)
	// Decode reads a token without verifying it. It exists only to discover
	// which account's current secret to verify against; never a trust decision.
	Decode(token string) (*TokenClaims, error)
}

// TokenService signs and validates session (access) tokens under the
// global signing key
type TokenService interface {
	Generate(identity Identity) (string, error)
	SignClaims(claims *SessionClaims) (string, error)
	Validate(token string) (*SessionClaims, error)
}

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

// Config holds immutable process-wide options, constructed once at start
type Config interface {
	GetSigningKey() string
	GetIssuer() string
	GetAudience() []string
	GetTokenExpiration() int
	GetVerificationTTL() time.Duration
	GetPasswordResetTTL() time.Duration
	GetEmailChangeTTL() time.Duration
	GetVerifyLink() string
	GetResetPasswordLink() string
	GetChangeEmailLink() string
	GetServiceName() string
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetMailFrom() string
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] ACCOUNTS "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] ACCOUNTS "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] ACCOUNTS "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] ACCOUNTS "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
