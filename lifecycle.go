package accounts

import (
	"context"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// Lifecycle orchestrates the three token-bound flows: email verification,
// password reset, and email change. Each flow issues a token whose signing
// secret is derived from current account state, so completing the flow
// rotates the secret and every sibling token stops verifying. No token is
// ever stored or revoked by id.
//
// Binding secrets per flow:
//   - verification: the global signing key
//   - password reset: the account's current password hash
//   - email change: the account's current email address
type Lifecycle struct {
	store    AccountStore
	notifier Notifier
	signer   TokenSigner
	cfg      Config
	logger   Logger
}

// NewLifecycle creates the lifecycle controller with sane defaults
func NewLifecycle(store AccountStore, notifier Notifier, cfg Config) *Lifecycle {
	return &Lifecycle{
		store:    store,
		notifier: notifier,
		signer:   NewTokenSigner(cfg.GetIssuer(), nil),
		cfg:      cfg,
		logger:   defLogger{},
	}
}

// WithLogger overrides the logger used by the controller
func (l *Lifecycle) WithLogger(logger Logger) *Lifecycle {
	if logger != nil {
		l.logger = logger
	}
	return l
}

// WithTokenSigner overrides the token signer
func (l *Lifecycle) WithTokenSigner(signer TokenSigner) *Lifecycle {
	if signer != nil {
		l.signer = signer
	}
	return l
}

// RequestVerification issues a verification token for the account and hands
// the link to the notifier. A delivery failure aborts the request; nothing
// has been mutated at that point.
func (l *Lifecycle) RequestVerification(ctx context.Context, account *Account) (string, error) {
	token, err := l.signer.Issue(
		account.ID.String(),
		TokenClaims{Username: account.Username},
		l.verificationSecret(),
		l.cfg.GetVerificationTTL(),
	)
	if err != nil {
		return "", err
	}

	link := joinLink(l.cfg.GetVerifyLink(), token)
	if err := l.notifier.SendVerificationMail(ctx, account, link); err != nil {
		l.logger.Warn("verification mail delivery failed for %s: %v", account.Email, err)
		return "", ErrMailDelivery
	}

	return token, nil
}

// ConfirmVerification completes the verification flow. The verified flag
// transitions false to true exactly once; a token presented against an
// already-verified account is treated as spent.
func (l *Lifecycle) ConfirmVerification(ctx context.Context, token string) error {
	account, _, err := l.subjectOf(ctx, token)
	if err != nil {
		return err
	}

	if _, err := l.signer.Verify(token, l.verificationSecret()); err != nil {
		return ErrInvalidToken
	}

	if account.Verified {
		return ErrInvalidToken
	}

	return l.store.MarkVerified(ctx, account.ID)
}

// RequestPasswordReset issues a reset token bound to the account's current
// password hash and mails the link. An unknown email is deliberately not
// reported to the caller; error variance here would enumerate accounts.
func (l *Lifecycle) RequestPasswordReset(ctx context.Context, email string) error {
	account, err := l.store.ByEmail(ctx, email)
	if err != nil {
		if IsNotFound(err) {
			l.logger.Info("password reset requested for unknown email %s", email)
			return nil
		}
		return err
	}

	token, err := l.signer.Issue(
		account.ID.String(),
		TokenClaims{Username: account.Username},
		passwordResetSecret(account),
		l.cfg.GetPasswordResetTTL(),
	)
	if err != nil {
		return err
	}

	link := joinLink(l.cfg.GetResetPasswordLink(), token)
	if err := l.notifier.SendPasswordResetMail(ctx, account, link); err != nil {
		l.logger.Warn("password reset mail delivery failed for %s: %v", account.Email, err)
		return ErrMailDelivery
	}

	return nil
}

// CompletePasswordReset verifies the reset token against the account's
// current password hash and, when it holds, overwrites the hash. The
// overwrite rotates the binding secret, which invalidates every other
// outstanding reset token for the account.
func (l *Lifecycle) CompletePasswordReset(ctx context.Context, token, newPassword string) error {
	account, _, err := l.subjectOf(ctx, token)
	if err != nil {
		return err
	}

	// The account row is re-read above; verification must run against the
	// latest committed hash, not a value captured at request time.
	if _, err := l.signer.Verify(token, passwordResetSecret(account)); err != nil {
		return ErrInvalidToken
	}

	if !account.Verified {
		return ErrNotVerified
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid new password provided")
	}

	return l.store.UpdatePassword(ctx, account.ID, hash)
}

// ChangePassword is the authenticated change path: the current password
// authorizes the overwrite. It rotates the same binding secret as the reset
// flow, so completing it also invalidates outstanding reset links.
func (l *Lifecycle) ChangePassword(ctx context.Context, id uuid.UUID, currentPassword, newPassword string) error {
	account, err := l.store.ByID(ctx, id)
	if err != nil {
		return err
	}

	if err := ComparePasswordAndHash(currentPassword, account.PasswordHash); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid new password provided")
	}

	return l.store.UpdatePassword(ctx, account.ID, hash)
}

// RequestEmailChange issues a token bound to the account's current email,
// carrying the proposed address as a claim, and mails the link to the
// proposed address.
func (l *Lifecycle) RequestEmailChange(ctx context.Context, id uuid.UUID, newEmail string) error {
	account, err := l.store.ByID(ctx, id)
	if err != nil {
		return err
	}

	if _, err := l.store.ByEmail(ctx, newEmail); err == nil {
		return ErrEmailTaken
	} else if !IsNotFound(err) {
		return err
	}

	token, err := l.signer.Issue(
		account.ID.String(),
		TokenClaims{Username: account.Username, NewEmail: newEmail},
		emailChangeSecret(account),
		l.cfg.GetEmailChangeTTL(),
	)
	if err != nil {
		return err
	}

	link := joinLink(l.cfg.GetChangeEmailLink(), token)
	if err := l.notifier.SendEmailChangeMail(ctx, newEmail, link); err != nil {
		l.logger.Warn("email change mail delivery failed for %s: %v", newEmail, err)
		return ErrMailDelivery
	}

	return nil
}

// ConfirmEmailChange verifies the token against the account's current email
// and applies the claimed address. The overwrite rotates the binding secret
// for the email-change class.
func (l *Lifecycle) ConfirmEmailChange(ctx context.Context, token string) error {
	account, claims, err := l.subjectOf(ctx, token)
	if err != nil {
		return err
	}

	if _, err := l.signer.Verify(token, emailChangeSecret(account)); err != nil {
		return ErrInvalidToken
	}

	if claims.NewEmail == "" {
		return ErrInvalidToken
	}

	if _, err := l.store.ByEmail(ctx, claims.NewEmail); err == nil {
		return ErrEmailTaken
	} else if !IsNotFound(err) {
		return err
	}

	return l.store.UpdateEmail(ctx, account.ID, claims.NewEmail)
}

// RemoveAccount deletes the account when the password is verified
func (l *Lifecycle) RemoveAccount(ctx context.Context, id uuid.UUID, password string) error {
	account, err := l.store.ByID(ctx, id)
	if err != nil {
		return err
	}

	if err := ComparePasswordAndHash(password, account.PasswordHash); err != nil {
		return ErrInvalidCredentials
	}

	return l.store.Remove(ctx, account.ID)
}

// subjectOf decodes the token without verifying it and loads the current
// account row for its subject. The unverified decode only selects which
// secret to check; a miss is reported as an invalid token so a forged
// subject cannot probe for existing accounts.
func (l *Lifecycle) subjectOf(ctx context.Context, token string) (*Account, *TokenClaims, error) {
	claims, err := l.signer.Decode(token)
	if err != nil {
		return nil, nil, ErrInvalidToken
	}

	id, err := uuid.Parse(claims.Subject())
	if err != nil {
		return nil, nil, ErrInvalidToken
	}

	account, err := l.store.ByID(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil, ErrInvalidToken
		}
		return nil, nil, err
	}

	return account, claims, nil
}

func (l *Lifecycle) verificationSecret() []byte {
	return []byte(l.cfg.GetSigningKey())
}

func passwordResetSecret(account *Account) []byte {
	return []byte(account.PasswordHash)
}

func emailChangeSecret(account *Account) []byte {
	return []byte(account.Email)
}

func joinLink(base, token string) string {
	if base == "" {
		return token
	}
	if strings.HasSuffix(base, "/") {
		return base + token
	}
	return base + "/" + token
}
