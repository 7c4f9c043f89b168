package accounts

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	"gopkg.in/gomail.v2"
)

// Mailer delivers lifecycle mails over SMTP
type Mailer struct {
	dialer      *gomail.Dialer
	from        string
	serviceName string
	logger      Logger
}

var _ Notifier = (*Mailer)(nil)

// NewMailer creates a Mailer from SMTP configuration
func NewMailer(cfg Config) *Mailer {
	dialer := gomail.NewDialer(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
	)

	return &Mailer{
		dialer:      dialer,
		from:        cfg.GetMailFrom(),
		serviceName: cfg.GetServiceName(),
		logger:      defLogger{},
	}
}

// WithLogger overrides the logger used by the mailer
func (m *Mailer) WithLogger(logger Logger) *Mailer {
	if logger != nil {
		m.logger = logger
	}
	return m
}

// SendVerificationMail sends the account verification link
func (m *Mailer) SendVerificationMail(ctx context.Context, account *Account, link string) error {
	subject := fmt.Sprintf("%s: verify your account", m.serviceName)
	body := fmt.Sprintf(
		"Hi %s,\n\nWelcome to %s. Open the link below to verify your account:\n\n%s\n\nIf you did not sign up you can ignore this mail.\n",
		displayName(account),
		m.serviceName,
		link,
	)

	return m.send(ctx, account.Email, subject, body)
}

// SendPasswordResetMail sends the password reset link
func (m *Mailer) SendPasswordResetMail(ctx context.Context, account *Account, link string) error {
	subject := fmt.Sprintf("%s: reset your password", m.serviceName)
	body := fmt.Sprintf(
		"Hi %s,\n\nOpen the link below to choose a new password:\n\n%s\n\nThe link expires and stops working once your password changes. If you did not request a reset you can ignore this mail.\n",
		displayName(account),
		link,
	)

	return m.send(ctx, account.Email, subject, body)
}

// SendEmailChangeMail sends the confirmation link to the proposed address
func (m *Mailer) SendEmailChangeMail(ctx context.Context, email, link string) error {
	subject := fmt.Sprintf("%s: confirm your new email address", m.serviceName)
	body := fmt.Sprintf(
		"Hi,\n\nOpen the link below to confirm this address for your %s account:\n\n%s\n\nIf you did not request this change you can ignore this mail.\n",
		m.serviceName,
		link,
	)

	return m.send(ctx, email, subject, body)
}

func (m *Mailer) send(ctx context.Context, to, subject, body string) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during mail delivery")
	default:
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		m.logger.Error("mail delivery to %s failed: %v", to, err)
		return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to deliver mail")
	}

	return nil
}

func displayName(account *Account) string {
	if account.Name != "" {
		return account.Name
	}
	return account.Username
}
