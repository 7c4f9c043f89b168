package accounts

import (
	"time"

	"github.com/caarlos0/env/v11"
	goerrors "github.com/goliatone/go-errors"
)

// AppConfig is the concrete Config implementation. It is parsed from the
// environment exactly once and never mutated afterwards; components receive
// it by reference through the Config interface.
type AppConfig struct {
	SigningKey       string        `env:"ACCOUNTS_SIGNING_KEY"`
	Issuer           string        `env:"ACCOUNTS_ISSUER" envDefault:"go-accounts"`
	Audience         []string      `env:"ACCOUNTS_AUDIENCE" envSeparator:","`
	TokenExpiration  int           `env:"ACCOUNTS_TOKEN_EXPIRATION" envDefault:"24"`
	VerificationTTL  time.Duration `env:"ACCOUNTS_VERIFICATION_TTL" envDefault:"24h"`
	PasswordResetTTL time.Duration `env:"ACCOUNTS_PASSWORD_RESET_TTL" envDefault:"1h"`
	EmailChangeTTL   time.Duration `env:"ACCOUNTS_EMAIL_CHANGE_TTL" envDefault:"1h"`

	VerifyLink        string `env:"ACCOUNTS_VERIFY_LINK"`
	ResetPasswordLink string `env:"ACCOUNTS_RESET_PASSWORD_LINK"`
	ChangeEmailLink   string `env:"ACCOUNTS_CHANGE_EMAIL_LINK"`

	ServiceName  string `env:"ACCOUNTS_SERVICE_NAME" envDefault:"go-accounts"`
	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	MailFrom     string `env:"SMTP_FROM"`
}

var _ Config = (*AppConfig)(nil)

// LoadConfig parses the environment into an immutable AppConfig
func LoadConfig() (*AppConfig, error) {
	cfg, err := env.ParseAs[AppConfig]()
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to parse environment configuration")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the options that have no usable default
func (c *AppConfig) Validate() error {
	if c.SigningKey == "" {
		return goerrors.New("missing ACCOUNTS_SIGNING_KEY", goerrors.CategoryValidation)
	}

	if c.TokenExpiration <= 0 {
		return goerrors.New("token expiration must be positive", goerrors.CategoryValidation)
	}

	return nil
}

func (c *AppConfig) GetSigningKey() string              { return c.SigningKey }
func (c *AppConfig) GetIssuer() string                  { return c.Issuer }
func (c *AppConfig) GetAudience() []string              { return c.Audience }
func (c *AppConfig) GetTokenExpiration() int            { return c.TokenExpiration }
func (c *AppConfig) GetVerificationTTL() time.Duration  { return c.VerificationTTL }
func (c *AppConfig) GetPasswordResetTTL() time.Duration { return c.PasswordResetTTL }
func (c *AppConfig) GetEmailChangeTTL() time.Duration   { return c.EmailChangeTTL }
func (c *AppConfig) GetVerifyLink() string              { return c.VerifyLink }
func (c *AppConfig) GetResetPasswordLink() string       { return c.ResetPasswordLink }
func (c *AppConfig) GetChangeEmailLink() string         { return c.ChangeEmailLink }
func (c *AppConfig) GetServiceName() string             { return c.ServiceName }
func (c *AppConfig) GetSMTPHost() string                { return c.SMTPHost }
func (c *AppConfig) GetSMTPPort() int                   { return c.SMTPPort }
func (c *AppConfig) GetSMTPUsername() string            { return c.SMTPUsername }
func (c *AppConfig) GetSMTPPassword() string            { return c.SMTPPassword }
func (c *AppConfig) GetMailFrom() string                { return c.MailFrom }
