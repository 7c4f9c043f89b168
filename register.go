package accounts

import (
	"context"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
)

// RegisterMessage carries a signup request
type RegisterMessage struct {
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Password  string     `json:"password"`
	Name      string     `json:"name"`
	Surname   string     `json:"surname"`
	Birthdate *time.Time `json:"birthdate"`
	Roles     []RoleName `json:"-"`
}

func (e RegisterMessage) Type() string { return "account.register" }

// Validate checks the payload before any storage round trip. The username is
// optional; an absent one is derived from the email's local part.
func (e RegisterMessage) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Username, validation.Length(3, 60)),
		validation.Field(&e.Email, validation.Required, is.Email),
		validation.Field(&e.Password, validation.Required, validation.Length(8, 128)),
	)
}

// RegisterHandler creates accounts. A new account starts unverified, holds
// the default role membership, and gets a verification mail before the
// handler reports success. If the mail cannot be delivered the created row
// is removed again so the address stays free for a retry.
type RegisterHandler struct {
	repo      RepositoryManager
	lifecycle *Lifecycle
	logger    Logger
}

// NewRegisterHandler creates a registration handler
func NewRegisterHandler(repo RepositoryManager, lifecycle *Lifecycle) *RegisterHandler {
	return &RegisterHandler{
		repo:      repo,
		lifecycle: lifecycle,
		logger:    defLogger{},
	}
}

// WithLogger overrides the logger used by the handler
func (h *RegisterHandler) WithLogger(logger Logger) *RegisterHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

// Execute runs the signup flow and returns the created account
func (h *RegisterHandler) Execute(ctx context.Context, event RegisterMessage) (*Account, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during account registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterHandler) execute(ctx context.Context, event RegisterMessage) (*Account, error) {
	if err := event.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid registration payload")
	}

	hash, err := HashPassword(event.Password)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	roleNames := event.Roles
	if len(roleNames) == 0 {
		roleNames = []RoleName{RoleUser}
	}

	roles, err := h.repo.Roles().GetByNames(ctx, roleNames)
	if err != nil {
		return nil, err
	}

	account := &Account{
		Username:     getUsername(event.Username, event.Email),
		Email:        event.Email,
		PasswordHash: hash,
		Name:         event.Name,
		Surname:      event.Surname,
		Birthdate:    event.Birthdate,
		Roles:        roles,
	}

	account, err = h.repo.Accounts().Register(ctx, account)
	if err != nil {
		return nil, err
	}

	// Delivery failure rolls the signup back. The account only exists once
	// its owner can actually receive the verification link.
	if _, err := h.lifecycle.RequestVerification(ctx, account); err != nil {
		if rmErr := h.repo.Accounts().Remove(ctx, account.ID); rmErr != nil {
			h.logger.Error("failed to remove account after mail delivery failure: %v", rmErr)
		}
		return nil, err
	}

	return account, nil
}

func getUsername(username, email string) string {
	if username != "" {
		return username
	}

	if strings.Contains(email, "@") {
		username = strings.Split(email, "@")[0]
	}

	return username
}
