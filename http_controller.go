package accounts

import (
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

// RegisterRoutes mounts the account endpoints on the given router
func RegisterRoutes[T any](app router.Router[T], opts ...AccountsControllerOption) {
	controller := NewAccountsController(opts...)

	requireAuth := RequireAuth(controller.Auther, controller.ErrorHandler)
	requireAdmin := RequireRoles(controller.ErrorHandler, RoleAdmin)

	app.Post(controller.Routes.Register, controller.Register).
		SetName("accounts.register")
	app.Get(controller.Routes.Verify+"/:token", controller.Verify).
		SetName("accounts.verify")
	app.Post(controller.Routes.Login, controller.Login).
		SetName("accounts.login")

	app.Post(controller.Routes.ForgotPassword, controller.ForgotPassword).
		SetName("accounts.forgot-password")
	app.Post(controller.Routes.ResetPassword+"/:token", controller.ResetPassword).
		SetName("accounts.reset-password")
	app.Get(controller.Routes.ChangeEmail+"/:token", controller.ConfirmEmailChange).
		SetName("accounts.change-email")

	app.Get(controller.Routes.Me, requireAuth(controller.Me)).
		SetName("accounts.me.get")
	app.Patch(controller.Routes.Me, requireAuth(controller.UpdateProfile)).
		SetName("accounts.me.patch")
	app.Delete(controller.Routes.Me, requireAuth(controller.Remove)).
		SetName("accounts.me.delete")
	app.Patch(controller.Routes.Me+"/password", requireAuth(controller.ChangePassword)).
		SetName("accounts.me.password")
	app.Patch(controller.Routes.Me+"/email", requireAuth(controller.RequestEmailChange)).
		SetName("accounts.me.email")
	app.Patch(controller.Routes.Me+"/username", requireAuth(controller.UpdateUsername)).
		SetName("accounts.me.username")

	app.Get(controller.Routes.Users, requireAuth(requireAdmin(controller.List))).
		SetName("accounts.list")
	app.Get(controller.Routes.Users+"/:username", requireAuth(requireAdmin(controller.Fetch))).
		SetName("accounts.fetch")
}

// AccountsControllerRoutes holds the mount points for the account endpoints
type AccountsControllerRoutes struct {
	Register       string
	Verify         string
	Login          string
	ForgotPassword string
	ResetPassword  string
	ChangeEmail    string
	Me             string
	Users          string
}

// AccountsController serves the JSON account API
type AccountsController struct {
	Logger       Logger
	Repo         RepositoryManager
	Lifecycle    *Lifecycle
	Auther       Authenticator
	Routes       *AccountsControllerRoutes
	ErrorHandler router.ErrorHandler
}

// AccountsControllerOption configures the controller
type AccountsControllerOption func(*AccountsController) *AccountsController

// WithRepositoryManager sets the repository manager
func WithRepositoryManager(repo RepositoryManager) AccountsControllerOption {
	return func(c *AccountsController) *AccountsController {
		c.Repo = repo
		return c
	}
}

// WithLifecycle sets the lifecycle controller
func WithLifecycle(lifecycle *Lifecycle) AccountsControllerOption {
	return func(c *AccountsController) *AccountsController {
		c.Lifecycle = lifecycle
		return c
	}
}

// WithAuthenticator sets the authenticator
func WithAuthenticator(auther Authenticator) AccountsControllerOption {
	return func(c *AccountsController) *AccountsController {
		c.Auther = auther
		return c
	}
}

// WithControllerLogger sets the controller logger
func WithControllerLogger(logger Logger) AccountsControllerOption {
	return func(c *AccountsController) *AccountsController {
		c.Logger = logger
		return c
	}
}

// NewAccountsController creates the controller with default routes
func NewAccountsController(opts ...AccountsControllerOption) *AccountsController {
	c := &AccountsController{
		Logger:       defLogger{},
		ErrorHandler: RenderError,
		Routes: &AccountsControllerRoutes{
			Register:       "/register",
			Verify:         "/verify",
			Login:          "/auth/login",
			ForgotPassword: "/forgot-password",
			ResetPassword:  "/reset-password",
			ChangeEmail:    "/change-email",
			Me:             "/users/me",
			Users:          "/users",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in accounts controller...")
	}

	if c.Lifecycle == nil {
		panic("Missing Lifecycle in accounts controller...")
	}

	if c.Auther == nil {
		panic("Missing Authenticator in accounts controller...")
	}

	return c
}

// Register handles signups
func (a *AccountsController) Register(ctx router.Context) error {
	payload := new(RegisterMessage)
	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, badPayload(err))
	}

	handler := NewRegisterHandler(a.Repo, a.Lifecycle).WithLogger(a.Logger)

	account, err := handler.Execute(ctx.Context(), *payload)
	if err != nil {
		a.Logger.Error("register account error: %v", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, account.Public())
}

// Verify completes the verification flow from the mailed link
func (a *AccountsController) Verify(ctx router.Context) error {
	token := ctx.Param("token", "")

	if err := a.Lifecycle.ConfirmVerification(ctx.Context(), token); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusOK, statusResponse{Status: "verified"})
}

// LoginRequest payload
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Identifier, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// LoginResponse carries the session token
type LoginResponse struct {
	Token string `json:"token"`
}

// Login exchanges credentials for a session token
func (a *AccountsController) Login(ctx router.Context) error {
	payload := new(LoginRequest)
	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, badPayload(err))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid login payload"))
	}

	token, err := a.Auther.Login(ctx.Context(), payload.Identifier, payload.Password)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

// ForgotPasswordRequest payload
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// Validate will run validation rules
func (r ForgotPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

// ForgotPassword starts the reset flow. The response is identical whether
// the address exists or not.
func (a *AccountsController) ForgotPassword(ctx router.Context) error {
	payload := new(ForgotPasswordRequest)
	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, badPayload(err))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid payload"))
	}

	if err := a.Lifecycle.RequestPasswordReset(ctx.Context(), payload.Email); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusAccepted, statusResponse{Status: "accepted"})
}

// ResetPasswordRequest payload
type ResetPasswordRequest struct {
	Password string `json:"password"`
}

// Validate will run validation rules
func (r ResetPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Password, validation.Required, validation.Length(8, 128)),
	)
}

// ResetPassword completes the reset flow from the mailed link
func (a *AccountsController) ResetPassword(ctx router.Context) error {
	token := ctx.Param("token", "")

	payload := new(ResetPasswordRequest)
	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, badPayload(err))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid payload"))
	}

	if err := a.Lifecycle.CompletePasswordReset(ctx.Context(), token, payload.Password); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusOK, statusResponse{Status: "password updated"})
}

// ConfirmEmailChange completes the email change from the mailed link
func (a *AccountsController) ConfirmEmailChange(ctx router.Context) error {
	token := ctx.Param("token", "")

	if err := a.Lifecycle.ConfirmEmailChange(ctx.Context(), token); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusOK, statusResponse{Status: "email updated"})
}

// Me returns the authenticated account
func (a *AccountsController) Me(ctx router.Context) error {
	account, err := a.currentAccount(ctx)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusOK, account.Public())
}

// UpdateProfileRequest payload. Absent fields are left untouched.
type UpdateProfileRequest struct {
	Name      *string    `json:"name"`
	Surname   *string    `json:"surname"`
	Birthdate *time.Time `json:"birthdate"`
	Avatar    *string    `json:"avatar"`
}

// UpdateProfile applies partial profile mutations
func (a *AccountsController) UpdateProfile(ctx router.Context) error {
	account, err := a.currentAccount(ctx)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	payload := new(UpdateProfileRequest)
	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, badPayload(err))
	}

	updated, err := a.Repo.Accounts().UpdateProfile(ctx.Context(), account.ID, ProfileUpdate{
		Name:      payload.Name,
		Surname:   payload.Surname,
		Birthdate: payload.Birthdate,
		Avatar:    payload.Avatar,
	})
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusOK, updated.Public())
}

// ChangePasswordRequest payload
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// Validate will run validation rules
func (r ChangePasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CurrentPassword, validation.Required),
		validation.Field(&r.NewPassword, validation.Required, validation.Length(8, 128)),
	)
}

// ChangePassword is the authenticated password change
func (a *AccountsController) ChangePassword(ctx router.Context) error {
	id, err := a.currentAccountID(ctx)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	payload := new(ChangePasswordRequest)
	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, badPayload(err))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid payload"))
	}

	if err := a.Lifecycle.ChangePassword(ctx.Context(), id, payload.CurrentPassword, payload.NewPassword); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusOK, statusResponse{Status: "password updated"})
}

// ChangeUsernameRequest payload
type ChangeUsernameRequest struct {
	Username string `json:"username"`
}

// Validate will run validation rules
func (r ChangeUsernameRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(3, 60)),
	)
}

// UpdateUsername renames the authenticated account
func (a *AccountsController) UpdateUsername(ctx router.Context) error {
	id, err := a.currentAccountID(ctx)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	payload := new(ChangeUsernameRequest)
	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, badPayload(err))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid payload"))
	}

	updated, err := a.Repo.Accounts().UpdateUsername(ctx.Context(), id, payload.Username)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusOK, updated.Public())
}

// ChangeEmailRequest payload
type ChangeEmailRequest struct {
	Email string `json:"email"`
}

// Validate will run validation rules
func (r ChangeEmailRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

// RequestEmailChange starts the email change flow for the authenticated
// account; the confirmation link goes to the proposed address
func (a *AccountsController) RequestEmailChange(ctx router.Context) error {
	id, err := a.currentAccountID(ctx)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	payload := new(ChangeEmailRequest)
	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, badPayload(err))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid payload"))
	}

	if err := a.Lifecycle.RequestEmailChange(ctx.Context(), id, payload.Email); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusAccepted, statusResponse{Status: "accepted"})
}

// RemoveRequest payload
type RemoveRequest struct {
	Password string `json:"password"`
}

// Remove deletes the authenticated account after a password check
func (a *AccountsController) Remove(ctx router.Context) error {
	id, err := a.currentAccountID(ctx)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	payload := new(RemoveRequest)
	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, badPayload(err))
	}

	if err := a.Lifecycle.RemoveAccount(ctx.Context(), id, payload.Password); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusOK, statusResponse{Status: "removed"})
}

// List returns every account; admin only
func (a *AccountsController) List(ctx router.Context) error {
	records, err := a.Repo.Accounts().List(ctx.Context())
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	out := make([]PublicAccount, 0, len(records))
	for _, record := range records {
		out = append(out, record.Public())
	}

	return ctx.JSON(http.StatusOK, out)
}

// Fetch returns a single account by username; admin only
func (a *AccountsController) Fetch(ctx router.Context) error {
	username := ctx.Param("username", "")

	record, err := a.Repo.Accounts().ByUsername(ctx.Context(), username)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusOK, record.Public())
}

func (a *AccountsController) currentAccount(ctx router.Context) (*Account, error) {
	id, err := a.currentAccountID(ctx)
	if err != nil {
		return nil, err
	}

	return a.Repo.Accounts().ByID(ctx.Context(), id)
}

func (a *AccountsController) currentAccountID(ctx router.Context) (uuid.UUID, error) {
	session, err := SessionFromContext(ctx)
	if err != nil {
		return uuid.Nil, err
	}

	id, err := session.GetUserUUID()
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}

	return id, nil
}

type statusResponse struct {
	Status string `json:"status"`
}

func badPayload(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse request body")
}
