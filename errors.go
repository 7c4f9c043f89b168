package accounts

import (
	goerrors "github.com/goliatone/go-errors"
)

// Text codes surfaced in the JSON error envelope
const (
	TextCodeAccountNotFound = "ACCOUNT_NOT_FOUND"
	TextCodeInvalidCreds    = "INVALID_CREDENTIALS"
	TextCodeInvalidToken    = "INVALID_TOKEN"
	TextCodeUsernameTaken   = "USERNAME_TAKEN"
	TextCodeEmailTaken      = "EMAIL_TAKEN"
	TextCodeMailDelivery    = "MAIL_DELIVERY_FAILED"
	TextCodeNotVerified     = "ACCOUNT_NOT_VERIFIED"
	TextCodeForbidden       = "FORBIDDEN_RESOURCE"
	TextCodeEmptyPassword   = "EMPTY_PASSWORD"
)

// ErrAccountNotFound is returned when an identity lookup misses
var ErrAccountNotFound = goerrors.New("account not found", goerrors.CategoryNotFound).
	WithTextCode(TextCodeAccountNotFound)

// ErrInvalidCredentials covers both unknown identifiers and password
// mismatches so callers cannot enumerate accounts through error variance
var ErrInvalidCredentials = goerrors.New("the credentials provided are invalid", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds)

// ErrInvalidToken is the single failure kind for lifecycle tokens. Bad
// signature, elapsed expiry, and malformed input all collapse into it.
var ErrInvalidToken = goerrors.New("invalid or expired token", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidToken)

// ErrUsernameTaken reports a username uniqueness violation
var ErrUsernameTaken = goerrors.New("username is already being used", goerrors.CategoryConflict).
	WithTextCode(TextCodeUsernameTaken)

// ErrEmailTaken reports an email uniqueness violation
var ErrEmailTaken = goerrors.New("email is already being used", goerrors.CategoryConflict).
	WithTextCode(TextCodeEmailTaken)

// ErrMailDelivery aborts a request phase when the notifier fails; the
// condition is retryable and no account state has been mutated
var ErrMailDelivery = goerrors.New("mail could not be delivered", goerrors.CategoryOperation).
	WithTextCode(TextCodeMailDelivery)

// ErrNotVerified blocks flows that require a verified account
var ErrNotVerified = goerrors.New("account is not verified", goerrors.CategoryAuth).
	WithTextCode(TextCodeNotVerified)

// ErrForbidden is returned when an authenticated identity lacks the
// required role
var ErrForbidden = goerrors.New("insufficient role for this resource", goerrors.CategoryAuthz).
	WithTextCode(TextCodeForbidden)

// ErrNoEmptyPassword rejects empty secrets before hashing
var ErrNoEmptyPassword = goerrors.New("password must not be empty", goerrors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword)

// IsInvalidToken reports whether err carries the unified invalid-token kind
func IsInvalidToken(err error) bool {
	return hasTextCode(err, TextCodeInvalidToken)
}

// IsConflict reports whether err is a uniqueness violation on username or email
func IsConflict(err error) bool {
	if hasTextCode(err, TextCodeUsernameTaken) || hasTextCode(err, TextCodeEmailTaken) {
		return true
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.Category == goerrors.CategoryConflict
	}

	return false
}

// IsNotFound reports whether err is an identity lookup miss
func IsNotFound(err error) bool {
	if goerrors.IsNotFound(err) {
		return true
	}
	return hasTextCode(err, TextCodeAccountNotFound)
}

func hasTextCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.TextCode == code
	}
	return false
}
