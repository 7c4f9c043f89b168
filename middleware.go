package accounts

import (
	"strings"

	"github.com/goliatone/go-router"
)

// SessionContextKey is where the middleware stores the validated session
const SessionContextKey = "session"

const bearerScheme = "Bearer"

// RequireAuth validates the bearer token on every request and stores the
// resulting session in the request locals. Requests without a valid token
// never reach the wrapped handler.
func RequireAuth(auther Authenticator, errorHandler router.ErrorHandler) router.MiddlewareFunc {
	if errorHandler == nil {
		errorHandler = RenderError
	}

	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			raw, err := tokenFromHeader(ctx)
			if err != nil {
				return errorHandler(ctx, err)
			}

			session, err := auther.SessionFromToken(raw)
			if err != nil {
				return errorHandler(ctx, ErrInvalidToken)
			}

			ctx.Locals(SessionContextKey, session)

			return hf(ctx)
		}
	}
}

// RequireRoles rejects sessions missing every required role. Requirements
// are OR-combined. It must run after RequireAuth.
func RequireRoles(errorHandler router.ErrorHandler, required ...RoleName) router.MiddlewareFunc {
	if errorHandler == nil {
		errorHandler = RenderError
	}

	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			session, err := SessionFromContext(ctx)
			if err != nil {
				return errorHandler(ctx, err)
			}

			if !Authorize(session.GetRoles(), required...) {
				return errorHandler(ctx, ErrForbidden)
			}

			return hf(ctx)
		}
	}
}

// SessionFromContext returns the session stored by RequireAuth
func SessionFromContext(ctx router.Context) (Session, error) {
	value := ctx.Locals(SessionContextKey)
	if value == nil {
		return nil, ErrInvalidToken
	}

	session, ok := value.(Session)
	if !ok {
		return nil, ErrInvalidToken
	}

	return session, nil
}

func tokenFromHeader(ctx router.Context) (string, error) {
	return ParseBearerToken(ctx.GetString(router.HeaderAuthorization, ""))
}

// ParseBearerToken extracts the credentials from an Authorization header.
// The scheme is matched case-insensitively and must be followed by a space;
// "Bearerxyz" is not a bearer header.
func ParseBearerToken(header string) (string, error) {
	l := len(bearerScheme)
	if len(header) <= l+1 || !strings.EqualFold(header[:l], bearerScheme) {
		return "", ErrInvalidToken
	}

	if header[l] != ' ' {
		return "", ErrInvalidToken
	}

	token := strings.TrimSpace(header[l+1:])
	if token == "" {
		return "", ErrInvalidToken
	}

	return token, nil
}
