package accounts

import (
	"net/http"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// ErrorResponse is the JSON error envelope every endpoint returns on failure
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody carries the stable machine-readable error fields
type ErrorBody struct {
	Message  string `json:"message"`
	TextCode string `json:"text_code,omitempty"`
}

// RenderError writes err as the JSON error envelope. Internal errors are
// masked; their message never reaches the client.
func RenderError(c router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred")
	}

	status := statusFromCategory(richErr.Category)

	body := ErrorBody{
		Message:  richErr.Message,
		TextCode: richErr.TextCode,
	}

	if richErr.Category == errors.CategoryInternal {
		body.Message = "An unexpected server error occurred"
		body.TextCode = ""
	}

	return c.JSON(status, ErrorResponse{Error: body})
}

func statusFromCategory(category errors.Category) int {
	switch category {
	case errors.CategoryAuth:
		return http.StatusUnauthorized
	case errors.CategoryAuthz:
		return http.StatusForbidden
	case errors.CategoryNotFound:
		return http.StatusNotFound
	case errors.CategoryConflict:
		return http.StatusConflict
	case errors.CategoryValidation, errors.CategoryBadInput:
		return http.StatusBadRequest
	case errors.CategoryRateLimit:
		return http.StatusTooManyRequests
	case errors.CategoryOperation:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
