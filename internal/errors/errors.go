package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrSnippetNotFound is returned when a snippet does not exist.
	ErrSnippetNotFound = errors.New("the snippet you requested does not exist")
	// ErrNotLoggedIn is returned when an operation needs a session user.
	ErrNotLoggedIn = errors.New("not logged in")
	// ErrNotAuthor is returned when the session user does not own the snippet.
	ErrNotAuthor = errors.New("not authorized")
	// ErrUserAlreadyExists is returned when a username is taken.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrInvalidCredentials is returned for unknown users and wrong passwords alike.
	ErrInvalidCredentials = errors.New("invalid login attempt")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// validationError is satisfied by model.ValidationError without importing it.
type validationError interface {
	error
	Fields() map[string]string
}

// MapErrorToHTTP maps domain errors to HTTP errors. Unknown errors become 500
// with a generic message.
func MapErrorToHTTP(err error) *HTTPError {
	var verr validationError
	switch {
	case errors.Is(err, ErrSnippetNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "SNIPPET_NOT_FOUND")
	case errors.Is(err, ErrNotLoggedIn):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "NOT_LOGGED_IN")
	case errors.Is(err, ErrNotAuthor):
		return NewHTTPError(http.StatusForbidden, err.Error(), "NOT_AUTHOR")
	case errors.Is(err, ErrUserAlreadyExists):
		return NewHTTPError(http.StatusConflict, err.Error(), "USER_ALREADY_EXISTS")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_CREDENTIALS")
	case errors.As(err, &verr):
		return NewHTTPError(http.StatusBadRequest, verr.Error(), "VALIDATION_FAILED")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
