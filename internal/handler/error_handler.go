package handler

import (
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"snippets/internal/errors"
	"snippets/internal/logging"
	"snippets/internal/view"
)

// ErrorPage is the data behind the errors/error view.
type ErrorPage struct {
	Status int
	Title  string
	Detail string
}

// NewErrorHandler returns the single place where errors become responses.
// The status comes from an *echo.HTTPError or the domain error mapping and
// defaults to 500. Internal details are shown only outside production.
func NewErrorHandler(logger logging.Logger, baseURL string, production bool) echo.HTTPErrorHandler {
	apiPrefix := view.JoinURL(baseURL, "api/")
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, detail := classify(err)
		if status >= http.StatusInternalServerError && !production {
			detail = err.Error()
		}

		ctx := c.Request().Context()
		attrs := []any{
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"status", status,
			"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
			"error", err,
		}
		if status >= http.StatusInternalServerError {
			logger.Error(ctx, "request failed", attrs...)
		} else {
			logger.Warn(ctx, "request rejected", attrs...)
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}

		if strings.HasPrefix(c.Request().URL.Path, apiPrefix) {
			_ = c.JSON(status, apiError(err, status, detail))
			return
		}

		page := ErrorPage{Status: status, Title: http.StatusText(status), Detail: detail}
		if renderErr := c.Render(status, "errors/error", page); renderErr != nil {
			logger.Error(ctx, "error page render failed", "error", renderErr)
			_ = c.String(status, http.StatusText(status))
		}
	}
}

// classify picks the status and the message that is safe to show. Only
// validation and conflict messages are user-facing.
func classify(err error) (int, string) {
	var he *echo.HTTPError
	if stderrors.As(err, &he) {
		if he.Code == http.StatusMethodNotAllowed {
			return http.StatusNotFound, ""
		}
		if he.Internal != nil {
			if mapped := errors.MapErrorToHTTP(he.Internal); mapped.StatusCode == http.StatusBadRequest {
				return he.Code, mapped.Message
			}
		}
		return he.Code, ""
	}

	mapped := errors.MapErrorToHTTP(err)
	switch mapped.StatusCode {
	case http.StatusBadRequest, http.StatusConflict:
		return mapped.StatusCode, mapped.Message
	default:
		return mapped.StatusCode, ""
	}
}

// apiError uses the domain mapping when it agrees with the chosen status and
// falls back to the status text otherwise.
func apiError(err error, status int, detail string) errors.ErrorResponse {
	cause := err
	var he *echo.HTTPError
	if stderrors.As(err, &he) {
		cause = he.Internal
	}

	if cause != nil {
		if mapped := errors.MapErrorToHTTP(cause); mapped.StatusCode == status {
			if detail != "" {
				mapped.Message = detail
			}
			return mapped.ToErrorResponse()
		}
	}

	msg := http.StatusText(status)
	if detail != "" {
		msg = detail
	}
	code := strings.ReplaceAll(strings.ToUpper(http.StatusText(status)), " ", "_")
	return errors.NewHTTPError(status, msg, code).ToErrorResponse()
}
