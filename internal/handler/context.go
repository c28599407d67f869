package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"snippets/internal/model"
	"snippets/internal/session"
	"snippets/internal/view"
)

const snippetContextKey = "snippet"

// SessionManager is the part of session.Manager the handlers need.
type SessionManager interface {
	Regenerate(c echo.Context) *session.Session
	Destroy(c echo.Context)
}

// SnippetFrom returns the snippet loaded by LoadSnippet for this request.
func SnippetFrom(c echo.Context) *model.Snippet {
	s, _ := c.Get(snippetContextKey).(*model.Snippet)
	return s
}

// redirect sends a 302 to p relative to the base URL.
func redirect(c echo.Context, baseURL, p string) error {
	return c.Redirect(http.StatusFound, view.JoinURL(baseURL, p))
}
