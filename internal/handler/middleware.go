package handler

import (
	stderrors "errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"snippets/internal/errors"
	"snippets/internal/session"
)

// LoadSnippet resolves the :id path parameter into a snippet for the
// downstream handler. Unknown or malformed ids are 404.
func (h *SnippetHandler) LoadSnippet(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			return echo.NewHTTPError(http.StatusNotFound, errors.ErrSnippetNotFound.Error()).WithInternal(errors.ErrSnippetNotFound)
		}
		snippet, err := h.svc.Get(c.Request().Context(), id)
		if err != nil {
			if stderrors.Is(err, errors.ErrSnippetNotFound) {
				return echo.NewHTTPError(http.StatusNotFound, err.Error()).WithInternal(err)
			}
			return err
		}
		c.Set(snippetContextKey, snippet)
		return next(c)
	}
}

// Authorize requires a logged-in user.
func (h *SnippetHandler) Authorize(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess := session.FromContext(c)
		if sess.User() == nil {
			sess.SetFlash(session.FlashDanger, "You must be logged in to create a snippet.")
			return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrNotLoggedIn.Error()).WithInternal(errors.ErrNotLoggedIn)
		}
		return next(c)
	}
}

// AuthorizeAuthor requires the logged-in user to be the loaded snippet's
// author. Anonymous visitors get 404 so the snippet's existence is not
// confirmed to them.
func (h *SnippetHandler) AuthorizeAuthor(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user := session.FromContext(c).User()
		if user == nil {
			return echo.NewHTTPError(http.StatusNotFound, errors.ErrNotLoggedIn.Error()).WithInternal(errors.ErrNotLoggedIn)
		}
		snippet := SnippetFrom(c)
		if snippet == nil || user.Username != snippet.Author {
			return echo.NewHTTPError(http.StatusForbidden, errors.ErrNotAuthor.Error()).WithInternal(errors.ErrNotAuthor)
		}
		return next(c)
	}
}
