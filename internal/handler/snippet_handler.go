package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"snippets/internal/model"
	"snippets/internal/service"
	"snippets/internal/session"
)

// SnippetHandler serves the snippet pages.
type SnippetHandler struct {
	svc     service.SnippetService
	baseURL string
}

// NewSnippetHandler creates a snippet handler.
func NewSnippetHandler(svc service.SnippetService, baseURL string) *SnippetHandler {
	return &SnippetHandler{svc: svc, baseURL: baseURL}
}

// CreateSnippetRequest is the create form body.
type CreateSnippetRequest struct {
	Title   string `form:"title"`
	Content string `form:"content"`
}

// Index lists all snippets.
func (h *SnippetHandler) Index(c echo.Context) error {
	snippets, err := h.svc.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "snippets/index", map[string]any{"Snippets": snippets})
}

// Create renders the creation form.
func (h *SnippetHandler) Create(c echo.Context) error {
	return c.Render(http.StatusOK, "snippets/create", nil)
}

// CreatePost stores a snippet authored by the session user.
func (h *SnippetHandler) CreatePost(c echo.Context) error {
	var req CreateSnippetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	sess := session.FromContext(c)
	if _, err := h.svc.Create(c.Request().Context(), sess.User().Username, req.Title, req.Content); err != nil {
		return err
	}

	sess.SetFlash(session.FlashSuccess, "The snippet was created successfully.")
	return redirect(c, h.baseURL, "snippets")
}

// Update renders the edit form pre-filled from the loaded snippet.
func (h *SnippetHandler) Update(c echo.Context) error {
	return c.Render(http.StatusOK, "snippets/update", SnippetFrom(c).View())
}

// UpdatePost applies the fields present in the body. Nothing is written when
// no value differs from what is stored.
func (h *SnippetHandler) UpdatePost(c echo.Context) error {
	form, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	var patch model.SnippetPatch
	if _, ok := form["author"]; ok {
		v := form.Get("author")
		patch.Author = &v
	}
	if _, ok := form["title"]; ok {
		v := form.Get("title")
		patch.Title = &v
	}
	if _, ok := form["content"]; ok {
		v := form.Get("content")
		patch.Content = &v
	}

	changed, err := h.svc.Update(c.Request().Context(), SnippetFrom(c), patch)
	if err != nil {
		return err
	}

	sess := session.FromContext(c)
	if changed {
		sess.SetFlash(session.FlashSuccess, "The snippet was updated successfully.")
	} else {
		sess.SetFlash(session.FlashInfo, "The snippet was not updated because there was nothing to update.")
	}
	return redirect(c, h.baseURL, "snippets")
}

// Show renders a single snippet.
func (h *SnippetHandler) Show(c echo.Context) error {
	return c.Render(http.StatusOK, "snippets/show", SnippetFrom(c).View())
}

// Delete renders the confirmation form.
func (h *SnippetHandler) Delete(c echo.Context) error {
	return c.Render(http.StatusOK, "snippets/delete", SnippetFrom(c).View())
}

// DeletePost removes the loaded snippet.
func (h *SnippetHandler) DeletePost(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), SnippetFrom(c)); err != nil {
		return err
	}
	session.FromContext(c).SetFlash(session.FlashSuccess, "The snippet was deleted successfully.")
	return redirect(c, h.baseURL, "snippets")
}
