package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"snippets/internal/model"
	"snippets/internal/service"
)

// APIHandler exposes snippets read-only as JSON.
type APIHandler struct {
	svc service.SnippetService
}

// NewAPIHandler creates a new API handler.
func NewAPIHandler(svc service.SnippetService) *APIHandler {
	return &APIHandler{svc: svc}
}

// ListSnippets godoc
// @Summary List snippets
// @Tags snippets
// @Produce json
// @Success 200 {array} model.SnippetView
// @Failure 500 {object} errors.ErrorResponse
// @Router /snippets [get]
func (h *APIHandler) ListSnippets(c echo.Context) error {
	snippets, err := h.svc.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, snippets)
}

// GetSnippet godoc
// @Summary Get snippet by id
// @Tags snippets
// @Produce json
// @Param id path string true "Snippet ID"
// @Success 200 {object} model.SnippetView
// @Failure 404 {object} errors.ErrorResponse
// @Router /snippets/{id} [get]
func (h *APIHandler) GetSnippet(c echo.Context) error {
	var view model.SnippetView
	if s := SnippetFrom(c); s != nil {
		view = s.View()
	}
	return c.JSON(http.StatusOK, view)
}
