package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"snippets/internal/errors"
	"snippets/internal/logging"
	"snippets/internal/service"
	"snippets/internal/session"
)

// AccountHandler handles registration, login and logout.
type AccountHandler struct {
	authService service.AuthService
	sessions    SessionManager
	logger      logging.Logger
	baseURL     string
}

// NewAccountHandler creates a new account handler.
func NewAccountHandler(authService service.AuthService, sessions SessionManager, logger logging.Logger, baseURL string) *AccountHandler {
	return &AccountHandler{authService: authService, sessions: sessions, logger: logger, baseURL: baseURL}
}

// RegisterRequest represents a registration form.
type RegisterRequest struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

// LoginRequest represents a login form.
type LoginRequest struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

// Register renders the registration form.
func (h *AccountHandler) Register(c echo.Context) error {
	return c.Render(http.StatusOK, "user/register", nil)
}

// RegisterPost creates an account. Failures (taken username, short password)
// go to the central error handler.
func (h *AccountHandler) RegisterPost(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	user, err := h.authService.Register(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}
	h.logger.Info(c.Request().Context(), "user registered", "username", user.Username)

	session.FromContext(c).SetFlash(session.FlashSuccess, "Your account was created. Please log in.")
	return redirect(c, h.baseURL, "user/login")
}

// Login renders the login form.
func (h *AccountHandler) Login(c echo.Context) error {
	return c.Render(http.StatusOK, "user/login", nil)
}

// LoginPost authenticates and starts a fresh session. Every failure looks the
// same to the visitor.
func (h *AccountHandler) LoginPost(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return h.loginFailed(c)
	}
	if err := c.Validate(&req); err != nil {
		return h.loginFailed(c)
	}

	user, err := h.authService.Authenticate(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return h.loginFailed(c)
	}

	sess := h.sessions.Regenerate(c)
	sess.SetUser(&session.User{ID: user.ID.String(), Username: user.Username})
	return redirect(c, h.baseURL, "")
}

func (h *AccountHandler) loginFailed(c echo.Context) error {
	session.FromContext(c).SetFlash(session.FlashDanger, "Invalid login attempt.")
	return redirect(c, h.baseURL, "user/login")
}

// Logout destroys the session. Without a logged-in user it is a 404.
func (h *AccountHandler) Logout(c echo.Context) error {
	if session.FromContext(c).User() == nil {
		return echo.NewHTTPError(http.StatusNotFound, errors.ErrNotLoggedIn.Error()).WithInternal(errors.ErrNotLoggedIn)
	}
	h.sessions.Destroy(c)
	return redirect(c, h.baseURL, "")
}
