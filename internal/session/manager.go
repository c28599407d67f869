package session

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"snippets/internal/auth"
	"snippets/internal/logging"
)

const (
	sessionContextKey = "session"
	tokenContextKey   = "session_token"
)

// Options configures the session cookie.
type Options struct {
	CookieName string
	Path       string
	TTL        time.Duration
	Secure     bool
}

// Manager loads sessions for incoming requests and persists them before the
// response is written.
type Manager struct {
	store  Store
	tokens *auth.SessionTokens
	opts   Options
	logger logging.Logger
}

// NewManager builds a Manager.
func NewManager(store Store, tokens *auth.SessionTokens, opts Options, logger logging.Logger) *Manager {
	if opts.Path == "" {
		opts.Path = "/"
	}
	return &Manager{store: store, tokens: tokens, opts: opts, logger: logger.With("component", "session")}
}

// TokenMiddleware reads and verifies the session cookie. A missing or invalid
// cookie is not an error: the request simply starts a fresh session.
func (m *Manager) TokenMiddleware() echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  tokenContextKey,
		TokenLookup: "cookie:" + m.opts.CookieName,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return m.tokens.Parse(token)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return nil
		},
		ContinueOnIgnoredError: true,
	})
}

// Middleware attaches the visitor's Session to the context and registers a
// hook that saves it before the response header goes out.
func (m *Manager) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess := m.load(c)
			c.Set(sessionContextKey, sess)
			c.Response().Before(func() { m.persist(c, sess) })
			return next(c)
		}
	}
}

func (m *Manager) load(c echo.Context) *Session {
	ctx := c.Request().Context()
	claims, ok := c.Get(tokenContextKey).(*auth.SessionClaims)
	if !ok {
		return newSession(uuid.NewString())
	}
	data, err := m.store.Load(ctx, claims.ID)
	if err != nil {
		m.logger.Error(ctx, "session load failed", "error", err)
		return newSession(uuid.NewString())
	}
	if data == nil {
		return newSession(uuid.NewString())
	}
	return &Session{id: claims.ID, data: *data}
}

func (m *Manager) persist(c echo.Context, sess *Session) {
	ctx := c.Request().Context()

	if sess.staleID != "" {
		if err := m.store.Delete(ctx, sess.staleID); err != nil {
			m.logger.Error(ctx, "session delete failed", "error", err)
		}
		sess.staleID = ""
	}

	if sess.destroyed {
		if err := m.store.Delete(ctx, sess.id); err != nil {
			m.logger.Error(ctx, "session delete failed", "error", err)
		}
		c.SetCookie(m.cookie("", -1))
		return
	}

	if !sess.dirty {
		return
	}
	if err := m.store.Save(ctx, sess.id, &sess.data, m.opts.TTL); err != nil {
		m.logger.Error(ctx, "session save failed", "error", err)
		return
	}
	sess.dirty = false

	if !sess.isNew {
		return
	}
	token, err := m.tokens.Issue(sess.id, m.opts.TTL)
	if err != nil {
		m.logger.Error(ctx, "session token failed", "error", err)
		return
	}
	c.SetCookie(m.cookie(token, int(m.opts.TTL.Seconds())))
	sess.isNew = false
}

func (m *Manager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    value,
		Path:     m.opts.Path,
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	}
}

// Regenerate replaces the session with an empty one under a new id. Call it on
// login so an id planted before authentication is never promoted.
func (m *Manager) Regenerate(c echo.Context) *Session {
	sess := FromContext(c)
	sess.regenerate(uuid.NewString())
	return sess
}

// Destroy drops the session from the store and expires the cookie.
func (m *Manager) Destroy(c echo.Context) {
	FromContext(c).destroy()
}

// FromContext returns the request's session. Outside of Middleware it returns
// a detached empty session so callers never deal with nil.
func FromContext(c echo.Context) *Session {
	if sess, ok := c.Get(sessionContextKey).(*Session); ok {
		return sess
	}
	sess := newSession(uuid.NewString())
	c.Set(sessionContextKey, sess)
	return sess
}
