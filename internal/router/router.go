package router

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"snippets/internal/config"
	"snippets/internal/handler"
	"snippets/internal/logging"
	"snippets/internal/session"
	"snippets/web"
)

// Register wires middleware and routes.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	logger logging.Logger,
	sessions *session.Manager,
	snippetHandler *handler.SnippetHandler,
	accountHandler *handler.AccountHandler,
	apiHandler *handler.APIHandler,
) {
	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	e.Use(middleware.SecureWithConfig(secureConfig(cfg.IsProduction())))
	if !cfg.IsProduction() {
		e.Use(requestLogger(logger))
	}
	e.Use(sessions.TokenMiddleware())
	e.Use(sessions.Middleware())

	e.Validator = &CustomValidator{validator: validator.New()}

	root := e.Group(strings.TrimSuffix(cfg.BaseURL, "/"))
	root.StaticFS("/", web.Public())

	root.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	root.GET("/swagger/*", echoSwagger.WrapHandler)

	api := root.Group("/api")
	api.GET("/snippets", apiHandler.ListSnippets)
	api.GET("/snippets/:id", apiHandler.GetSnippet, snippetHandler.LoadSnippet)

	root.GET("/", snippetHandler.Index)

	snippets := root.Group("/snippets")
	snippets.GET("", snippetHandler.Index)
	snippets.GET("/create", snippetHandler.Create)
	snippets.POST("/create", snippetHandler.CreatePost, snippetHandler.Authorize)

	doc := snippets.Group("/:id", snippetHandler.LoadSnippet)
	doc.GET("/update", snippetHandler.Update)
	doc.POST("/update", snippetHandler.UpdatePost, snippetHandler.AuthorizeAuthor)
	doc.GET("/view", snippetHandler.Show)
	doc.GET("/delete", snippetHandler.Delete)
	doc.POST("/delete", snippetHandler.DeletePost, snippetHandler.AuthorizeAuthor)

	user := root.Group("/user")
	user.GET("/login", accountHandler.Login)
	user.POST("/login", accountHandler.LoginPost)
	user.GET("/register", accountHandler.Register)
	user.POST("/register", accountHandler.RegisterPost)
	user.GET("/logout", accountHandler.Logout)

	// Always keep this last.
	e.RouteNotFound("/*", func(c echo.Context) error {
		return echo.ErrNotFound
	})
}

func secureConfig(production bool) middleware.SecureConfig {
	cfg := middleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		ReferrerPolicy:        "no-referrer",
		ContentSecurityPolicy: "default-src 'self'; script-src 'self'; style-src 'self'; img-src 'self' data:; object-src 'none'; base-uri 'self'; form-action 'self'; frame-ancestors 'none'",
	}
	if production {
		cfg.HSTSMaxAge = 15552000
	}
	return cfg
}

// requestLogger writes one line per request, similar to a dev access log.
func requestLogger(logger logging.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := slog.LevelInfo
			if v.Error != nil {
				level = slog.LevelWarn
			}
			logRequest(c.Request().Context(), logger, level, v)
			return nil
		},
	})
}

func logRequest(ctx context.Context, logger logging.Logger, level slog.Level, v middleware.RequestLoggerValues) {
	args := []any{"method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency, "request_id", v.RequestID}
	if level == slog.LevelWarn {
		logger.Warn(ctx, "request", append(args, "error", v.Error)...)
		return
	}
	logger.Info(ctx, "request", args...)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
