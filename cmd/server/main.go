package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"snippets/docs"
	"snippets/internal/auth"
	"snippets/internal/cache"
	"snippets/internal/config"
	"snippets/internal/db"
	"snippets/internal/handler"
	"snippets/internal/logging"
	"snippets/internal/repository"
	"snippets/internal/router"
	"snippets/internal/service"
	"snippets/internal/session"
	"snippets/internal/view"
	"snippets/web"
)

// @title Snippets API
// @version 1.0
// @description Read-only access to stored snippets.
// @BasePath /api
// @schemes http
func main() {
	cfg := config.Load()
	logger := logging.New(os.Stdout, cfg.IsProduction())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error(context.Background(), "server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger logging.Logger) error {
	store, err := db.Open(ctx, cfg.DBDriver, cfg.DBDSN, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			logger.Error(context.Background(), "database close", "error", err)
		}
	}()

	sessionStore, closeSessions, err := openSessionStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeSessions()

	sessions := session.NewManager(sessionStore, auth.NewSessionTokens(cfg.SessionSecret), session.Options{
		CookieName: cfg.SessionName,
		Path:       cfg.BaseURL,
		TTL:        cfg.SessionTTL,
		Secure:     cfg.IsProduction(),
	}, logger)

	renderer, err := view.New(web.Views(), cfg.BaseURL)
	if err != nil {
		return fmt.Errorf("parse views: %w", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(store.DB)
	snippetRepo := repository.NewSnippetRepository(store.DB)

	// Initialize services
	authService := service.NewAuthService(userRepo)
	snippetService := service.NewSnippetService(snippetRepo)

	// Initialize handlers
	snippetHandler := handler.NewSnippetHandler(snippetService, cfg.BaseURL)
	accountHandler := handler.NewAccountHandler(authService, sessions, logger, cfg.BaseURL)
	apiHandler := handler.NewAPIHandler(snippetService)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer
	e.HTTPErrorHandler = handler.NewErrorHandler(logger, cfg.BaseURL, cfg.IsProduction())
	if cfg.IsProduction() {
		e.IPExtractor = echo.ExtractIPFromXFFHeader()
	}

	router.Register(e, cfg, logger, sessions, snippetHandler, accountHandler, apiHandler)

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}
	docs.SwaggerInfo.BasePath = view.JoinURL(cfg.BaseURL, "api")

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "server listening", "port", cfg.Port, "base_url", cfg.BaseURL, "env", cfg.Env)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server start: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info(context.Background(), "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

func openSessionStore(ctx context.Context, cfg *config.Config, logger logging.Logger) (session.Store, func(), error) {
	if cfg.SessionStore == "memory" {
		logger.Warn(ctx, "using in-memory session store")
		return session.NewMemoryStore(), func() {}, nil
	}

	client := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := client.Ping(ctx); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}
	logger.Info(ctx, "session store connected", "addr", cfg.RedisAddr)

	return session.NewRedisStore(client), func() {
		if err := client.Close(); err != nil {
			logger.Error(context.Background(), "redis close", "error", err)
		}
	}, nil
}
