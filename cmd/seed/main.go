package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"snippets/internal/config"
	"snippets/internal/db"
	apperrors "snippets/internal/errors"
	"snippets/internal/logging"
	"snippets/internal/repository"
	"snippets/internal/service"
)

// SeedData is the structure of the seed file.
type SeedData struct {
	Users    []SeedUser    `json:"users"`
	Snippets []SeedSnippet `json:"snippets"`
}

// SeedUser is an account to register.
type SeedUser struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SeedSnippet is a snippet to create on behalf of Author.
type SeedSnippet struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Author  string `json:"author"`
}

func main() {
	source := flag.String("source", "seed.json", "path or http(s) URL of the seed JSON")
	flag.Parse()

	cfg := config.Load()
	logger := logging.New(os.Stdout, cfg.IsProduction())
	ctx := context.Background()

	if err := run(ctx, cfg, logger, *source); err != nil {
		logger.Error(ctx, "seed failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger logging.Logger, source string) error {
	data, err := loadSeed(ctx, source)
	if err != nil {
		return err
	}
	logger.Info(ctx, "seed loaded", "source", source, "users", len(data.Users), "snippets", len(data.Snippets))

	store, err := db.Open(ctx, cfg.DBDriver, cfg.DBDSN, logger)
	if err != nil {
		return err
	}
	defer store.Close(ctx)

	authService := service.NewAuthService(repository.NewUserRepository(store.DB))
	snippetService := service.NewSnippetService(repository.NewSnippetRepository(store.DB))

	created, skipped, err := seedUsers(ctx, authService, data.Users)
	if err != nil {
		return err
	}
	snippets, err := seedSnippets(ctx, snippetService, data.Snippets)
	if err != nil {
		return err
	}

	logger.Info(ctx, "seed completed", "users_created", created, "users_skipped", skipped, "snippets_created", snippets)
	return nil
}

// loadSeed reads the seed JSON from a local file or an http(s) URL.
func loadSeed(ctx context.Context, source string) (*SeedData, error) {
	var r io.ReadCloser
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch seed: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("fetch seed: status code %d", resp.StatusCode)
		}
		r = resp.Body
	} else {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("open seed: %w", err)
		}
		r = f
	}
	defer r.Close()

	return decodeSeed(r)
}

func decodeSeed(r io.Reader) (*SeedData, error) {
	var data SeedData
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("parse seed JSON: %w", err)
	}
	return &data, nil
}

// seedUsers registers every user, skipping usernames that already exist.
func seedUsers(ctx context.Context, auth service.AuthService, users []SeedUser) (created, skipped int, err error) {
	for _, u := range users {
		if _, err := auth.Register(ctx, u.Username, u.Password); err != nil {
			if errors.Is(err, apperrors.ErrUserAlreadyExists) {
				skipped++
				continue
			}
			return created, skipped, fmt.Errorf("register %q: %w", u.Username, err)
		}
		created++
	}
	return created, skipped, nil
}

func seedSnippets(ctx context.Context, svc service.SnippetService, snippets []SeedSnippet) (int, error) {
	created := 0
	for _, s := range snippets {
		if _, err := svc.Create(ctx, s.Author, s.Title, s.Content); err != nil {
			return created, fmt.Errorf("create snippet %q: %w", s.Title, err)
		}
		created++
	}
	return created, nil
}
