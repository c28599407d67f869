package service

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"snippets/internal/errors"
	"snippets/internal/model"
	"snippets/internal/repository"
)

// SnippetService exposes snippet operations.
type SnippetService interface {
	List(ctx context.Context) ([]model.SnippetView, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Snippet, error)
	Create(ctx context.Context, author, title, content string) (*model.Snippet, error)
	// Update applies patch and writes only when a value actually changed.
	Update(ctx context.Context, snippet *model.Snippet, patch model.SnippetPatch) (bool, error)
	Delete(ctx context.Context, snippet *model.Snippet) error
}

type snippetService struct {
	repo repository.SnippetRepository
}

// NewSnippetService builds a SnippetService.
func NewSnippetService(repo repository.SnippetRepository) SnippetService {
	return &snippetService{repo: repo}
}

func (s *snippetService) List(ctx context.Context) ([]model.SnippetView, error) {
	snippets, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list snippets: %w", err)
	}
	views := make([]model.SnippetView, 0, len(snippets))
	for i := range snippets {
		views = append(views, snippets[i].View())
	}
	return views, nil
}

func (s *snippetService) Get(ctx context.Context, id uuid.UUID) (*model.Snippet, error) {
	snippet, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrSnippetNotFound
		}
		return nil, fmt.Errorf("find snippet: %w", err)
	}
	return snippet, nil
}

func (s *snippetService) Create(ctx context.Context, author, title, content string) (*model.Snippet, error) {
	snippet := &model.Snippet{
		Title:   title,
		Content: content,
		Author:  author,
	}
	if err := s.repo.Create(ctx, snippet); err != nil {
		return nil, wrapWriteErr("create snippet", err)
	}
	return snippet, nil
}

func (s *snippetService) Update(ctx context.Context, snippet *model.Snippet, patch model.SnippetPatch) (bool, error) {
	if patch.Empty() || !patch.Apply(snippet) {
		return false, nil
	}
	if err := s.repo.Update(ctx, snippet); err != nil {
		return false, wrapWriteErr("update snippet", err)
	}
	return true, nil
}

func (s *snippetService) Delete(ctx context.Context, snippet *model.Snippet) error {
	if err := s.repo.Delete(ctx, snippet); err != nil {
		return fmt.Errorf("delete snippet: %w", err)
	}
	return nil
}

// wrapWriteErr keeps validation errors unwrapped so callers can show them.
// A write that matched no row means the snippet is gone.
func wrapWriteErr(op string, err error) error {
	var verr *model.ValidationError
	if stderrors.As(err, &verr) {
		return verr
	}
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return errors.ErrSnippetNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
