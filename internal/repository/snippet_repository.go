package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"snippets/internal/model"
)

// SnippetRepository defines snippet persistence operations.
type SnippetRepository interface {
	Create(ctx context.Context, snippet *model.Snippet) error
	Update(ctx context.Context, snippet *model.Snippet) error
	Delete(ctx context.Context, snippet *model.Snippet) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Snippet, error)
	List(ctx context.Context) ([]model.Snippet, error)
}

type snippetRepository struct {
	db *gorm.DB
}

// NewSnippetRepository creates a new snippet repository.
func NewSnippetRepository(db *gorm.DB) SnippetRepository {
	return &snippetRepository{db: db}
}

// Create creates a new snippet.
func (r *snippetRepository) Create(ctx context.Context, snippet *model.Snippet) error {
	return r.db.WithContext(ctx).Create(snippet).Error
}

// Update writes the editable columns of an existing snippet. It never inserts:
// a snippet deleted in the meantime yields gorm.ErrRecordNotFound.
func (r *snippetRepository) Update(ctx context.Context, snippet *model.Snippet) error {
	res := r.db.WithContext(ctx).
		Model(snippet).
		Select("title", "content", "author", "updated_at").
		Updates(snippet)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a snippet permanently.
func (r *snippetRepository) Delete(ctx context.Context, snippet *model.Snippet) error {
	return r.db.WithContext(ctx).Delete(snippet).Error
}

// FindByID finds a snippet by ID.
func (r *snippetRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Snippet, error) {
	var snippet model.Snippet
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&snippet).Error; err != nil {
		return nil, err
	}
	return &snippet, nil
}

// List returns every snippet, newest first.
func (r *snippetRepository) List(ctx context.Context) ([]model.Snippet, error) {
	var snippets []model.Snippet
	if err := r.db.WithContext(ctx).Order("created_at desc").Find(&snippets).Error; err != nil {
		return nil, err
	}
	return snippets, nil
}
