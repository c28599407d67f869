package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Snippet is a short text note. Author is a copy of the creator's username,
// not a reference to the users table.
type Snippet struct {
	Base
	Title   string `json:"title" gorm:"size:20;not null" validate:"required,max=20"`
	Content string `json:"content" gorm:"type:text;not null" validate:"required"`
	Author  string `json:"author" gorm:"size:255;not null;index" validate:"required"`
}

// BeforeSave trims text fields and enforces the schema rules.
func (s *Snippet) BeforeSave(tx *gorm.DB) error {
	s.Title = strings.TrimSpace(s.Title)
	s.Content = strings.TrimSpace(s.Content)
	s.Author = strings.TrimSpace(s.Author)
	return validateStruct(s)
}

// SnippetPatch carries the fields present in an update request. A nil field
// was absent and is left untouched.
type SnippetPatch struct {
	Author  *string
	Title   *string
	Content *string
}

// Empty reports whether no field was supplied at all.
func (p SnippetPatch) Empty() bool {
	return p.Author == nil && p.Title == nil && p.Content == nil
}

// Apply copies present fields onto s and reports whether any stored value
// changed. Values are compared after trimming, the same way they are stored.
func (p SnippetPatch) Apply(s *Snippet) bool {
	changed := false
	set := func(dst *string, v *string) {
		if v == nil {
			return
		}
		trimmed := strings.TrimSpace(*v)
		if trimmed != *dst {
			*dst = trimmed
			changed = true
		}
	}
	set(&s.Author, p.Author)
	set(&s.Title, p.Title)
	set(&s.Content, p.Content)
	return changed
}

// SnippetView is the plain record handed to templates and the JSON API.
type SnippetView struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// View converts the stored snippet into a display record.
func (s *Snippet) View() SnippetView {
	return SnippetView{
		ID:        s.ID,
		Title:     s.Title,
		Content:   s.Content,
		Author:    s.Author,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}
