// Package view renders server-side HTML pages inside the shared layout.
package view

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"snippets/internal/session"
)

const layoutFile = "layouts/default.html"

// Page is the value every template executes against.
type Page struct {
	BaseURL string
	User    *session.User
	Flash   *session.Flash
	Data    any
}

// Renderer implements echo.Renderer. Each page template is parsed together
// with the layout; the page's name is its path without the .html suffix.
type Renderer struct {
	pages   map[string]*template.Template
	baseURL string
}

var _ echo.Renderer = (*Renderer)(nil)

// New parses every page under fsys.
func New(fsys fs.FS, baseURL string) (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template), baseURL: baseURL}

	layout, err := template.New("").Funcs(r.funcs()).ParseFS(fsys, layoutFile)
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	err = fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != ".html" || p == layoutFile {
			return nil
		}
		t, err := template.Must(layout.Clone()).ParseFS(fsys, p)
		if err != nil {
			return fmt.Errorf("parse %s: %w", p, err)
		}
		r.pages[strings.TrimSuffix(p, ".html")] = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Render executes the named page. Rendering a regular page consumes the
// session's pending flash message; error pages leave it for the next page.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("view %q not found", name)
	}

	sess := session.FromContext(c)
	page := Page{
		BaseURL: r.baseURL,
		User:    sess.User(),
		Data:    data,
	}
	if !strings.HasPrefix(name, "errors/") {
		page.Flash = sess.PopFlash()
	}
	return t.ExecuteTemplate(w, "layout", page)
}

// URL joins p onto the base URL.
func (r *Renderer) URL(p string) string {
	return JoinURL(r.baseURL, p)
}

func (r *Renderer) funcs() template.FuncMap {
	return template.FuncMap{
		"url": r.URL,
		"date": func(t time.Time) string {
			return t.Format("2006-01-02 15:04")
		},
	}
}

// JoinURL joins a base prefix ending in "/" and a relative path.
func JoinURL(base, p string) string {
	return base + strings.TrimPrefix(p, "/")
}
