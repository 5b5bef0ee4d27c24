// Package views renders the HTML pages. Every page template is parsed together with
// base.html and the shared includes and executed through the "base" layout.
package views

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/anonto42/nano-blog/backend/internal/middleware"
	"github.com/labstack/echo/v4"
)

//go:embed templates
var templateFS embed.FS

const (
	layoutFile   = "templates/base.html"
	includesGlob = "templates/includes/*.html"
)

// Renderer implements echo.Renderer.
type Renderer struct {
	templates map[string]*template.Template
}

var funcs = template.FuncMap{
	"mediaURL": func(p string) string { return "/media/" + strings.TrimPrefix(p, "/") },
	"date":     func(t time.Time) string { return t.Format("2 January 2006 15:04") },
}

// NewRenderer parses every page under templates/, keyed by its path relative to templates/
// (for example "index.html" or "misc/404.html").
func NewRenderer() (*Renderer, error) {
	r := &Renderer{templates: map[string]*template.Template{}}

	err := fs.WalkDir(templateFS, "templates", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || p == layoutFile || strings.HasPrefix(p, "templates/includes/") || path.Ext(p) != ".html" {
			return nil
		}
		tmpl, err := template.New(path.Base(p)).Funcs(funcs).ParseFS(templateFS, layoutFile, includesGlob, p)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", p, err)
		}
		r.templates[strings.TrimPrefix(p, "templates/")] = tmpl
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Render executes the page called name. Map data gets the current viewer under "viewer"
// and the form token under "csrf".
func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	if m, ok := data.(echo.Map); ok && c != nil {
		if _, set := m["viewer"]; !set {
			m["viewer"] = middleware.CurrentUser(c)
		}
		if _, set := m["csrf"]; !set {
			m["csrf"] = middleware.CSRFToken(c)
		}
	}
	return tmpl.ExecuteTemplate(w, "base", data)
}
