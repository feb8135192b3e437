// Package view renders the booking site's HTML.  Templates are embedded in
// the binary; every page is parsed together with the shared layout.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fyyur-trivia/internal/middleware"
)

//go:embed templates
var files embed.FS

// Page is the data passed to every template.  Flashes are filled in by the
// renderer.
type Page struct {
	Title    string
	Flashes  []string
	Data     any
	Form     any
	Problems map[string]string
}

// Renderer implements echo.Renderer over the embedded templates.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses every page under templates/{pages,forms,errors}.
// Templates are addressed without the extension, e.g. "pages/venues".
func NewRenderer() (*Renderer, error) {
	layout, err := template.New("layout").Funcs(Funcs()).ParseFS(files, "templates/layouts/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	r := &Renderer{pages: map[string]*template.Template{}}
	for _, dir := range []string{"pages", "forms", "errors"} {
		matches, err := fs.Glob(files, "templates/"+dir+"/*.html")
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			t, err := template.Must(layout.Clone()).ParseFS(files, m)
			if err != nil {
				return nil, fmt.Errorf("parse %s: %w", m, err)
			}
			name := dir + "/" + strings.TrimSuffix(path.Base(m), ".html")
			r.pages[name] = t
		}
	}
	return r, nil
}

// Render implements echo.Renderer.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("view: no template %q", name)
	}
	switch p := data.(type) {
	case Page:
		p.Flashes = middleware.Flashes(c)
		data = p
	case *Page:
		p.Flashes = middleware.Flashes(c)
	}
	return t.ExecuteTemplate(w, "base", data)
}

// Has reports whether a page is registered.
func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}
