// utils/render.go
package utils

import (
	"html/template"
	"io"

	"github.com/labstack/echo/v4"
)

// Renderer plugs the views directory into Echo. Every page is a named
// template defined in views/*.html.
type Renderer struct {
	templates *template.Template
}

// NewRenderer parses the view templates from glob.
func NewRenderer(glob string) (*Renderer, error) {
	t, err := template.New("").Funcs(template.FuncMap{
		"money": func(v float64) string {
			return template.HTMLEscapeString(formatMoney(v))
		},
		"deref": func(p *float64) float64 {
			if p == nil {
				return 0
			}
			return *p
		},
	}).ParseGlob(glob)
	if err != nil {
		return nil, err
	}
	return &Renderer{templates: t}, nil
}

// Render implements echo.Renderer.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}
