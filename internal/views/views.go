package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/Masterminds/sprig/v3"
	"github.com/labstack/echo/v4"

	"github.com/frontinsight/loginpage/internal/form"
)

//go:embed templates/*.html
var templateFS embed.FS

// Layout is the full-viewport wrapper that centers a single child on
// both axes. Class and Style are appended to the wrapper's defaults.
type Layout struct {
	Class string
	Style template.CSS
}

// LoginForm is the data of the login card.
type LoginForm struct {
	Title             string
	Token             string
	View              form.View
	ForgotPasswordURL string
	SignUpURL         string
}

// Page composes the layout and the login card.
type Page struct {
	Title  string
	Layout Layout
	Form   LoginForm
}

type layoutData struct {
	Title  string
	Layout Layout
	Body   template.HTML
}

// Renderer renders the embedded templates. It implements echo.Renderer.
type Renderer struct {
	tmpl *template.Template
}

func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("views").
		Option("missingkey=zero").
		Funcs(sprig.HtmlFuncMap()).
		ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// RenderLayout wraps body, which must already be safe HTML, in the
// centering layout.
func (r *Renderer) RenderLayout(w io.Writer, title string, layout Layout, body template.HTML) error {
	return r.tmpl.ExecuteTemplate(w, "layout", layoutData{Title: title, Layout: layout, Body: body})
}

func (r *Renderer) RenderPage(w io.Writer, p Page) error {
	if p.Form.Title == "" {
		p.Form.Title = "Welcome"
	}
	var body bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&body, "login_form", p.Form); err != nil {
		return fmt.Errorf("render login form: %w", err)
	}
	return r.RenderLayout(w, p.Title, p.Layout, template.HTML(body.String()))
}

func (r *Renderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	if p, ok := data.(Page); ok {
		return r.RenderPage(w, p)
	}
	return r.tmpl.ExecuteTemplate(w, name, data)
}
