package web

import (
	"embed"
	"html/template"
	"io"
	"io/fs"
	"net/http"

	"github.com/kbukum/voxscribe/display"
	"github.com/kbukum/voxscribe/form"
)

//go:embed assets/templates/*.html
var templates embed.FS

//go:embed assets/static
var static embed.FS

type pageData struct {
	View           display.View
	Dictation      form.Status
	MaxUploadBytes int64
	MaxUploadMB    int64
}

type pageRenderer struct {
	tmpl *template.Template
}

func newPageRenderer() (*pageRenderer, error) {
	tmpl, err := template.ParseFS(templates, "assets/templates/*.html")
	if err != nil {
		return nil, err
	}
	return &pageRenderer{tmpl: tmpl}, nil
}

func (p *pageRenderer) render(w io.Writer, data pageData) error {
	return p.tmpl.ExecuteTemplate(w, "index.html", data)
}

func staticFS() http.FileSystem {
	sub, err := fs.Sub(static, "assets/static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
