package app

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin/render"

	"github.com/simp-lee/bookshelf/internal/route"
)

// TemplateRenderer is a gin HTML renderer with layout inheritance.
//
// The filesystem holds templates/layouts/*.html and templates/partials/*.html,
// which form a shared base set, plus one page template per view, for example
// templates/books/list.html. Each page is compiled on a clone of the base set
// so pages can redefine the layout's blocks without clashing.
//
// In debug mode templates are parsed again on every request so edits show up
// without a restart.
type TemplateRenderer struct {
	templates map[string]*template.Template
	fs        fs.FS
	funcMap   template.FuncMap
	debug     bool
}

var _ render.HTMLRender = (*TemplateRenderer)(nil)

// NewTemplateRenderer creates a renderer over fsys. Links produced by the
// href and static template functions are resolved against table.
func NewTemplateRenderer(fsys fs.FS, debug bool, table *route.Table) (*TemplateRenderer, error) {
	r := &TemplateRenderer{
		fs:      fsys,
		funcMap: templateFuncMap(table),
		debug:   debug,
	}

	if !debug {
		templates, err := r.parseAll()
		if err != nil {
			return nil, fmt.Errorf("parse templates: %w", err)
		}
		r.templates = templates
	}

	return r, nil
}

// Instance implements render.HTMLRender. name is relative to templates/.
func (r *TemplateRenderer) Instance(name string, data any) render.Render {
	templates := r.templates
	if r.debug {
		var err error
		if templates, err = r.parseAll(); err != nil {
			return &HTMLInstance{Name: name, err: err}
		}
	}
	return &HTMLInstance{Template: templates[name], Name: name, Data: data}
}

func (r *TemplateRenderer) parseAll() (map[string]*template.Template, error) {
	var shared []string
	for _, pattern := range []string{"templates/layouts/*.html", "templates/partials/*.html"} {
		files, err := fs.Glob(r.fs, pattern)
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", pattern, err)
		}
		shared = append(shared, files...)
	}

	base := template.New("").Funcs(r.funcMap)
	for _, f := range shared {
		if err := parseFile(base, r.fs, f, f); err != nil {
			return nil, err
		}
	}

	pages, err := r.pageFiles()
	if err != nil {
		return nil, fmt.Errorf("discover pages: %w", err)
	}

	out := make(map[string]*template.Template, len(pages))
	for _, f := range pages {
		t, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone base for %s: %w", f, err)
		}
		name := strings.TrimPrefix(f, "templates/")
		if err := parseFile(t, r.fs, f, name); err != nil {
			return nil, err
		}
		out[name] = t
	}
	return out, nil
}

func parseFile(set *template.Template, fsys fs.FS, path, name string) error {
	b, err := fs.ReadFile(fsys, path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if _, err := set.New(name).Parse(string(b)); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// pageFiles lists the .html files under templates/ outside layouts/ and partials/.
func (r *TemplateRenderer) pageFiles() ([]string, error) {
	var pages []string
	err := fs.WalkDir(r.fs, "templates", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, ".html") {
			return nil
		}
		rel := strings.TrimPrefix(p, "templates/")
		if strings.HasPrefix(rel, "layouts/") || strings.HasPrefix(rel, "partials/") {
			return nil
		}
		pages = append(pages, p)
		return nil
	})
	return pages, err
}

func templateFuncMap(table *route.Table) template.FuncMap {
	return template.FuncMap{
		// href links to a named route, "#" when the name is unknown.
		"href": func(name string) string {
			h, err := table.Href(name)
			if err != nil {
				return "#"
			}
			return h
		},
		"static": func(p string) string {
			return table.Join("/static/" + strings.TrimPrefix(p, "/"))
		},
		"comma": func(n any) string {
			switch v := n.(type) {
			case int:
				return humanize.Comma(int64(v))
			case int64:
				return humanize.Comma(v)
			case uint:
				return humanize.Comma(int64(v))
			default:
				return fmt.Sprint(v)
			}
		},
		"ago": func(t time.Time) string {
			return humanize.Time(t)
		},
		"formatDate": func(t time.Time) string {
			return t.Format("2006-01-02")
		},
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
	}
}

// HTMLInstance renders one page template. It is returned by
// TemplateRenderer.Instance.
type HTMLInstance struct {
	Template *template.Template
	Name     string
	Data     any
	err      error
}

const htmlContentType = "text/html; charset=utf-8"

// Render implements render.Render.
func (h *HTMLInstance) Render(w http.ResponseWriter) error {
	h.WriteContentType(w)
	if h.err != nil {
		return h.err
	}
	if h.Template == nil {
		return fmt.Errorf("template %q not found", h.Name)
	}
	return h.Template.ExecuteTemplate(w, h.Name, h.Data)
}

// WriteContentType sets an HTML Content-Type unless one is already set.
func (h *HTMLInstance) WriteContentType(w http.ResponseWriter) {
	if len(w.Header()["Content-Type"]) == 0 {
		w.Header()["Content-Type"] = []string{htmlContentType}
	}
}
