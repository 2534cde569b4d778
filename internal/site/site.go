// Package site renders the public pages from content fetched through the
// content API.
package site

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"path"

	"github.com/rs/zerolog"

	"github.com/svmesh/svmesh-web/internal/config"
	"github.com/svmesh/svmesh-web/internal/content"
	"github.com/svmesh/svmesh-web/internal/model"
	"github.com/svmesh/svmesh-web/internal/routes"
	"github.com/svmesh/svmesh-web/internal/util"
)

var siteLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	siteLogger = l
}

//go:embed templates/*.html
var templateFS embed.FS

type Site struct {
	content   *content.Client
	cfg       *config.Config
	templates map[string]*template.Template
}

// New parses the templates once. Each view is the layout plus the shared
// partials plus its own content template.
func New(client *content.Client, cfg *config.Config) (*Site, error) {
	s := &Site{
		content:   client,
		cfg:       cfg,
		templates: make(map[string]*template.Template),
	}

	for _, name := range []string{config.TemplateHome, config.TemplateUpdates, config.TemplatePage, config.TemplateError} {
		tmpl, err := template.New(config.TemplateLayout).ParseFS(templateFS,
			path.Join(config.TemplatesLocalDir, config.TemplateLayout),
			path.Join(config.TemplatesLocalDir, config.TemplatePartials),
			path.Join(config.TemplatesLocalDir, name),
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		s.templates[name] = tmpl
	}

	return s, nil
}

func (s *Site) Register(mux *http.ServeMux) {
	mux.HandleFunc(routes.HomePath, s.ServeHome)
	mux.HandleFunc(routes.UpdatesPath, s.ServeUpdates)
	mux.HandleFunc(routes.PagePath, s.ServePage)
	mux.HandleFunc(routes.RootPath, s.ServeNotFound)
	mux.HandleFunc(routes.ThemeToggle, s.ServeThemeToggle)
	mux.HandleFunc(routes.SyntaxCSS, s.ServeSyntaxCSS)
}

// pageData is the shared layout data of a view subscribed to topic.
func (s *Site) pageData(r *http.Request, topic string) *model.PageData {
	pd := model.NewPageData(r)
	if s.cfg.Content.WatchInterval > 0 {
		pd.LiveReload = topic
	}
	return pd
}

// render executes a view into a buffer so a template failure never leaves
// a half-written page. Identical output is answered with 304.
func (s *Site) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.templates[name].ExecuteTemplate(&buf, config.TemplateLayout, data); err != nil {
		siteLogger.Error().Err(err).Str("template", name).Msg("Error executing template")
		http.Error(w, config.ErrInternalServer, http.StatusInternalServerError)
		return
	}

	etag := util.ETag(buf.Bytes())
	w.Header().Set(config.HETag, etag)
	if status == http.StatusOK && r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set(config.HCType, config.CTypeHTML)
	w.WriteHeader(status)
	if r.Method != http.MethodHead {
		w.Write(buf.Bytes())
	}
}

func (s *Site) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	data := struct {
		*model.PageData
		Status  int
		Message string
	}{
		PageData: model.NewPageData(r).WithTitle(http.StatusText(status)),
		Status:   status,
		Message:  message,
	}
	s.render(w, r, status, config.TemplateError, data)
}

func readMethod(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return true
	}
	w.Header().Set("Allow", "GET, HEAD")
	http.Error(w, config.HTTPErrMethodNotAllowed, http.StatusMethodNotAllowed)
	return false
}
