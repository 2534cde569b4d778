// Package model defines the view data passed to the site templates.
package model

import (
	"html/template"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/svmesh/svmesh-web/internal/config"
	"github.com/svmesh/svmesh-web/internal/routes"
	"github.com/svmesh/svmesh-web/internal/theme"
)

type NavLink struct {
	Title  string
	URL    string
	Active bool
}

type PageData struct {
	SiteName    string
	Tagline     string
	Description string

	// Title is the document title of the current view.
	Title string

	PageURL string

	Theme     string
	ThemeIcon template.HTML

	SyntaxCSS   template.CSS
	SyntaxTheme string

	Nav  []NavLink
	Meta config.MetaConfig

	// LiveReload is the event stream topic of the view, empty when disabled.
	LiveReload string

	Year int
}

func appConfig() *config.Config {
	if config.AppConfig == nil {
		return config.Default()
	}
	return config.AppConfig
}

func NewPageData(r *http.Request) *PageData {
	cfg := appConfig()
	currentTheme := theme.GetThemeFromRequest(r)
	syntaxTheme := theme.GetSyntaxThemeFromRequest(r)

	return &PageData{
		SiteName:    cfg.Site.Name,
		Tagline:     cfg.Site.Tagline,
		Description: cfg.Site.Description,
		Title:       cfg.Site.Name,
		PageURL:     r.URL.Path,
		Theme:       currentTheme,
		ThemeIcon:   template.HTML(theme.GetThemeIcon(currentTheme)),
		SyntaxTheme: syntaxTheme,
		SyntaxCSS:   theme.GenerateSyntaxCSS(syntaxTheme),
		Nav:         NavLinks(cfg.Navigation.Pages, r.URL.Path),
		Meta:        cfg.Meta,
		Year:        time.Now().Year(),
	}
}

// WithTitle sets the document title to "<title> | <site name>".
func (pd *PageData) WithTitle(title string) *PageData {
	if title != "" {
		pd.Title = title + " | " + pd.SiteName
	}
	return pd
}

func (pd *PageData) Keywords() string {
	return strings.Join(pd.Meta.Keywords, ", ")
}

// NavLinks builds the header menu: home, updates, then the configured pages.
func NavLinks(pages []string, current string) []NavLink {
	links := []NavLink{
		{Title: "Home", URL: routes.RootPath},
		{Title: "Updates", URL: routes.UpdatesPath},
	}
	for _, p := range pages {
		if p == "" || p == config.HomePage {
			continue
		}
		links = append(links, NavLink{Title: TitleFromName(p), URL: "/" + p})
	}
	for i := range links {
		links[i].Active = links[i].URL == current
	}
	return links
}

// TitleFromName turns a page name such as "getting-started" into
// "Getting Started".
func TitleFromName(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '-' || r == '_'
	})
	return cases.Title(language.English).String(strings.Join(words, " "))
}
