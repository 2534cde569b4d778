// Package theme handles the light/dark theme cookie and syntax highlighting CSS.
package theme

import (
	"html/template"
	"net/http"
	"slices"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/svmesh/svmesh-web/internal/cache"
	"github.com/svmesh/svmesh-web/internal/config"
)

// Code blocks and the generated stylesheets share one formatter so the CSS
// classes always line up with the rendered markup.
var formatter = html.New(
	html.WithClasses(true),
	html.TabWidth(4),
	html.WithLineNumbers(true),
	html.WrapLongLines(true),
)

var siteThemes = []string{config.LightTheme, config.DarkTheme}

func settings() config.ThemeConfig {
	if config.AppConfig == nil {
		return config.Default().Theme
	}
	return config.AppConfig.Theme
}

// GetThemeFromRequest returns the theme named by the theme cookie, or the
// configured default when the cookie is absent or names no known theme.
func GetThemeFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(config.CookieTheme)
	if err != nil || !slices.Contains(siteThemes, cookie.Value) {
		return settings().Default
	}
	return cookie.Value
}

// Opposite returns the theme a toggle switches to.
func Opposite(theme string) string {
	if theme == config.DarkTheme {
		return config.LightTheme
	}
	return config.DarkTheme
}

// GetDefaultSyntaxTheme maps a site theme to its chroma style. Unknown
// site themes map to "".
func GetDefaultSyntaxTheme(theme string) string {
	switch syntax := settings().SyntaxHighlighting; theme {
	case config.LightTheme:
		return syntax.DefaultLight
	case config.DarkTheme:
		return syntax.DefaultDark
	}
	return ""
}

func GetSyntaxThemeFromRequest(r *http.Request) string {
	return GetDefaultSyntaxTheme(GetThemeFromRequest(r))
}

// GetSyntaxThemes lists the chroma styles by name, sorted.
func GetSyntaxThemes() []string {
	names := styles.Names()
	slices.Sort(names)
	return names
}

// IsSyntaxTheme reports whether name is a registered chroma style.
func IsSyntaxTheme(name string) bool {
	_, ok := styles.Registry[name]
	return ok
}

func GetFormatter() *html.Formatter {
	return formatter
}

// GenerateSyntaxCSS returns the stylesheet for a chroma style, generating
// and caching it on first use.
func GenerateSyntaxCSS(name string) template.CSS {
	if css, ok := cache.GetSyntaxCSS(name); ok {
		return css
	}

	style := styles.Get(name)

	var sb strings.Builder
	if needsDarkText(style) {
		sb.WriteString(".chroma { color: #181818; }\n")
	}
	formatter.WriteCSS(&sb, style)

	css := template.CSS(sb.String())
	cache.SetSyntaxCSS(name, css)
	return css
}

// needsDarkText reports whether style leaves the text colour unset over a
// light background, which would otherwise inherit the dark theme's text.
func needsDarkText(style *chroma.Style) bool {
	entry := style.Get(chroma.Background)
	if entry.Colour.IsSet() {
		return false
	}
	bg := entry.Background
	luminance := 0.299*float64(bg.Red()) + 0.587*float64(bg.Green()) + 0.114*float64(bg.Blue())
	return luminance > 127.5
}

// GetThemeIcon returns the toggle icon shown while theme is active: the
// icon of the theme a click switches to.
func GetThemeIcon(theme string) string {
	if theme == config.LightTheme {
		return config.DarkThemeIcon
	}
	return config.LightThemeIcon
}
