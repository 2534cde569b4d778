package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/svmesh/svmesh-web/internal/config"
	"github.com/svmesh/svmesh-web/internal/content"
	"github.com/svmesh/svmesh-web/internal/model"
	"github.com/svmesh/svmesh-web/internal/render"
	"github.com/svmesh/svmesh-web/internal/routes"
	"github.com/svmesh/svmesh-web/internal/theme"
	"github.com/svmesh/svmesh-web/internal/util"
)

type homeData struct {
	*model.PageData
	Hero         model.PageView
	Updates      []model.UpdateCard
	UpdatesError string
	NoUpdates    string
}

type updatesData struct {
	*model.PageData
	Updates      []model.UpdateCard
	UpdatesError string
	NoUpdates    string
}

type pageData struct {
	*model.PageData
	Page model.PageView
}

// ServeHome renders the hero from the home page and the most recent
// updates. Either half failing leaves the other half on the page.
func (s *Site) ServeHome(w http.ResponseWriter, r *http.Request) {
	if !readMethod(w, r) {
		return
	}

	view := newView(r.Context(), s.content)

	var (
		home       content.ParsedPage
		homeErr    error
		recent     []content.UpdatePost
		updatesErr error
	)
	var g errgroup.Group
	g.Go(func() error {
		home, homeErr = view.Page(config.HomePage)
		return nil
	})
	g.Go(func() error {
		recent, updatesErr = view.RecentUpdates(s.cfg.Content.RecentUpdates)
		return nil
	})
	g.Wait()

	if errors.Is(r.Context().Err(), context.Canceled) {
		return
	}

	pd := s.pageData(r, routes.TopicHome)
	data := homeData{
		PageData:  pd,
		Hero:      s.fallbackHero(),
		NoUpdates: config.MsgNoUpdates,
	}

	if homeErr != nil {
		siteLogger.Warn().Err(homeErr).Msg("Home page content unavailable, using site defaults")
	} else {
		data.Hero = s.pageView(config.HomePage, home, pd.SyntaxTheme)
	}

	if updatesErr != nil {
		data.UpdatesError = fmt.Sprintf(config.ErrLoadingUpdatesFmt, updatesErr.Error())
	} else {
		data.Updates = s.cards(recent, pd.SyntaxTheme, false)
	}

	s.render(w, r, http.StatusOK, config.TemplateHome, data)
}

func (s *Site) ServeUpdates(w http.ResponseWriter, r *http.Request) {
	if !readMethod(w, r) {
		return
	}

	view := newView(r.Context(), s.content)
	posts, err := view.Updates()
	if errors.Is(r.Context().Err(), context.Canceled) {
		return
	}

	pd := s.pageData(r, routes.TopicUpdates).WithTitle("Updates")
	data := updatesData{
		PageData:  pd,
		NoUpdates: config.MsgNoUpdates,
	}
	if err != nil {
		data.UpdatesError = fmt.Sprintf(config.ErrLoadingUpdatesFmt, err.Error())
	} else {
		data.Updates = s.cards(posts, pd.SyntaxTheme, true)
	}

	s.render(w, r, http.StatusOK, config.TemplateUpdates, data)
}

func (s *Site) ServePage(w http.ResponseWriter, r *http.Request) {
	if !readMethod(w, r) {
		return
	}

	name := r.PathValue("page")
	if name == config.HomePage {
		http.Redirect(w, r, routes.RootPath, http.StatusMovedPermanently)
		return
	}

	page, err := newView(r.Context(), s.content).Page(name)
	if err != nil {
		if errors.Is(r.Context().Err(), context.Canceled) {
			return
		}
		status, message := pageErrorStatus(err)
		s.renderError(w, r, status, message)
		return
	}

	pd := s.pageData(r, routes.PageTopic(name))
	view := s.pageView(name, page, pd.SyntaxTheme)
	s.render(w, r, http.StatusOK, config.TemplatePage, pageData{
		PageData: pd.WithTitle(view.Title),
		Page:     view,
	})
}

func (s *Site) ServeNotFound(w http.ResponseWriter, r *http.Request) {
	s.renderError(w, r, http.StatusNotFound, config.ErrPageNotFound)
}

// pageErrorStatus maps a page load failure to the status and message of
// the error screen.
func pageErrorStatus(err error) (int, string) {
	var pnf *content.PageNotFoundError
	switch {
	case errors.Is(err, content.ErrMalformedContent):
		return http.StatusBadGateway, config.ErrPageMalformed
	case errors.As(err, &pnf) && (pnf.StatusCode == http.StatusNotFound || !errors.Is(err, content.ErrFetchFailed)):
		return http.StatusNotFound, config.ErrPageNotFound
	default:
		return http.StatusBadGateway, config.ErrPageUnavailable
	}
}

func (s *Site) ServeThemeToggle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, config.HTTPErrMethodNotAllowed, http.StatusMethodNotAllowed)
		return
	}
	if !s.cfg.Theme.AllowSwitching {
		http.NotFound(w, r)
		return
	}

	newTheme := theme.Opposite(theme.GetThemeFromRequest(r))
	http.SetCookie(w, &http.Cookie{
		Name:     config.CookieTheme,
		Value:    newTheme,
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		SameSite: http.SameSiteLaxMode,
	})

	w.Header().Set(config.HTheme, newTheme)
	w.Header().Set(config.HSyntaxTheme, theme.GetDefaultSyntaxTheme(newTheme))
	w.Header().Set(config.HCType, config.CTypeHTML)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(theme.GetThemeIcon(newTheme)))
}

func (s *Site) ServeSyntaxCSS(w http.ResponseWriter, r *http.Request) {
	if !readMethod(w, r) {
		return
	}

	name := r.PathValue("theme")
	if !theme.IsSyntaxTheme(name) {
		http.NotFound(w, r)
		return
	}

	css := []byte(theme.GenerateSyntaxCSS(name))
	w.Header().Set(config.HCType, config.CTypeCSS)
	w.Header().Set(config.HETag, util.ETag(css))
	http.ServeContent(w, r, "", time.Time{}, bytes.NewReader(css))
}

func (s *Site) fallbackHero() model.PageView {
	return model.PageView{
		Name:     config.HomePage,
		Title:    s.cfg.Site.Tagline,
		Subtitle: s.cfg.Site.Description,
	}
}

func (s *Site) pageView(name string, page content.ParsedPage, syntaxTheme string) model.PageView {
	title := page.Metadata.Title()
	if title == "" {
		title = model.TitleFromName(name)
	}
	return model.PageView{
		Name:          name,
		Title:         title,
		Subtitle:      page.Metadata.Subtitle(),
		HeroImage:     page.Metadata.HeroImage(),
		RightImage:    page.Metadata.RightImage(),
		RightImageAlt: page.Metadata.RightImageAlt(),
		Attribution:   page.Metadata.AttributionURL(),
		Body:          s.renderBody(page.Content, syntaxTheme),
	}
}

func (s *Site) cards(posts []content.UpdatePost, syntaxTheme string, withBody bool) []model.UpdateCard {
	cards := make([]model.UpdateCard, 0, len(posts))
	for _, p := range posts {
		title := p.Metadata.Title
		if title == "" {
			title = model.TitleFromName(p.Slug)
		}
		card := model.UpdateCard{
			Slug:    p.Slug,
			Title:   title,
			Date:    content.FormatDate(p.Metadata.Date),
			Summary: p.Metadata.Summary,
			Tag:     p.Metadata.Tag,
		}
		if withBody {
			card.Body = s.renderBody(p.Content, syntaxTheme)
		}
		cards = append(cards, card)
	}
	return cards
}

func (s *Site) renderBody(md, syntaxTheme string) template.HTML {
	if md == "" {
		return ""
	}
	return template.HTML(render.RenderMarkdown(s.cfg.Markdown.Renderer, []byte(md), syntaxTheme))
}
