package site

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/svmesh/svmesh-web/internal/api"
	"github.com/svmesh/svmesh-web/internal/config"
	"github.com/svmesh/svmesh-web/internal/content"
	"github.com/svmesh/svmesh-web/internal/render"
	"github.com/svmesh/svmesh-web/internal/repository"
)

func init() {
	SetLogger(zerolog.Nop())
	api.SetLogger(zerolog.Nop())
	render.SetLogger(zerolog.Nop())
	repository.SetLogger(zerolog.Nop())
}

const homePage = `---
title: "We mesh well together."
subtitle: Off-grid messaging for the valley
heroImage: /static/hero.jpg
---
Welcome to the **Susquehanna Valley Mesh**.
`

const gettingStarted = `---
title: Getting Started
rightImage: /static/node.jpg
rightImageAlt: A LoRa node on a roof
attributionUrl: https://example.com/photo
---
## Buy a radio

Any supported board works.
`

func updateFile(title, date, tag string) string {
	fm := "---\ntitle: " + title + "\ndate: " + date + "\nsummary: About " + title + "\n"
	if tag != "" {
		fm += "tag: " + tag + "\n"
	}
	return fm + "---\nBody of *" + title + "*.\n"
}

func writeFixture(t *testing.T, root, category, name, body string) {
	t.Helper()
	dir := filepath.Join(root, category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func fixtureRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFixture(t, root, "pages", "home.md", homePage)
	writeFixture(t, root, "pages", "getting-started.md", gettingStarted)
	writeFixture(t, root, "pages", "broken.md", "no frontmatter here")
	writeFixture(t, root, "updates", "2024-01-15-kickoff.md", updateFile("Kickoff", "2024-01-15", "meeting"))
	writeFixture(t, root, "updates", "2024-03-02-repeater.md", updateFile("Repeater Online", "2024-03-02", ""))
	writeFixture(t, root, "updates", "2024-06-20-net-day.md", updateFile("Net Day", "2024-06-20", "event"))
	writeFixture(t, root, "updates", "2024-02-10-survey.md", updateFile("Coverage Survey", "2024-02-10", ""))
	writeFixture(t, root, "updates", "undated.md", updateFile("Someday", "soon", ""))
	return root
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	original := config.AppConfig
	config.AppConfig = cfg
	t.Cleanup(func() { config.AppConfig = original })
	return cfg
}

// newTestSite serves repo through the content API and returns the site mux
// reading from it.
func newTestSite(t *testing.T, repo repository.ContentRepository, cfg *config.Config) http.Handler {
	t.Helper()
	apiMux := http.NewServeMux()
	api.NewHandler(repo).Register(apiMux)
	srv := httptest.NewServer(apiMux)
	t.Cleanup(srv.Close)

	s, err := New(content.NewClient(srv.URL), cfg)
	if err != nil {
		t.Fatalf("Failed to create site: %v", err)
	}
	mux := http.NewServeMux()
	s.Register(mux)
	return mux
}

func get(t *testing.T, h http.Handler, path string) (*httptest.ResponseRecorder, *goquery.Document) {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rr.Body.String()))
	if err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	return rr, doc
}

func texts(sel *goquery.Selection) []string {
	var out []string
	sel.Each(func(_ int, s *goquery.Selection) {
		out = append(out, strings.TrimSpace(s.Text()))
	})
	return out
}

// brokenUpdates fails the updates listing but serves everything else.
type brokenUpdates struct {
	repository.ContentRepository
}

func (b brokenUpdates) List(ctx context.Context, category string) ([]string, error) {
	if category == config.CategoryUpdates {
		return nil, errors.New("bucket unreachable")
	}
	return b.ContentRepository.List(ctx, category)
}

func TestHome(t *testing.T) {
	cfg := testConfig(t)
	h := newTestSite(t, repository.NewFSContentRepository(fixtureRoot(t)), cfg)

	rr, doc := get(t, h, "/")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}

	if got := strings.TrimSpace(doc.Find(".hero-title").Text()); got != "We mesh well together." {
		t.Errorf("Expected unquoted home title, got %q", got)
	}
	if got := strings.TrimSpace(doc.Find(".hero-subtitle").Text()); got != "Off-grid messaging for the valley" {
		t.Errorf("Expected subtitle, got %q", got)
	}
	if doc.Find(".home-body strong").Text() != "Susquehanna Valley Mesh" {
		t.Error("Expected rendered home body")
	}

	titles := texts(doc.Find(".recent-updates .update-title"))
	want := "Net Day,Repeater Online,Coverage Survey"
	if strings.Join(titles, ",") != want {
		t.Errorf("Expected %s, got %v", want, titles)
	}
	if doc.Find(".recent-updates .update-body").Length() != 0 {
		t.Error("Expected home cards without bodies")
	}
	if got := strings.TrimSpace(doc.Find(".recent-updates .update-summary").First().Text()); got != "About Net Day" {
		t.Errorf("Expected summary, got %q", got)
	}
	if got := doc.Find("title").Text(); got != cfg.Site.Name {
		t.Errorf("Expected site name as title, got %q", got)
	}
}

func TestHomeUpdatesFailure(t *testing.T) {
	cfg := testConfig(t)
	repo := brokenUpdates{repository.NewFSContentRepository(fixtureRoot(t))}
	h := newTestSite(t, repo, cfg)

	rr, doc := get(t, h, "/")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}

	msg := strings.TrimSpace(doc.Find(".recent-updates .error-message").Text())
	if !strings.HasPrefix(msg, "Error loading updates: ") {
		t.Errorf("Expected updates error message, got %q", msg)
	}
	if got := strings.TrimSpace(doc.Find(".hero-title").Text()); got != "We mesh well together." {
		t.Errorf("Expected hero to still render, got %q", got)
	}
}

func TestHomeWithoutHomePage(t *testing.T) {
	cfg := testConfig(t)
	root := t.TempDir()
	writeFixture(t, root, "updates", "2024-01-15-kickoff.md", updateFile("Kickoff", "2024-01-15", ""))
	h := newTestSite(t, repository.NewFSContentRepository(root), cfg)

	rr, doc := get(t, h, "/")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if got := strings.TrimSpace(doc.Find(".hero-title").Text()); got != cfg.Site.Tagline {
		t.Errorf("Expected tagline fallback, got %q", got)
	}
	if doc.Find(".update-card").Length() != 1 {
		t.Error("Expected the update card")
	}
}

func TestUpdates(t *testing.T) {
	cfg := testConfig(t)
	h := newTestSite(t, repository.NewFSContentRepository(fixtureRoot(t)), cfg)

	rr, doc := get(t, h, "/updates")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}

	titles := texts(doc.Find(".update-title"))
	want := "Net Day,Repeater Online,Coverage Survey,Kickoff,Someday"
	if strings.Join(titles, ",") != want {
		t.Errorf("Expected %s, got %v", want, titles)
	}

	first := doc.Find(".update-card").First()
	if id, _ := first.Attr("id"); id != "2024-06-20-net-day" {
		t.Errorf("Expected slug anchor, got %q", id)
	}
	if got := first.Find(".update-date").Text(); got != "June 20, 2024" {
		t.Errorf("Expected formatted date, got %q", got)
	}
	if got := first.Find(".tag").Text(); got != "event" {
		t.Errorf("Expected tag chip, got %q", got)
	}
	if first.Find(".update-body em").Text() != "Net Day" {
		t.Error("Expected rendered body")
	}

	second := doc.Find(".update-card").Eq(1)
	if second.Find(".tag").Length() != 0 {
		t.Error("Expected no tag chip for an untagged update")
	}

	last := doc.Find(".update-card").Last()
	if got := last.Find(".update-date").Text(); got != "soon" {
		t.Errorf("Expected raw date for unparseable value, got %q", got)
	}

	if got := doc.Find("title").Text(); got != "Updates | "+cfg.Site.Name {
		t.Errorf("Unexpected title %q", got)
	}
}

func TestUpdatesEmpty(t *testing.T) {
	cfg := testConfig(t)
	h := newTestSite(t, repository.NewFSContentRepository(t.TempDir()), cfg)

	_, doc := get(t, h, "/updates")
	if got := strings.TrimSpace(doc.Find(".empty-message").Text()); got != config.MsgNoUpdates {
		t.Errorf("Expected empty message, got %q", got)
	}
}

func TestUpdatesFailure(t *testing.T) {
	cfg := testConfig(t)
	h := newTestSite(t, brokenUpdates{repository.NewFSContentRepository(fixtureRoot(t))}, cfg)

	rr, doc := get(t, h, "/updates")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if !strings.Contains(doc.Find(".error-message").Text(), "Error loading updates: ") {
		t.Errorf("Expected error message, got %q", doc.Find(".updates").Text())
	}
}

func TestPage(t *testing.T) {
	cfg := testConfig(t)
	h := newTestSite(t, repository.NewFSContentRepository(fixtureRoot(t)), cfg)

	rr, doc := get(t, h, "/getting-started")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if got := strings.TrimSpace(doc.Find(".page-header h1").Text()); got != "Getting Started" {
		t.Errorf("Expected page title, got %q", got)
	}
	if got := strings.TrimSpace(doc.Find(".markdown h2").Text()); got != "Buy a radio" {
		t.Errorf("Expected rendered heading, got %q", got)
	}
	img := doc.Find(".page-aside img")
	if alt, _ := img.Attr("alt"); alt != "A LoRa node on a roof" {
		t.Errorf("Expected right image alt, got %q", alt)
	}
	if href, _ := doc.Find(".page-aside figcaption a").Attr("href"); href != "https://example.com/photo" {
		t.Errorf("Expected attribution link, got %q", href)
	}
	if doc.Find(".site-nav a.active").Text() != "Getting Started" {
		t.Error("Expected the page's nav link to be active")
	}
}

func TestPageErrors(t *testing.T) {
	cfg := testConfig(t)
	h := newTestSite(t, repository.NewFSContentRepository(fixtureRoot(t)), cfg)

	tests := []struct {
		path       string
		wantStatus int
		wantMsg    string
	}{
		{"/missing", http.StatusNotFound, config.ErrPageNotFound},
		{"/broken", http.StatusBadGateway, config.ErrPageMalformed},
		{"/.hidden", http.StatusNotFound, config.ErrPageNotFound},
		{"/a/b", http.StatusNotFound, config.ErrPageNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rr, doc := get(t, h, tt.path)
			if rr.Code != tt.wantStatus {
				t.Fatalf("Expected %d, got %d", tt.wantStatus, rr.Code)
			}
			if got := strings.TrimSpace(doc.Find(".error-screen .error-message").Text()); got != tt.wantMsg {
				t.Errorf("Expected %q, got %q", tt.wantMsg, got)
			}
			if strings.Contains(rr.Body.String(), "goroutine") {
				t.Error("Expected no stack trace in the error screen")
			}
		})
	}
}

func TestPageHomeRedirects(t *testing.T) {
	cfg := testConfig(t)
	h := newTestSite(t, repository.NewFSContentRepository(fixtureRoot(t)), cfg)

	rr, _ := get(t, h, "/home")
	if rr.Code != http.StatusMovedPermanently || rr.Header().Get("Location") != "/" {
		t.Errorf("Expected redirect to /, got %d %q", rr.Code, rr.Header().Get("Location"))
	}
}

func TestPageErrorStatus(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"malformed", &content.MalformedContentError{Name: "x"}, http.StatusBadGateway, config.ErrPageMalformed},
		{"404", &content.PageNotFoundError{Name: "x", StatusCode: 404, Err: &content.FetchError{StatusCode: 404}}, http.StatusNotFound, config.ErrPageNotFound},
		{"invalid name", &content.PageNotFoundError{Name: "..", Err: errors.New("invalid page name")}, http.StatusNotFound, config.ErrPageNotFound},
		{"upstream 500", &content.PageNotFoundError{Name: "x", StatusCode: 500, Err: &content.FetchError{StatusCode: 500}}, http.StatusBadGateway, config.ErrPageUnavailable},
		{"unreachable", &content.PageNotFoundError{Name: "x", Err: &content.FetchError{Err: errors.New("connection refused")}}, http.StatusBadGateway, config.ErrPageUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg := pageErrorStatus(tt.err)
			if status != tt.wantStatus || msg != tt.wantMsg {
				t.Errorf("Expected %d %q, got %d %q", tt.wantStatus, tt.wantMsg, status, msg)
			}
		})
	}
}

func TestLiveReloadAttribute(t *testing.T) {
	root := fixtureRoot(t)

	t.Run("Disabled", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Content.WatchInterval = 0
		_, doc := get(t, newTestSite(t, repository.NewFSContentRepository(root), cfg), "/")
		if _, ok := doc.Find("body").Attr("data-live-reload"); ok {
			t.Error("Expected no live reload attribute")
		}
	})

	t.Run("Enabled", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Content.WatchInterval = time.Second
		h := newTestSite(t, repository.NewFSContentRepository(root), cfg)

		for path, topic := range map[string]string{
			"/":                "home",
			"/updates":         "updates",
			"/getting-started": "page/getting-started",
		} {
			_, doc := get(t, h, path)
			if got, _ := doc.Find("body").Attr("data-live-reload"); got != topic {
				t.Errorf("%s: expected topic %q, got %q", path, topic, got)
			}
		}
	})
}

func TestConditionalGet(t *testing.T) {
	cfg := testConfig(t)
	h := newTestSite(t, repository.NewFSContentRepository(fixtureRoot(t)), cfg)

	rr, _ := get(t, h, "/getting-started")
	etag := rr.Header().Get(config.HETag)
	if etag == "" {
		t.Fatal("Expected an ETag")
	}

	req := httptest.NewRequest(http.MethodGet, "/getting-started", nil)
	req.Header.Set("If-None-Match", etag)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotModified {
		t.Errorf("Expected 304, got %d", rr.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	cfg := testConfig(t)
	h := newTestSite(t, repository.NewFSContentRepository(t.TempDir()), cfg)

	for _, path := range []string{"/", "/updates", "/getting-started"} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, path, nil))
		if rr.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s: expected 405, got %d", path, rr.Code)
		}
	}
}

func TestThemeToggle(t *testing.T) {
	cfg := testConfig(t)
	h := newTestSite(t, repository.NewFSContentRepository(t.TempDir()), cfg)

	tests := []struct {
		current string
		want    string
	}{
		{"", config.DarkTheme},
		{config.LightTheme, config.DarkTheme},
		{config.DarkTheme, config.LightTheme},
		{"bogus", config.DarkTheme},
	}

	for _, tt := range tests {
		t.Run(tt.current, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/theme/toggle", nil)
			if tt.current != "" {
				req.AddCookie(&http.Cookie{Name: config.CookieTheme, Value: tt.current})
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if rr.Code != http.StatusOK {
				t.Fatalf("Expected 200, got %d", rr.Code)
			}
			if got := rr.Header().Get(config.HTheme); got != tt.want {
				t.Errorf("Expected theme %q, got %q", tt.want, got)
			}
			cookies := rr.Result().Cookies()
			if len(cookies) != 1 || cookies[0].Value != tt.want {
				t.Errorf("Expected theme cookie %q, got %v", tt.want, cookies)
			}
			if rr.Body.Len() == 0 {
				t.Error("Expected the theme icon")
			}
		})
	}

	t.Run("GET not allowed", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/theme/toggle", nil))
		if rr.Code != http.StatusMethodNotAllowed {
			t.Errorf("Expected 405, got %d", rr.Code)
		}
	})

	t.Run("Switching disabled", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Theme.AllowSwitching = false
		h := newTestSite(t, repository.NewFSContentRepository(t.TempDir()), cfg)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/theme/toggle", nil))
		if rr.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", rr.Code)
		}
	})
}

func TestSyntaxCSS(t *testing.T) {
	cfg := testConfig(t)
	h := newTestSite(t, repository.NewFSContentRepository(t.TempDir()), cfg)

	rr, _ := get(t, h, "/syntax-theme/github")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get(config.HCType); ct != config.CTypeCSS {
		t.Errorf("Expected CSS content type, got %q", ct)
	}
	if !strings.Contains(rr.Body.String(), ".chroma") {
		t.Error("Expected chroma CSS")
	}

	rr, _ = get(t, h, "/syntax-theme/not-a-theme")
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown theme, got %d", rr.Code)
	}
}

func TestViewMemoisesUpdates(t *testing.T) {
	var listings atomic.Int32
	repo := repository.NewFSContentRepository(fixtureRoot(t))
	apiMux := http.NewServeMux()
	api.NewHandler(repo).Register(apiMux)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/content/updates" {
			listings.Add(1)
		}
		apiMux.ServeHTTP(w, r)
	}))
	defer srv.Close()

	view := newView(context.Background(), content.NewClient(srv.URL))

	all, err := view.Updates()
	if err != nil {
		t.Fatalf("Updates failed: %v", err)
	}
	recent, err := view.RecentUpdates(2)
	if err != nil {
		t.Fatalf("RecentUpdates failed: %v", err)
	}

	if listings.Load() != 1 {
		t.Errorf("Expected one listing request per view, got %d", listings.Load())
	}
	if len(all) != 5 || len(recent) != 2 {
		t.Errorf("Expected 5 and 2 posts, got %d and %d", len(all), len(recent))
	}
	if recent[0].Slug != "2024-06-20-net-day" {
		t.Errorf("Expected newest first, got %s", recent[0].Slug)
	}

	other := newView(context.Background(), content.NewClient(srv.URL))
	if _, err := other.Updates(); err != nil {
		t.Fatal(err)
	}
	if listings.Load() != 2 {
		t.Errorf("Expected a new view to list again, got %d requests", listings.Load())
	}
}
