package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/svmesh/svmesh-web/internal/config"
	"github.com/svmesh/svmesh-web/internal/routes"
)

const (
	defaultConcurrency = 4

	// maxFileSize bounds how much of a single content file is read.
	maxFileSize = 4 << 20
)

// Client reads listings and files from the content API.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	logger      zerolog.Logger
	concurrency int

	now func() time.Time
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithConcurrency bounds the number of update files fetched at once.
func WithConcurrency(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  http.DefaultClient,
		logger:      zerolog.Nop(),
		concurrency: defaultConcurrency,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type listing struct {
	Files []string `json:"files"`
}

// ListFiles returns the filenames of a category in the order the API lists them.
func (c *Client) ListFiles(ctx context.Context, category string) ([]string, error) {
	u := c.baseURL + routes.ListingURL(category)

	body, err := c.get(ctx, u)
	if err != nil {
		le := &ListingError{Category: category, Err: err}
		var fe *FetchError
		if errors.As(err, &fe) {
			le.StatusCode, le.Err = fe.StatusCode, fe.Err
		}
		return nil, le
	}

	var l listing
	if err := json.Unmarshal(body, &l); err != nil {
		return nil, &ListingError{Category: category, Err: fmt.Errorf("decode listing: %w", err)}
	}
	if l.Files == nil {
		l.Files = []string{}
	}
	return l.Files, nil
}

// FetchFile returns the raw text of one file.
func (c *Client) FetchFile(ctx context.Context, category, filename string) (string, error) {
	body, err := c.get(ctx, c.fileURL(category, filename, ""))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (c *Client) fileURL(category, filename, cacheBuster string) string {
	u := c.baseURL + routes.FileURL(category, url.PathEscape(filename))
	if cacheBuster != "" {
		u += "?" + url.Values{config.CacheBusterParam: {cacheBuster}}.Encode()
	}
	return u
}

func (c *Client) cacheBuster() string {
	return strconv.FormatInt(c.now().UnixMilli(), 10)
}

// get performs a GET and returns the body of a 2xx response. Every failure
// is a *FetchError.
func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &FetchError{URL: u, Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{URL: u, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxFileSize))
		return nil, &FetchError{URL: u, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFileSize+1))
	if err != nil {
		return nil, &FetchError{URL: u, Err: err}
	}
	if len(body) > maxFileSize {
		return nil, &FetchError{URL: u, Err: errFileTooLarge}
	}
	return body, nil
}
