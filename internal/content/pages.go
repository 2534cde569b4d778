package content

import (
	"context"
	"errors"
	"strings"

	"github.com/svmesh/svmesh-web/internal/config"
)

var errInvalidPageName = errors.New("invalid page name")

// LoadPage fetches and parses pages/<name>.md. The request carries a cache
// buster so an edited page is seen on the next load. Any failure fails the
// whole call: *PageNotFoundError when the file cannot be fetched,
// *MalformedContentError when it lacks frontmatter.
func (c *Client) LoadPage(ctx context.Context, name string) (ParsedPage, error) {
	if !ValidPageName(name) {
		return ParsedPage{}, &PageNotFoundError{Name: name, Err: errInvalidPageName}
	}

	u := c.fileURL(config.CategoryPages, name+config.MarkdownExt, c.cacheBuster())
	body, err := c.get(ctx, u)
	if err != nil {
		pnf := &PageNotFoundError{Name: name, Err: err}
		var fe *FetchError
		if errors.As(err, &fe) {
			pnf.StatusCode = fe.StatusCode
		}
		c.logger.Error().Err(err).Str("page", name).Msg("Error loading page content")
		return ParsedPage{}, pnf
	}

	page, err := ParsePage(string(body))
	if err != nil {
		c.logger.Error().Err(err).Str("page", name).Msg("Error parsing page content")
		return ParsedPage{}, &MalformedContentError{Name: name}
	}
	return page, nil
}

// ValidPageName reports whether name can address a single page file.
func ValidPageName(name string) bool {
	if name == "" || strings.HasPrefix(name, ".") {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && !strings.Contains(name, "..")
}
