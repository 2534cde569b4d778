// Package content consumes the content API: it lists and fetches markdown
// files, parses their frontmatter and orders update posts for display.
package content

import (
	"strings"

	"github.com/svmesh/svmesh-web/internal/config"
)

// UpdateMetadata is the fixed frontmatter shape of an update post.
type UpdateMetadata struct {
	Title   string
	Date    string
	Summary string
	Tag     string
}

// UpdatePost is a parsed file from the updates category.
type UpdatePost struct {
	Metadata UpdateMetadata
	Content  string
	Slug     string
}

// PageMetadata holds every key of a page's frontmatter.
type PageMetadata map[string]string

func (m PageMetadata) Get(key string) string {
	return m[key]
}

func (m PageMetadata) Title() string          { return m["title"] }
func (m PageMetadata) Subtitle() string       { return m["subtitle"] }
func (m PageMetadata) HeroImage() string      { return m["heroImage"] }
func (m PageMetadata) RightImage() string     { return m["rightImage"] }
func (m PageMetadata) RightImageAlt() string  { return m["rightImageAlt"] }
func (m PageMetadata) AttributionURL() string { return m["attributionUrl"] }

// ParsedPage is a parsed file from the pages category.
type ParsedPage struct {
	Metadata PageMetadata
	Content  string
}

// SlugFromFilename drops the markdown extension from a listed filename.
func SlugFromFilename(filename string) string {
	return strings.TrimSuffix(filename, config.MarkdownExt)
}
