package content

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
)

const delimiter = "---"

// SplitFrontmatter separates the frontmatter block from the body. The input
// must open with a delimiter line and contain a matching closing delimiter
// line; anything else is malformed.
func SplitFrontmatter(raw string) (block, body string, err error) {
	s := string(markdown.NormalizeNewlines([]byte(raw)))
	s = strings.TrimPrefix(s, "\ufeff")

	if !strings.HasPrefix(s, delimiter+"\n") {
		return "", "", &MalformedContentError{}
	}
	rest := s[len(delimiter)+1:]

	closing := "\n" + delimiter + "\n"
	if i := strings.Index(rest, closing); i >= 0 {
		return rest[:i], rest[i+len(closing):], nil
	}
	if strings.HasSuffix(rest, "\n"+delimiter) {
		return strings.TrimSuffix(rest, "\n"+delimiter), "", nil
	}
	return "", "", &MalformedContentError{}
}

// Field is one key/value line of a frontmatter block.
type Field struct {
	Key   string
	Value string
}

// parseFields applies the line rule to every line of a block. Lines without
// a colon or with an empty key are skipped.
func parseFields(block string) []Field {
	var fields []Field
	for _, line := range strings.Split(block, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		fields = append(fields, Field{Key: key, Value: unquote(strings.TrimSpace(value))})
	}
	return fields
}

func unquote(v string) string {
	if len(v) < 2 {
		return v
	}
	first, last := v[0], v[len(v)-1]
	if first == last && (first == '"' || first == '\'') {
		return v[1 : len(v)-1]
	}
	return v
}

// ParseUpdate parses an update file. Only the title, date, summary and tag
// keys are kept.
func ParseUpdate(raw, slug string) (UpdatePost, error) {
	block, body, err := SplitFrontmatter(raw)
	if err != nil {
		return UpdatePost{}, &MalformedContentError{Name: slug}
	}

	var meta UpdateMetadata
	for _, f := range parseFields(block) {
		switch f.Key {
		case "title":
			meta.Title = f.Value
		case "date":
			meta.Date = f.Value
		case "summary":
			meta.Summary = f.Value
		case "tag":
			meta.Tag = f.Value
		}
	}

	return UpdatePost{
		Metadata: meta,
		Content:  strings.TrimSpace(body),
		Slug:     slug,
	}, nil
}

// ParsePage parses a page file, keeping every frontmatter key.
func ParsePage(raw string) (ParsedPage, error) {
	block, body, err := SplitFrontmatter(raw)
	if err != nil {
		return ParsedPage{}, err
	}

	meta := PageMetadata{}
	for _, f := range parseFields(block) {
		meta[f.Key] = f.Value
	}

	return ParsedPage{
		Metadata: meta,
		Content:  strings.TrimSpace(body),
	}, nil
}

// Fields lists the metadata in frontmatter order. An empty tag is omitted.
func (m UpdateMetadata) Fields() []Field {
	fields := []Field{
		{Key: "title", Value: m.Title},
		{Key: "date", Value: m.Date},
		{Key: "summary", Value: m.Summary},
	}
	if m.Tag != "" {
		fields = append(fields, Field{Key: "tag", Value: m.Tag})
	}
	return fields
}

// FormatFrontmatter renders fields as a delimited block that parses back to
// the same values.
func FormatFrontmatter(fields ...Field) (string, error) {
	var b strings.Builder
	b.WriteString(delimiter + "\n")
	for _, f := range fields {
		if f.Key == "" || strings.TrimSpace(f.Key) != f.Key || strings.ContainsAny(f.Key, ":\n\r") {
			return "", fmt.Errorf("invalid frontmatter key %q", f.Key)
		}
		if strings.ContainsAny(f.Value, "\n\r") {
			return "", fmt.Errorf("frontmatter value for %q spans multiple lines", f.Key)
		}
		b.WriteString(f.Key)
		b.WriteString(": ")
		b.WriteString(quote(f.Value))
		b.WriteString("\n")
	}
	b.WriteString(delimiter + "\n")
	return b.String(), nil
}

func quote(v string) string {
	if strings.TrimSpace(v) != v || unquote(v) != v || v == "" {
		return `"` + v + `"`
	}
	return v
}
