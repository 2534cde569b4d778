package content

import (
	"slices"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// DisplayDateLayout is how update dates are shown on cards.
const DisplayDateLayout = "January 2, 2006"

// ParseDate interprets a frontmatter date. Dates without a zone are read as
// UTC. Fragments that only yield a time of day or a year before 1 ("12:",
// "3.5pm", "0000") are not dates.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil || t.Year() < 1 {
		return time.Time{}, false
	}
	return t, true
}

// FormatDate renders a frontmatter date for display, falling back to the raw
// string when it cannot be parsed.
func FormatDate(s string) string {
	t, ok := ParseDate(s)
	if !ok {
		return s
	}
	return t.Format(DisplayDateLayout)
}

// SortByDateDescending returns the posts newest first. Posts with a missing
// or unparseable date go last; ties keep their input order.
func SortByDateDescending(posts []UpdatePost) []UpdatePost {
	type keyed struct {
		post  UpdatePost
		date  time.Time
		valid bool
	}

	items := make([]keyed, len(posts))
	for i, p := range posts {
		d, ok := ParseDate(p.Metadata.Date)
		items[i] = keyed{post: p, date: d, valid: ok}
	}

	slices.SortStableFunc(items, func(a, b keyed) int {
		switch {
		case a.valid && b.valid:
			return -a.date.Compare(b.date)
		case a.valid:
			return -1
		case b.valid:
			return 1
		default:
			return 0
		}
	})

	sorted := make([]UpdatePost, len(items))
	for i, it := range items {
		sorted[i] = it.post
	}
	return sorted
}

// Recent returns at most n posts from the front of posts.
func Recent(posts []UpdatePost, n int) []UpdatePost {
	if n < 0 || n >= len(posts) {
		return posts
	}
	return posts[:n]
}
