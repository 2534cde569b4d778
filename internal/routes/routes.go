// Package routes defines HTTP route constants for the application.
package routes

// Content API
const (
	APIContent         = "/api/content/"
	APIContentCategory = "/api/content/{category}"

	ContentFiles = "/content/"
	ContentFile  = "/content/{category}/{file}"
)

// Site
const (
	RootPath    = "/"
	HomePath    = "/{$}"
	UpdatesPath = "/updates"
	PagePath    = "/{page}"

	ThemeToggle = "/theme/toggle"
	SyntaxCSS   = "/syntax-theme/{theme}"
	Events      = "/events"
)

// Live reload topics.
const (
	TopicHome    = "home"
	TopicUpdates = "updates"
	topicPage    = "page/"
)

// PageTopic is the live reload topic of a single page.
func PageTopic(name string) string {
	return topicPage + name
}

// Infrastructure
const (
	RobotsPath = "/robots.txt"
	HealthPath = "/health"
	StaticPath = "/static/"
)

// ListingURL is the path of the listing endpoint for a category.
func ListingURL(category string) string {
	return APIContent + category
}

// FileURL is the path of a raw content file.
func FileURL(category, escapedName string) string {
	return ContentFiles + category + "/" + escapedName
}
