package config

const (
	HCType        = "Content-Type"
	HETag         = "ETag"
	HCacheControl = "Cache-Control"

	// Sent by the theme toggle so the page can switch without a reload.
	HTheme       = "X-Theme"
	HSyntaxTheme = "X-Syntax-Theme"

	CTypeCSS         = "text/css"
	CTypeHTML        = "text/html; charset=utf-8"
	CTypeJSON        = "application/json"
	CTypeMarkdown    = "text/markdown; charset=utf-8"
	CTypeEventStream = "text/event-stream"
	CTypeText        = "text/plain; charset=utf-8"
)

const (
	HTTPErrMethodNotAllowed = "Method not allowed"
)

const (
	CookieTheme = "theme"
)

const (
	// CacheBusterParam is the query parameter appended to page fetches.
	CacheBusterParam = "v"
)
