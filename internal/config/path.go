package config

const (
	//? These paths must match the paths in the embed directive

	StaticLocalDir = "static"
	StaticURLPath  = "/" + StaticLocalDir + "/"

	TemplatesLocalDir = "templates"

	TemplateLayout   = "layout.html"
	TemplateHome     = "home.html"
	TemplateUpdates  = "updates.html"
	TemplatePage     = "page.html"
	TemplateError    = "error.html"
	TemplatePartials = "partials.html"
)

const (
	// Content categories, also the directory names under the storage root.
	CategoryUpdates = "updates"
	CategoryPages   = "pages"

	MarkdownExt = ".md"

	// HomePage is the page file that feeds the homepage hero.
	HomePage = "home"
)

const (
	StorageFS     = "fs"
	StorageSQLite = "sqlite"
	StorageS3     = "s3"
)

var StorageBackends = []string{StorageFS, StorageSQLite, StorageS3}

const (
	CompressionZstd = "zstd"
	CompressionGzip = "gzip"
)

var Compressions = []string{CompressionZstd, CompressionGzip}
