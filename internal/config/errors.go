package config

const (
	// Listing errors
	ErrListUpdatesFiles = "Failed to list update files"
	ErrListPagesFiles   = "Failed to list page files"

	// Site errors
	ErrLoadingUpdatesFmt = "Error loading updates: %s"
	ErrPageNotFound      = "We couldn't find that page."
	ErrPageMalformed     = "This page could not be displayed because its content is malformed."
	ErrPageUnavailable   = "This page is temporarily unavailable."
	ErrInternalServer    = "Internal server error"

	// Storage errors
	ErrInitializeStorageFmt = "Failed to initialize %s storage"

	// Config errors
	ErrWriteConfigContentFmt = "Failed to write config content: %v"
	ErrCreateTempFileFmt     = "Failed to create temp file: %v"
)

const (
	// Empty-state messages
	MsgNoUpdates = "No updates available at this time."
)
