package content

import (
	"errors"
	"fmt"
)

var (
	ErrListingUnavailable = errors.New("content listing unavailable")
	ErrFetchFailed        = errors.New("content fetch failed")
	ErrMalformedContent   = errors.New("malformed content")
	ErrPageNotFound       = errors.New("page not found")

	errFileTooLarge = fmt.Errorf("content file exceeds %d bytes", maxFileSize)
)

// ListingError reports a failed directory listing request. It never matches
// ErrFetchFailed, which is reserved for single files; StatusCode is zero when
// the listing request produced no response.
type ListingError struct {
	Category   string
	StatusCode int
	Err        error
}

func (e *ListingError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("list %s: HTTP %d", e.Category, e.StatusCode)
	}
	return fmt.Sprintf("list %s: %v", e.Category, e.Err)
}

func (e *ListingError) Unwrap() error { return e.Err }

func (e *ListingError) Is(target error) bool { return target == ErrListingUnavailable }

// FetchError reports a failed file fetch. StatusCode is zero when the
// request never produced a response.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == ErrFetchFailed }

// MalformedContentError reports a file without a well-formed frontmatter block.
type MalformedContentError struct {
	Name string
}

func (e *MalformedContentError) Error() string {
	if e.Name == "" {
		return "invalid markdown format: missing frontmatter"
	}
	return fmt.Sprintf("invalid markdown format for %s: missing frontmatter", e.Name)
}

func (e *MalformedContentError) Is(target error) bool { return target == ErrMalformedContent }

// PageNotFoundError reports a page that could not be fetched.
type PageNotFoundError struct {
	Name       string
	StatusCode int
	Err        error
}

func (e *PageNotFoundError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("failed to fetch page %s: %d", e.Name, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("failed to fetch page %s: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("failed to fetch page %s", e.Name)
}

func (e *PageNotFoundError) Unwrap() error { return e.Err }

func (e *PageNotFoundError) Is(target error) bool { return target == ErrPageNotFound }
