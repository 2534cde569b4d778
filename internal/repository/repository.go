// Package repository stores the markdown files served by the content API.
package repository

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/svmesh/svmesh-web/internal/config"
)

var repoLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	repoLogger = l
}

var (
	ErrNotFound        = errors.New("content file not found")
	ErrInvalidName     = errors.New("invalid content file name")
	ErrUnknownCategory = errors.New("unknown content category")
)

// File is one markdown file of a category.
type File struct {
	Category string
	Name     string
	Content  []byte
	ModTime  time.Time
}

type ContentRepository interface {
	// List returns the markdown filenames of a category in listing order.
	// A category with no storage behind it lists as empty.
	List(ctx context.Context, category string) ([]string, error)

	// Read returns one file. A missing file is ErrNotFound.
	Read(ctx context.Context, category, name string) (*File, error)
}

// ContentWriter is implemented by backends that can store files.
type ContentWriter interface {
	Save(ctx context.Context, category, name string, content []byte) error
}

// ContentHasher is implemented by backends that store a hash of every file,
// so callers can detect changes without reading bodies.
type ContentHasher interface {
	ContentHash(ctx context.Context, category, name string) (string, error)
}

// ValidCategory reports whether category is served by the content API.
func ValidCategory(category string) bool {
	return category == config.CategoryUpdates || category == config.CategoryPages
}

// ValidName reports whether name addresses a single markdown file.
func ValidName(name string) bool {
	if !strings.HasSuffix(name, config.MarkdownExt) || len(name) == len(config.MarkdownExt) {
		return false
	}
	if strings.HasPrefix(name, ".") {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && !strings.Contains(name, "..")
}

func checkPath(category, name string) error {
	if !ValidCategory(category) {
		return errors.Wrapf(ErrUnknownCategory, "category %q", category)
	}
	if !ValidName(name) {
		return errors.Wrapf(ErrInvalidName, "name %q", name)
	}
	return nil
}

// sortListing orders names the way the content API lists them: updates
// newest filename first, everything else alphabetically.
func sortListing(category string, names []string) []string {
	slices.Sort(names)
	if category == config.CategoryUpdates {
		slices.Reverse(names)
	}
	return names
}

// keepMarkdown filters names down to valid markdown filenames.
func keepMarkdown(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if ValidName(n) {
			out = append(out, n)
		}
	}
	return out
}

// New opens the backend selected by cfg. The returned close function
// releases any resources the backend holds.
func New(ctx context.Context, cfg *config.Config, s3Creds S3Credentials) (ContentRepository, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Storage.Backend {
	case config.StorageFS:
		return NewFSContentRepository(cfg.Storage.Path), noop, nil

	case config.StorageSQLite:
		repo, err := OpenDBContentRepository(cfg.Storage.SQLite.Path, cfg.Storage.SQLite.Compression)
		if err != nil {
			return nil, nil, err
		}
		return repo, repo.Close, nil

	case config.StorageS3:
		repo, err := NewS3ContentRepository(ctx, cfg.Storage.S3, s3Creds)
		if err != nil {
			return nil, nil, err
		}
		return repo, noop, nil
	}

	return nil, nil, errors.Errorf("unsupported storage backend %q", cfg.Storage.Backend)
}
