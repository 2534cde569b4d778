package repository

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// FSContentRepository reads <root>/<category>/<name>.md from disk.
type FSContentRepository struct { // implements ContentRepository, ContentWriter
	root string
}

func NewFSContentRepository(root string) *FSContentRepository {
	return &FSContentRepository{root: root}
}

func (r *FSContentRepository) List(ctx context.Context, category string) ([]string, error) {
	if !ValidCategory(category) {
		return nil, errors.Wrapf(ErrUnknownCategory, "category %q", category)
	}

	entries, err := os.ReadDir(filepath.Join(r.root, category))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			repoLogger.Debug().Str("category", category).Msg("Content directory missing, listing as empty")
			return []string{}, nil
		}
		return nil, errors.Wrapf(err, "reading %s directory", category)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}

	return sortListing(category, keepMarkdown(names)), nil
}

func (r *FSContentRepository) Read(ctx context.Context, category, name string) (*File, error) {
	if err := checkPath(category, name); err != nil {
		return nil, err
	}

	path := filepath.Join(r.root, category, name)
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errors.Wrapf(ErrNotFound, "%s/%s", category, name)
		}
		return nil, errors.Wrapf(err, "reading %s", path)
	}

	file := &File{Category: category, Name: name, Content: content}
	if info, err := os.Stat(path); err == nil {
		file.ModTime = info.ModTime()
	}
	return file, nil
}

func (r *FSContentRepository) Save(ctx context.Context, category, name string, content []byte) error {
	if err := checkPath(category, name); err != nil {
		return err
	}

	dir := filepath.Join(r.root, category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "creating %s", dir)
	}

	// Write through a temp file so readers never see a partial file.
	tmp, err := os.CreateTemp(dir, "."+name+".*")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return errors.Wrap(err, "writing temp file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "closing temp file")
	}
	if err := os.Rename(tmp.Name(), filepath.Join(dir, name)); err != nil {
		return errors.Wrapf(err, "saving %s/%s", category, name)
	}

	repoLogger.Debug().Str("category", category).Str("name", name).Msg("Content file saved")
	return nil
}
