package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/svmesh/svmesh-web/internal/db"
	"github.com/svmesh/svmesh-web/internal/util"
	"github.com/svmesh/svmesh-web/internal/util/compression"
)

// DBContentRepository keeps content files as compressed blobs in a SQL
// database.
type DBContentRepository struct { // implements ContentRepository, ContentWriter, ContentHasher
	db         db.DB
	compressor compression.Compressor
}

func NewDBContentRepository(database db.DB, compressor compression.Compressor) *DBContentRepository {
	if compressor == nil {
		compressor = compression.ZstdCompressor{}
	}
	return &DBContentRepository{
		db:         database,
		compressor: compressor,
	}
}

// OpenDBContentRepository opens and initializes the sqlite database at path.
func OpenDBContentRepository(path, compressionName string) (*DBContentRepository, error) {
	compressor, err := compression.New(compressionName)
	if err != nil {
		return nil, err
	}

	sqlite := db.NewSQLite(path)
	if err := sqlite.InitDB(); err != nil {
		sqlite.Close()
		return nil, errors.Wrapf(err, "initializing database %s", path)
	}

	return NewDBContentRepository(sqlite, compressor), nil
}

func (r *DBContentRepository) Close() error {
	return r.db.Close()
}

func (r *DBContentRepository) List(ctx context.Context, category string) ([]string, error) {
	if !ValidCategory(category) {
		return nil, errors.Wrapf(ErrUnknownCategory, "category %q", category)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT name FROM content_files WHERE category = ?`, category)
	if err != nil {
		return nil, errors.Wrap(err, "querying content files")
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.Wrap(err, "scanning content file")
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating content files")
	}

	return sortListing(category, keepMarkdown(names)), nil
}

func (r *DBContentRepository) Read(ctx context.Context, category, name string) (*File, error) {
	if err := checkPath(category, name); err != nil {
		return nil, err
	}

	var compressed []byte
	var modified sql.NullTime
	err := r.db.QueryRowContext(ctx,
		`SELECT content, modified_at FROM content_files WHERE category = ? AND name = ?`,
		category, name,
	).Scan(&compressed, &modified)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrapf(ErrNotFound, "%s/%s", category, name)
		}
		return nil, errors.Wrap(err, "querying content file")
	}

	content, err := r.compressor.Decompress(compressed)
	if err != nil {
		return nil, errors.Wrapf(err, "decompressing %s/%s", category, name)
	}

	file := &File{Category: category, Name: name, Content: content}
	if modified.Valid {
		file.ModTime = modified.Time
	}
	return file, nil
}

// Save inserts a file or replaces the content of an existing one.
func (r *DBContentRepository) Save(ctx context.Context, category, name string, content []byte) error {
	if err := checkPath(category, name); err != nil {
		return err
	}

	compressed, err := r.compressor.Compress(content)
	if err != nil {
		return errors.Wrap(err, "compressing content")
	}

	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
INSERT INTO content_files (id, category, name, content, content_hash, created_at, modified_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(category, name) DO UPDATE SET
    content = excluded.content,
    content_hash = excluded.content_hash,
    modified_at = excluded.modified_at`,
		uuid.New().String(), category, name, compressed, util.ContentHash(content), now, now,
	)
	if err != nil {
		return errors.Wrapf(err, "saving %s/%s", category, name)
	}

	repoLogger.Debug().Interface("result", res).Str("category", category).Str("name", name).Msg("Content file saved")
	return nil
}

// ContentHash returns the stored hash of a file's uncompressed content.
func (r *DBContentRepository) ContentHash(ctx context.Context, category, name string) (string, error) {
	var hash sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT content_hash FROM content_files WHERE category = ? AND name = ?`,
		category, name,
	).Scan(&hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", errors.Wrapf(ErrNotFound, "%s/%s", category, name)
		}
		return "", errors.Wrap(err, "querying content hash")
	}
	return hash.String, nil
}
