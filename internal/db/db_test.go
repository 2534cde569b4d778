package db

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

const failedToInitDB = "Failed to initialize database: %v"

const insertFile = `INSERT INTO content_files (id, category, name, content, content_hash, modified_at) VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)`

func quietLogger() {
	SetLogger(zerolog.New(os.Stdout).Level(zerolog.ErrorLevel))
}

func TestNewSQLite(t *testing.T) {
	db := NewSQLite(":memory:")

	if db == nil {
		t.Fatal("Expected non-nil SQLite instance")
	}
	if db.conn != nil {
		t.Error("Expected connection to be nil initially")
	}
	if db.path != ":memory:" {
		t.Errorf("Expected path :memory:, got %q", db.path)
	}
}

func TestSQLiteInitDB(t *testing.T) {
	quietLogger()

	db := NewSQLite(":memory:")
	defer db.Close()

	if err := db.InitDB(); err != nil {
		t.Fatalf(failedToInitDB, err)
	}

	t.Run("Connection is usable", func(t *testing.T) {
		if db.Get() == nil {
			t.Fatal("Expected database connection to be established")
		}
		if err := db.Get().Ping(); err != nil {
			t.Errorf("Failed to ping database: %v", err)
		}
	})

	t.Run("Table schema", func(t *testing.T) {
		rows, err := db.QueryContext(context.Background(), "PRAGMA table_info(content_files)")
		if err != nil {
			t.Fatalf("Failed to get table info: %v", err)
		}
		defer rows.Close()

		columns := make(map[string]bool)
		for rows.Next() {
			var cid int
			var name, dataType string
			var notNull, pk int
			var defaultValue sql.NullString

			if err := rows.Scan(&cid, &name, &dataType, &notNull, &defaultValue, &pk); err != nil {
				t.Errorf("Failed to scan column info: %v", err)
				continue
			}
			columns[name] = true
		}

		expected := []string{"id", "category", "name", "content", "content_hash", "created_at", "modified_at"}
		for _, col := range expected {
			if !columns[col] {
				t.Errorf("Expected content_files to have column %s", col)
			}
		}
	})

	t.Run("InitDB is idempotent", func(t *testing.T) {
		if _, err := db.Get().Exec(schema); err != nil {
			t.Errorf("Expected schema to apply twice, got %v", err)
		}
	})
}

func TestSQLiteQueryAndExec(t *testing.T) {
	quietLogger()
	ctx := context.Background()

	db := NewSQLite(":memory:")
	defer db.Close()
	if err := db.InitDB(); err != nil {
		t.Fatalf(failedToInitDB, err)
	}

	t.Run("Exec inserts data", func(t *testing.T) {
		res, err := db.ExecContext(ctx, insertFile, "id-1", "updates", "a.md", []byte("x"), "hash")
		if err != nil {
			t.Fatalf("Failed to insert: %v", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			t.Fatalf("Failed to get rows affected: %v", err)
		}
		if n != 1 {
			t.Errorf("Expected 1 row affected, got %d", n)
		}
	})

	t.Run("Category and name are unique together", func(t *testing.T) {
		if _, err := db.ExecContext(ctx, insertFile, "id-2", "updates", "a.md", []byte("y"), "hash"); err == nil {
			t.Error("Expected a uniqueness violation")
		}
		if _, err := db.ExecContext(ctx, insertFile, "id-3", "pages", "a.md", []byte("y"), "hash"); err != nil {
			t.Errorf("Expected the same name in another category to be allowed, got %v", err)
		}
	})

	t.Run("QueryRow reads data", func(t *testing.T) {
		var name string
		err := db.QueryRowContext(ctx, `SELECT name FROM content_files WHERE id = ?`, "id-1").Scan(&name)
		if err != nil {
			t.Fatalf("Failed to query: %v", err)
		}
		if name != "a.md" {
			t.Errorf("Expected a.md, got %q", name)
		}
	})

	t.Run("Query iterates rows", func(t *testing.T) {
		rows, err := db.QueryContext(ctx, `SELECT name FROM content_files ORDER BY category`)
		if err != nil {
			t.Fatalf("Failed to query: %v", err)
		}
		defer rows.Close()

		count := 0
		for rows.Next() {
			count++
		}
		if count != 2 {
			t.Errorf("Expected 2 rows, got %d", count)
		}
	})
}

func TestSQLiteFileDatabase(t *testing.T) {
	quietLogger()

	path := filepath.Join(t.TempDir(), "content.db")
	db := NewSQLite(path)
	if err := db.InitDB(); err != nil {
		t.Fatalf(failedToInitDB, err)
	}
	if _, err := db.ExecContext(context.Background(), insertFile, "id-1", "pages", "home.md", []byte("x"), "h"); err != nil {
		t.Fatalf("Failed to insert: %v", err)
	}
	db.Close()

	reopened := NewSQLite(path)
	defer reopened.Close()
	if err := reopened.InitDB(); err != nil {
		t.Fatalf(failedToInitDB, err)
	}

	var count int
	if err := reopened.QueryRowContext(context.Background(), `SELECT COUNT(*) FROM content_files`).Scan(&count); err != nil {
		t.Fatalf("Failed to count: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected data to persist, got %d rows", count)
	}
}

func TestSQLiteCloseWithoutInit(t *testing.T) {
	if err := NewSQLite(":memory:").Close(); err != nil {
		t.Errorf("Expected nil error, got %v", err)
	}
}
