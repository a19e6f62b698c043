// Package sqlitestore implements store.Store against SQLite with the
// sqlite-vec extension, used by every cmd/ingest mode when DATABASE_URL
// starts with "sqlite://" and by the unit tests (SPEC_FULL.md §6, §10),
// grounded in bbiangul-go-reason's
// store.New (mattn/go-sqlite3 + asg017/sqlite-vec-go-bindings, the only
// pack repo pairing the two).
package sqlitestore

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"

	"github.com/techjusticelab/opinion-ingest/internal/store"
)

func init() {
	sqlite_vec.Auto()
}

// SqliteStore owns the *sql.DB; it is safe for concurrent use by
// multiple sessions (database/sql pools connections internally).
type SqliteStore struct {
	db           *sql.DB
	embeddingDim int
}

// New opens (or creates) a SQLite database file and applies the schema.
// Pass ":memory:" for ephemeral test databases.
func New(path string, embeddingDim int) (*SqliteStore, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	if _, err := db.Exec(schemaSQL(embeddingDim)); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return &SqliteStore{db: db, embeddingDim: embeddingDim}, nil
}

func (s *SqliteStore) NewSession() store.Session {
	return &session{db: s.db, dims: newDimensionCache(), embeddingDim: s.embeddingDim}
}

func (s *SqliteStore) Close() {
	s.db.Close()
}
