// Package cache is the SQLite-backed translation cache: emitted output keyed
// by source content hash and language pair. A hit skips parsing entirely, so
// re-translating an unchanged tree is a read-only pass over the database.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Cache is the data access layer for the translations table.
type Cache struct {
	db *sql.DB
}

// Open opens a SQLite database at dbPath with WAL mode enabled.
func Open(dbPath string) (*Cache, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	c := &Cache{db: db}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// Close closes the underlying database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS translations (
  id              INTEGER PRIMARY KEY,
  source_hash     TEXT NOT NULL,
  source_language TEXT NOT NULL,
  target_language TEXT NOT NULL,
  output          TEXT NOT NULL,
  created_at      TIMESTAMP,
  UNIQUE(source_hash, source_language, target_language)
);

CREATE INDEX IF NOT EXISTS idx_translations_lookup
  ON translations(source_hash, source_language, target_language);
`

// migrate creates the schema. Idempotent.
func (c *Cache) migrate() error {
	if _, err := c.db.Exec(schemaDDL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Key computes the content hash used as the cache key for a source text.
func Key(source string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(source)))
}

// Get returns the cached output for (sourceHash, from, to), reporting whether
// an entry exists.
func (c *Cache) Get(sourceHash, from, to string) (string, bool, error) {
	var output string
	err := c.db.QueryRow(
		`SELECT output FROM translations
		 WHERE source_hash = ? AND source_language = ? AND target_language = ?`,
		sourceHash, from, to,
	).Scan(&output)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("lookup translation: %w", err)
	}
	return output, true, nil
}

// Put stores (or replaces) the output for (sourceHash, from, to).
func (c *Cache) Put(sourceHash, from, to, output string) error {
	_, err := c.db.Exec(
		`INSERT INTO translations (source_hash, source_language, target_language, output, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(source_hash, source_language, target_language)
		 DO UPDATE SET output = excluded.output, created_at = excluded.created_at`,
		sourceHash, from, to, output, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("store translation: %w", err)
	}
	return nil
}

// Count returns the number of cached translations.
func (c *Cache) Count() (int64, error) {
	var n int64
	if err := c.db.QueryRow(`SELECT COUNT(*) FROM translations`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count translations: %w", err)
	}
	return n, nil
}
