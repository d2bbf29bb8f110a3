package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the SQLite persistence layer for cache records: detection
// results keyed by content hash and remote payloads keyed by URL. Records
// expire by TTL and are invalidated only by hash mismatch or expiry, never
// by mutation.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database at dbPath with WAL mode enabled.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping cache database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates the cache tables. Idempotent.
func (s *Store) Migrate() error {
	if _, err := s.db.Exec(schemaDDL); err != nil {
		return fmt.Errorf("migrate cache schema: %w", err)
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS results (
  hash        TEXT PRIMARY KEY,
  payload     BLOB NOT NULL,
  created_at  TIMESTAMP NOT NULL,
  expires_at  TIMESTAMP
);

CREATE TABLE IF NOT EXISTS remote_content (
  url         TEXT PRIMARY KEY,
  content     BLOB NOT NULL,
  fetched_at  TIMESTAMP NOT NULL,
  expires_at  TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS metadata (
  key    TEXT PRIMARY KEY,
  value  TEXT NOT NULL
);
`

// GetResult returns the unexpired payload for a content hash, or ok=false.
func (s *Store) GetResult(hash string) ([]byte, bool, error) {
	var payload []byte
	var expires sql.NullTime
	err := s.db.QueryRow(
		`SELECT payload, expires_at FROM results WHERE hash = ?`, hash,
	).Scan(&payload, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read result %s: %w", hash, err)
	}
	if expires.Valid && time.Now().After(expires.Time) {
		_, _ = s.db.Exec(`DELETE FROM results WHERE hash = ?`, hash)
		return nil, false, nil
	}
	return payload, true, nil
}

// PutResult stores a payload for a content hash. ttl <= 0 means no expiry.
func (s *Store) PutResult(hash string, payload []byte, ttl time.Duration) error {
	now := time.Now()
	var expires any
	if ttl > 0 {
		expires = now.Add(ttl)
	}
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO results (hash, payload, created_at, expires_at) VALUES (?, ?, ?, ?)`,
		hash, payload, now, expires,
	)
	if err != nil {
		return fmt.Errorf("write result %s: %w", hash, err)
	}
	return nil
}

// GetRemote returns the unexpired payload for a URL, or ok=false.
func (s *Store) GetRemote(url string) ([]byte, bool, error) {
	var content []byte
	var expires time.Time
	err := s.db.QueryRow(
		`SELECT content, expires_at FROM remote_content WHERE url = ?`, url,
	).Scan(&content, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read remote %s: %w", url, err)
	}
	if time.Now().After(expires) {
		_, _ = s.db.Exec(`DELETE FROM remote_content WHERE url = ?`, url)
		return nil, false, nil
	}
	return content, true, nil
}

// PutRemote stores a fetched payload for a URL with a TTL.
func (s *Store) PutRemote(url string, content []byte, ttl time.Duration) error {
	now := time.Now()
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO remote_content (url, content, fetched_at, expires_at) VALUES (?, ?, ?, ?)`,
		url, content, now, now.Add(ttl),
	)
	if err != nil {
		return fmt.Errorf("write remote %s: %w", url, err)
	}
	return nil
}

// GetMetadata reads a metadata value; missing keys return "".
func (s *Store) GetMetadata(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read metadata %s: %w", key, err)
	}
	return value, nil
}

// SetMetadata writes a metadata value.
func (s *Store) SetMetadata(key, value string) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO metadata (key, value) VALUES (?, ?)`, key, value,
	)
	if err != nil {
		return fmt.Errorf("write metadata %s: %w", key, err)
	}
	return nil
}
