package modules

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Export describes one public function of a resolved module, as recorded in
// the cache for fast interface lookup without re-parsing.
type Export struct {
	Name      string `json:"name"`
	Arity     int    `json:"arity"`
	Signature string `json:"signature"`
}

// Cache persists module interfaces keyed by file path and content hash, so
// repeated imports of unchanged files skip the parse-and-collect pass.
type Cache struct {
	db *sql.DB
}

const cacheSchema = `
CREATE TABLE IF NOT EXISTS modules (
	path       TEXT NOT NULL,
	hash       TEXT NOT NULL,
	exports    TEXT NOT NULL,
	checked_at INTEGER NOT NULL,
	PRIMARY KEY (path, hash)
)`

func OpenCache(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("modules: open cache: %w", err)
	}
	if _, err := db.Exec(cacheSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("modules: init cache: %w", err)
	}
	return &Cache{db: db}, nil
}

func (c *Cache) Lookup(path, hash string) ([]Export, bool) {
	var payload string
	err := c.db.QueryRow(
		`SELECT exports FROM modules WHERE path = ? AND hash = ?`, path, hash,
	).Scan(&payload)
	if err != nil {
		return nil, false
	}
	var exports []Export
	if err := json.Unmarshal([]byte(payload), &exports); err != nil {
		return nil, false
	}
	return exports, true
}

func (c *Cache) Store(path, hash string, exports []Export) error {
	payload, err := json.Marshal(exports)
	if err != nil {
		return err
	}
	// Stale hashes for the same path are dropped so the table does not
	// grow with every edit.
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM modules WHERE path = ?`, path); err != nil {
		tx.Rollback()
		return err
	}
	if _, err := tx.Exec(
		`INSERT INTO modules (path, hash, exports, checked_at) VALUES (?, ?, ?, ?)`,
		path, hash, string(payload), time.Now().Unix(),
	); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (c *Cache) Close() error {
	return c.db.Close()
}
