package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// Cache is the local persisted key→JSON store. It survives process restarts
// so the tracker can resume its last-known durations and live session before
// the first network round-trip completes.
type Cache struct {
	db *sql.DB
}

// Well-known cache keys.
const (
	CacheKeyDurations = "activity_durations"
	CacheKeySession   = "current_session"
)

func NewCache(dbPath string) (*Cache, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache ping failed: %w", err)
	}

	cache := &Cache{db: db}
	if err := cache.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache tables: %w", err)
	}
	return cache, nil
}

func (c *Cache) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS kv_cache (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := c.db.Exec(schema)
	return err
}

// Put stores v under key, replacing any previous value.
func (c *Cache) Put(key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode cache value: %w", err)
	}

	query := `
	INSERT INTO kv_cache (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`

	_, err = c.db.Exec(query, key, string(data))
	return err
}

// Get unmarshals the stored value into out. The first return is false when
// the key has never been written.
func (c *Cache) Get(key string, out interface{}) (bool, error) {
	var value string
	err := c.db.QueryRow(`SELECT value FROM kv_cache WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(value), out); err != nil {
		return false, fmt.Errorf("failed to decode cache value for %q: %w", key, err)
	}
	return true, nil
}

func (c *Cache) Delete(key string) error {
	_, err := c.db.Exec(`DELETE FROM kv_cache WHERE key = ?`, key)
	return err
}

func (c *Cache) Close() error {
	return c.db.Close()
}
