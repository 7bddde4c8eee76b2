// Package localstore provides device-local key/value storage for the vault.
package localstore

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/marcboeker/go-duckdb"
	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/serr"
)

// DDLCreateLocalKV creates the table holding local blobs, one row per key.
const DDLCreateLocalKV = `
CREATE TABLE IF NOT EXISTS local_kv (
    key        VARCHAR PRIMARY KEY,
    value      VARCHAR NOT NULL,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

// DuckDB persists blobs in a DuckDB file and serves reads from an in-process
// cache loaded at open. Writes go to disk first; the cache is updated only
// after the disk write succeeded.
type DuckDB struct {
	db    *sql.DB
	path  string
	mu    sync.RWMutex
	cache map[string][]byte
}

// OpenDuckDB opens (or creates) the database at path. An empty path opens an
// in-memory database.
func OpenDuckDB(path string) (*DuckDB, error) {
	if path != "" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, serr.Wrap(err, "failed to create local data directory")
			}
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, serr.Wrap(err, "failed to open local database")
	}
	if _, err := db.Exec(DDLCreateLocalKV); err != nil {
		_ = db.Close()
		return nil, serr.Wrap(err, "failed to create local_kv table")
	}

	d := &DuckDB{db: db, path: path, cache: make(map[string][]byte)}
	if err := d.warmCache(); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info("Local store opened", "path", path, "keys", len(d.cache))
	return d, nil
}

func (d *DuckDB) warmCache() error {
	rows, err := d.db.Query("SELECT key, value FROM local_kv")
	if err != nil {
		return serr.Wrap(err, "failed to read local_kv")
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return serr.Wrap(err, "failed to scan local_kv row")
		}
		d.cache[key] = []byte(value)
	}
	return rows.Err()
}

// Load returns the blob for key.
func (d *DuckDB) Load(key string) ([]byte, bool, error) {
	d.mu.RLock()
	blob, ok := d.cache[key]
	d.mu.RUnlock()
	if ok {
		out := make([]byte, len(blob))
		copy(out, blob)
		return out, true, nil
	}

	var value string
	err := d.db.QueryRow("SELECT value FROM local_kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, serr.Wrap(err, "failed to load local key "+key)
	}
	return []byte(value), true, nil
}

// Save stores blob under key, replacing any previous value.
func (d *DuckDB) Save(key string, blob []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, err := d.db.Exec("INSERT OR REPLACE INTO local_kv (key, value, updated_at) VALUES (?, ?, ?)",
		key, string(blob), time.Now())
	if err != nil {
		return serr.Wrap(err, "failed to save local key "+key)
	}
	stored := make([]byte, len(blob))
	copy(stored, blob)
	d.cache[key] = stored
	return nil
}

// Clear removes key. Clearing a missing key is not an error.
func (d *DuckDB) Clear(key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, err := d.db.Exec("DELETE FROM local_kv WHERE key = ?", key); err != nil {
		return serr.Wrap(err, "failed to clear local key "+key)
	}
	delete(d.cache, key)
	return nil
}

// Keys lists the stored keys.
func (d *DuckDB) Keys() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	keys := make([]string, 0, len(d.cache))
	for k := range d.cache {
		keys = append(keys, k)
	}
	return keys
}

// Close closes the database.
func (d *DuckDB) Close() error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}
