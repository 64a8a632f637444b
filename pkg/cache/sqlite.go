package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/rubiojr/lunchbox/pkg/core"
	"github.com/rubiojr/lunchbox/pkg/log"
)

// SQLite is a disk-backed result cache. Entries survive process restarts,
// which is what makes the cached-fallback path useful offline. Payloads are
// stored as zstd-compressed JSON.
type SQLite struct {
	db      *sql.DB
	ttl     time.Duration
	encoder *zstd.Encoder
	decoder *zstd.Decoder
	logger  *log.Logger
	now     func() time.Time
}

// NewSQLite opens (or creates) a cache database at dbPath. A ttl of 0
// selects DefaultTTL.
func NewSQLite(dbPath string, ttl time.Duration) (*SQLite, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 30000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return nil, fmt.Errorf("applying pragma %q: %w", pragma, err)
		}
	}

	schema := `CREATE TABLE IF NOT EXISTS search_cache (
		key TEXT PRIMARY KEY,
		payload BLOB NOT NULL,
		stored_at INTEGER NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}

	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("creating zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}

	return &SQLite{
		db:      db,
		ttl:     ttl,
		encoder: encoder,
		decoder: decoder,
		logger:  log.ForComponent("cache"),
		now:     time.Now,
	}, nil
}

// Get returns the cached places for key if the row exists and has not
// expired. Storage errors degrade to a miss: the cache is advisory.
func (c *SQLite) Get(key string) ([]core.Place, bool) {
	var payload []byte
	var storedAt int64

	row := c.db.QueryRow(`SELECT payload, stored_at FROM search_cache WHERE key = ?`, key)
	if err := row.Scan(&payload, &storedAt); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			c.logger.Warnf("reading entry %s: %v", key, err)
		}
		return nil, false
	}

	if c.now().Sub(time.Unix(storedAt, 0)) >= c.ttl {
		return nil, false
	}

	raw, err := c.decoder.DecodeAll(payload, nil)
	if err != nil {
		c.logger.Warnf("decompressing entry %s: %v", key, err)
		return nil, false
	}

	var places []core.Place
	if err := json.Unmarshal(raw, &places); err != nil {
		c.logger.Warnf("unmarshaling entry %s: %v", key, err)
		return nil, false
	}
	return places, true
}

// Put stores places under key with the current timestamp. Last write wins;
// storage errors are logged and otherwise ignored.
func (c *SQLite) Put(key string, places []core.Place) {
	raw, err := json.Marshal(places)
	if err != nil {
		c.logger.Warnf("marshaling entry %s: %v", key, err)
		return
	}
	payload := c.encoder.EncodeAll(raw, nil)

	_, err = c.db.Exec(
		`INSERT OR REPLACE INTO search_cache (key, payload, stored_at) VALUES (?, ?, ?)`,
		key, payload, c.now().Unix(),
	)
	if err != nil {
		c.logger.Warnf("storing entry %s: %v", key, err)
	}
}

// Clear drops every entry.
func (c *SQLite) Clear() {
	if _, err := c.db.Exec(`DELETE FROM search_cache`); err != nil {
		c.logger.Warnf("clearing cache: %v", err)
	}
}

// Sweep deletes expired rows and returns how many were dropped.
func (c *SQLite) Sweep() int {
	cutoff := c.now().Add(-c.ttl).Unix()
	res, err := c.db.Exec(`DELETE FROM search_cache WHERE stored_at <= ?`, cutoff)
	if err != nil {
		c.logger.Warnf("sweeping cache: %v", err)
		return 0
	}
	dropped, err := res.RowsAffected()
	if err != nil {
		return 0
	}
	return int(dropped)
}

// Close releases the database and compression resources.
func (c *SQLite) Close() error {
	c.encoder.Close()
	c.decoder.Close()
	return c.db.Close()
}
