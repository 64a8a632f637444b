package favorites

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// SQLite is the durable favorite store. The full ID set is loaded into
// memory at open so reads never touch the database; Toggle persists first
// and updates the in-memory set only after the write committed, keeping the
// two views atomic from the pipeline's perspective.
type SQLite struct {
	db  *sql.DB
	mu  sync.RWMutex
	ids map[string]bool
}

// NewSQLite opens (or creates) the favorites database at dbPath.
func NewSQLite(dbPath string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening favorites database: %w", err)
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

	schema := `CREATE TABLE IF NOT EXISTS favorites (
		place_id TEXT PRIMARY KEY,
		created_at INTEGER NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("creating favorites schema: %w", err)
	}

	store := &SQLite{db: db, ids: make(map[string]bool)}
	if err := store.load(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLite) load() error {
	rows, err := s.db.Query(`SELECT place_id FROM favorites`)
	if err != nil {
		return fmt.Errorf("loading favorites: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("scanning favorite: %w", err)
		}
		s.ids[id] = true
	}
	return rows.Err()
}

// FavoriteIDs returns a snapshot of the favorited IDs.
func (s *SQLite) FavoriteIDs() map[string]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]bool, len(s.ids))
	for id := range s.ids {
		out[id] = true
	}
	return out
}

// IsFavorite reports whether id is favorited.
func (s *SQLite) IsFavorite(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ids[id]
}

// Toggle flips the favorite state of id, persisting the change before
// updating the in-memory set. It returns the new state.
func (s *SQLite) Toggle(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ids[id] {
		if _, err := s.db.Exec(`DELETE FROM favorites WHERE place_id = ?`, id); err != nil {
			return true, fmt.Errorf("removing favorite %s: %w", id, err)
		}
		delete(s.ids, id)
		return false, nil
	}

	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO favorites (place_id, created_at) VALUES (?, ?)`,
		id, time.Now().Unix(),
	)
	if err != nil {
		return false, fmt.Errorf("adding favorite %s: %w", id, err)
	}
	s.ids[id] = true
	return true, nil
}

// Close releases the database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}
