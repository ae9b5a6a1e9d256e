/*
Package sqlite provides a SQLite-backed implementation of the entry and
waiver stores.

Both stores share one table keyed by (store, key); values are the JSON
encoding of the record, so the table mirrors the JSON files one row per key.

USAGE:

	db, err := sqlite.Open(filepath.Join(home, "ttb.db"))
	if err != nil {
	    return err
	}
	defer db.Close()

	entries := sqlite.Entries(db)
	waivers := sqlite.Waivers(db)
*/
package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Tiliavir/trivial-time-balance/internal/model"
)

// Store names used in the kv table.
const (
	entriesStore = "flexible-store"
	waiversStore = "waived-workdays"
)

// DB is an open SQLite database holding the stores.
type DB struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens (and migrates) the database at path.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	d := &DB{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return d, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) migrate() error {
	_, err := d.db.Exec(`
	CREATE TABLE IF NOT EXISTS kv (
		store TEXT NOT NULL,
		key   TEXT NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (store, key)
	);`)
	return err
}

// Table is one named store inside DB.
type Table[V any] struct {
	d    *DB
	name string
}

// NewTable returns the store called name.
func NewTable[V any](d *DB, name string) *Table[V] {
	return &Table[V]{d: d, name: name}
}

// Entries returns the entry store.
func Entries(d *DB) *Table[model.DayEntry] {
	return NewTable[model.DayEntry](d, entriesStore)
}

// Waivers returns the waiver store.
func Waivers(d *DB) *Table[model.WaivedDay] {
	return NewTable[model.WaivedDay](d, waiversStore)
}

func (t *Table[V]) Get(key string) (V, bool, error) {
	t.d.mu.RLock()
	defer t.d.mu.RUnlock()

	var zero V
	var raw string
	err := t.d.db.QueryRow(`SELECT value FROM kv WHERE store = ? AND key = ?`, t.name, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, fmt.Errorf("failed to get %s/%s: %w", t.name, key, err)
	}
	var v V
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return zero, false, fmt.Errorf("failed to decode %s/%s: %w", t.name, key, err)
	}
	return v, true, nil
}

func (t *Table[V]) Keys() ([]string, error) {
	t.d.mu.RLock()
	defer t.d.mu.RUnlock()

	rows, err := t.d.db.Query(`SELECT key FROM kv WHERE store = ? ORDER BY key`, t.name)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", t.name, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (t *Table[V]) Set(key string, value V) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s/%s: %w", t.name, key, err)
	}

	t.d.mu.Lock()
	defer t.d.mu.Unlock()
	_, err = t.d.db.Exec(`
		INSERT INTO kv (store, key, value) VALUES (?, ?, ?)
		ON CONFLICT (store, key) DO UPDATE SET value = excluded.value`,
		t.name, key, string(raw))
	if err != nil {
		return fmt.Errorf("failed to set %s/%s: %w", t.name, key, err)
	}
	return nil
}

func (t *Table[V]) Delete(key string) error {
	t.d.mu.Lock()
	defer t.d.mu.Unlock()
	if _, err := t.d.db.Exec(`DELETE FROM kv WHERE store = ? AND key = ?`, t.name, key); err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", t.name, key, err)
	}
	return nil
}
