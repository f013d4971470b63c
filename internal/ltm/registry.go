// Package ltm keeps the registry of long-term identifiers: identifiers held
// by the semantic memory subsystem and therefore expected to outlive an
// agent reset. The registry is SQLite-backed so a host can point it at the
// semantic store's database; tests use an in-memory database.
package ltm

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS lti (
	letter TEXT NOT NULL,
	number INTEGER NOT NULL,
	PRIMARY KEY (letter, number)
);
`

// Registry records which (letter, number) identifiers are long-term.
type Registry struct {
	db *sql.DB
}

// Open opens (or creates) the registry at path. Use ":memory:" for an
// ephemeral registry.
func Open(path string) (*Registry, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open lti registry: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init lti registry: %w", err)
	}
	return &Registry{db: db}, nil
}

// Register marks (letter, number) as long-term. Idempotent.
func (r *Registry) Register(letter byte, number uint64) error {
	_, err := r.db.Exec(
		`INSERT OR IGNORE INTO lti (letter, number) VALUES (?, ?)`,
		string(letter), int64(number),
	)
	if err != nil {
		return fmt.Errorf("register lti %c%d: %w", letter, number, err)
	}
	return nil
}

// Known reports whether (letter, number) is registered.
func (r *Registry) Known(letter byte, number uint64) (bool, error) {
	var n int
	err := r.db.QueryRow(
		`SELECT COUNT(*) FROM lti WHERE letter = ? AND number = ?`,
		string(letter), int64(number),
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("lookup lti %c%d: %w", letter, number, err)
	}
	return n > 0, nil
}

// MaxNumber returns the highest registered number for letter, or 0.
func (r *Registry) MaxNumber(letter byte) (uint64, error) {
	var highest sql.NullInt64
	err := r.db.QueryRow(
		`SELECT MAX(number) FROM lti WHERE letter = ?`, string(letter),
	).Scan(&highest)
	if err != nil {
		return 0, fmt.Errorf("max lti number for %c: %w", letter, err)
	}
	if !highest.Valid {
		return 0, nil
	}
	return uint64(highest.Int64), nil
}

// Count returns the number of registered long-term identifiers.
func (r *Registry) Count() (int, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM lti`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count ltis: %w", err)
	}
	return n, nil
}

// OnIDCountersReset is the interner's reset notification. Registered
// identifiers survive a reset, so the registry itself is untouched; the
// hook exists so the semantic store can refresh any cached counter state.
func (r *Registry) OnIDCountersReset() error {
	// Touch the database so a dead connection surfaces here rather than on
	// the next retrieval.
	_, err := r.Count()
	return err
}

// Close releases the database handle.
func (r *Registry) Close() error {
	return r.db.Close()
}
