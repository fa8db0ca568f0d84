package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS cases (
	id         TEXT PRIMARY KEY,
	suite      TEXT NOT NULL,
	expr       TEXT NOT NULL,
	want_type  TEXT NOT NULL DEFAULT '',
	want_error TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS cases_suite ON cases (suite);
`

// Store keeps conformance cases in a SQLite database, so suites can
// accumulate across runs and be shared between tools.
type Store struct {
	db *sql.DB
}

// OpenStore opens (creating if needed) the database at path. Use
// ":memory:" for an ephemeral store.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("catalog store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog store %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

func (st *Store) Close() error { return st.db.Close() }

// Put inserts or replaces cases under the named suite. Cases without
// an ID get one assigned, returned through the slice.
func (st *Store) Put(ctx context.Context, suite string, cases []Case) error {
	if suite == "" {
		return fmt.Errorf("catalog store: empty suite name")
	}
	tx, err := st.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("catalog store: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO cases (id, suite, expr, want_type, want_error)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("catalog store: %w", err)
	}
	defer stmt.Close()

	for i := range cases {
		c := &cases[i]
		if err := c.Validate(); err != nil {
			return err
		}
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		if _, err := stmt.ExecContext(ctx, c.ID, suite, c.Expression, c.WantType, c.WantError); err != nil {
			return fmt.Errorf("catalog store, case %s: %w", c.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("catalog store: %w", err)
	}
	slog.Debug("stored cases", "suite", suite, "count", len(cases))
	return nil
}

// Suite loads all cases stored under name, in insertion-id order.
func (st *Store) Suite(ctx context.Context, name string) (Suite, error) {
	rows, err := st.db.QueryContext(ctx,
		`SELECT id, expr, want_type, want_error FROM cases WHERE suite = ? ORDER BY id`, name)
	if err != nil {
		return Suite{}, fmt.Errorf("catalog store: %w", err)
	}
	defer rows.Close()

	s := Suite{Name: name}
	for rows.Next() {
		var c Case
		if err := rows.Scan(&c.ID, &c.Expression, &c.WantType, &c.WantError); err != nil {
			return Suite{}, fmt.Errorf("catalog store: %w", err)
		}
		s.Cases = append(s.Cases, c)
	}
	if err := rows.Err(); err != nil {
		return Suite{}, fmt.Errorf("catalog store: %w", err)
	}
	if len(s.Cases) == 0 {
		return Suite{}, fmt.Errorf("catalog store: suite %s is empty or unknown", name)
	}
	return s, nil
}

// Suites lists the stored suite names.
func (st *Store) Suites(ctx context.Context) ([]string, error) {
	rows, err := st.db.QueryContext(ctx,
		`SELECT DISTINCT suite FROM cases ORDER BY suite`)
	if err != nil {
		return nil, fmt.Errorf("catalog store: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("catalog store: %w", err)
		}
		names = append(names, n)
	}
	return names, rows.Err()
}
