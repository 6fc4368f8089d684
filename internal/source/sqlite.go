package source

import (
	"context"
	"database/sql"
	"strings"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLite reads the operations, expenses and users tables of a SQLite
// snapshot file. The database is opened read-only.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens the SQLite database at dsn.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	// Pragmas are per connection.
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA query_only=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLite{db: db}, nil
}

// Load implements Source.
func (s *SQLite) Load(ctx context.Context) (*Snapshot, error) {
	byTable := make(map[string][]record, len(tables))
	for _, tbl := range tables {
		recs, err := s.queryTable(ctx, tbl.name, tbl.columns)
		if err != nil {
			return nil, err
		}
		byTable[tbl.name] = recs
	}

	snap, err := snapshotFromRecords(byTable)
	if err != nil {
		return nil, err
	}
	logLoaded("sqlite", snap)
	return snap, nil
}

func (s *SQLite) queryTable(ctx context.Context, table string, columns []string) ([]record, error) {
	query := selectText(table, columns, func(col string) string {
		return "COALESCE(CAST(" + col + " AS TEXT), '')"
	})
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: query %s", table)
	}
	defer rows.Close() //nolint:errcheck

	recs, err := scanRecords(columns, rows.Next, rows.Scan)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: scan %s", table)
	}
	return recs, eris.Wrapf(rows.Err(), "sqlite: iterate %s", table)
}

// Close implements Source.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// selectText builds a SELECT that returns every column as text, ordered by id.
func selectText(table string, columns []string, asText func(string) string) string {
	exprs := make([]string, len(columns))
	for i, col := range columns {
		exprs[i] = asText(col)
	}
	return "SELECT " + strings.Join(exprs, ", ") + " FROM " + table + " ORDER BY id"
}

// scanRecords drains a row cursor whose columns are all text.
func scanRecords(columns []string, next func() bool, scan func(dest ...any) error) ([]record, error) {
	var out []record
	values := make([]string, len(columns))
	dest := make([]any, len(columns))
	for i := range values {
		dest[i] = &values[i]
	}
	for next() {
		if err := scan(dest...); err != nil {
			return nil, err
		}
		rec := make(record, len(columns))
		for i, col := range columns {
			rec[col] = values[i]
		}
		out = append(out, rec)
	}
	return out, nil
}
