package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"promptcheck/config"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// sqliteReader implements Reader for SQLite
type sqliteReader struct {
	db    *sql.DB
	table string
}

// openSQLite opens the database file at cfg.Path. Unlike sql.Open with the
// sqlite driver, a missing file is an error rather than a new empty database.
func openSQLite(ctx context.Context, cfg config.SQLiteConfig, table string) (Reader, error) {
	if _, err := os.Stat(cfg.Path); err != nil {
		return nil, fmt.Errorf("SQLite database %s: %w", cfg.Path, err)
	}

	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)", cfg.Path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	return &sqliteReader{db: db, table: table}, nil
}

func (s *sqliteReader) FetchByID(ctx context.Context, id string) (*Row, error) {
	query := fmt.Sprintf("SELECT * FROM %s WHERE id = ?", quoteIdent(s.table))
	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	return scanFirst(rows)
}

func (s *sqliteReader) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// scanFirst reads the first row of rows as a positional tuple, or returns nil
// when the result set is empty.
func scanFirst(rows *sql.Rows) (*Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	if !rows.Next() {
		if err := rows.Err(); err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		return nil, nil
	}

	values := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}
	for i, v := range values {
		if b, ok := v.([]byte); ok {
			values[i] = string(b)
		}
	}

	return &Row{Columns: columns, Values: values}, nil
}
