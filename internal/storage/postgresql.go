package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"promptcheck/config"
)

// postgresReader implements Reader for PostgreSQL over a single connection
type postgresReader struct {
	conn  *pgx.Conn
	table string
}

func openPostgreSQL(ctx context.Context, cfg config.PostgreSQLConfig, table string) (Reader, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("PostgreSQL URL is required")
	}

	conn, err := pgx.Connect(ctx, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	return &postgresReader{conn: conn, table: table}, nil
}

func (s *postgresReader) FetchByID(ctx context.Context, id string) (*Row, error) {
	query := fmt.Sprintf("SELECT * FROM %s WHERE id = $1", quoteIdent(s.table))
	rows, err := s.conn.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		return nil, nil
	}

	values, err := rows.Values()
	if err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name
	}

	return &Row{Columns: columns, Values: values}, nil
}

func (s *postgresReader) Close() error {
	if s.conn != nil {
		return s.conn.Close(context.Background())
	}
	return nil
}
