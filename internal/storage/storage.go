// Package storage reads prompt rows straight from the service's backing store,
// bypassing the service API. It is used to confirm that writes made through
// the API were persisted.
//
// Every lookup opens its own connection and closes it before returning.
package storage

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"promptcheck/config"
)

// Row is a single stored record as a positional tuple of column values.
// Its contents are reported as read, not interpreted.
type Row struct {
	Columns []string
	Values  []any
}

// Get returns the value of the named column.
func (r *Row) Get(column string) (any, bool) {
	if r == nil {
		return nil, false
	}
	for i, c := range r.Columns {
		if c == column {
			return r.Values[i], true
		}
	}
	return nil, false
}

// Equal reports whether both rows have the same columns and values.
func (r *Row) Equal(other *Row) bool {
	if r == nil || other == nil {
		return r == other
	}
	return reflect.DeepEqual(r.Columns, other.Columns) && reflect.DeepEqual(r.Values, other.Values)
}

// String renders the row as a tuple, e.g. ('prompt-1', "It's", 1, None).
// A nil row renders as None.
func (r *Row) String() string {
	if r == nil {
		return "None"
	}
	parts := make([]string, len(r.Values))
	for i, v := range r.Values {
		parts[i] = formatValue(v)
	}
	if len(parts) == 1 {
		return "(" + parts[0] + ",)"
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "None"
	case string:
		return quoteString(val)
	case []byte:
		return quoteString(string(val))
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		if val {
			return "True"
		}
		return "False"
	default:
		return fmt.Sprintf("%v", val)
	}
}

// quoteString single-quotes s, switching to double quotes when s contains a
// single quote but no double quote.
func quoteString(s string) string {
	quote := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		quote = '"'
	}

	var b strings.Builder
	b.WriteByte(quote)
	for _, c := range s {
		switch {
		case c == '\\':
			b.WriteString(`\\`)
		case c == rune(quote):
			b.WriteByte('\\')
			b.WriteRune(c)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\r':
			b.WriteString(`\r`)
		case c == '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(c)
		}
	}
	b.WriteByte(quote)
	return b.String()
}

// Reader fetches prompt rows by identifier from one open connection.
type Reader interface {
	// FetchByID returns the row whose id matches exactly, or nil if none does.
	FetchByID(ctx context.Context, id string) (*Row, error)

	// Close releases the connection.
	Close() error
}

// Open connects to the backend selected by cfg.Type.
func Open(ctx context.Context, cfg config.StorageConfig) (Reader, error) {
	switch cfg.Type {
	case config.StorageSQLite:
		return openSQLite(ctx, cfg.SQLite, cfg.Table)
	case config.StoragePostgreSQL:
		return openPostgreSQL(ctx, cfg.PostgreSQL, cfg.Table)
	case config.StorageMongoDB:
		return openMongoDB(ctx, cfg.MongoDB, cfg.Table)
	default:
		return nil, fmt.Errorf("unknown storage type: %s (valid: sqlite, postgresql, mongodb)", cfg.Type)
	}
}

// Verifier performs one-shot lookups against a configured backend.
type Verifier struct {
	cfg config.StorageConfig
}

// NewVerifier creates a Verifier for cfg.
func NewVerifier(cfg config.StorageConfig) *Verifier {
	return &Verifier{cfg: cfg}
}

// Lookup opens a connection, reads the row for id, and closes the connection.
// A missing row is reported as nil with no error.
func (v *Verifier) Lookup(ctx context.Context, id string) (*Row, error) {
	reader, err := Open(ctx, v.cfg)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = reader.Close()
	}()

	row, err := reader.FetchByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("looking up %s in %s: %w", id, v.cfg.Type, err)
	}
	return row, nil
}

// quoteIdent quotes a table name for SQL. Names are validated by config.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
