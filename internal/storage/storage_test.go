package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptcheck/config"
)

func newPromptDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "database.db")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE prompts (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		tags TEXT,
		isPublic INTEGER NOT NULL,
		author TEXT
	)`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO prompts (id, title, description, tags, isPublic, author) VALUES (?, ?, ?, ?, ?, ?)`,
		"prompt-1", "Admin Test Prompt", "This is an admin test prompt.", `["admin-test"]`, 1, nil)
	require.NoError(t, err)

	return path
}

func sqliteConfig(path string) config.StorageConfig {
	return config.StorageConfig{
		Type:   config.StorageSQLite,
		Table:  "prompts",
		SQLite: config.SQLiteConfig{Path: path},
	}
}

func TestVerifier_Lookup_SQLite(t *testing.T) {
	v := NewVerifier(sqliteConfig(newPromptDB(t)))

	row, err := v.Lookup(context.Background(), "prompt-1")
	require.NoError(t, err)
	require.NotNil(t, row)

	assert.Equal(t, []string{"id", "title", "description", "tags", "isPublic", "author"}, row.Columns)
	assert.Equal(t, []any{"prompt-1", "Admin Test Prompt", "This is an admin test prompt.", `["admin-test"]`, int64(1), nil}, row.Values)

	desc, ok := row.Get("description")
	assert.True(t, ok)
	assert.Equal(t, "This is an admin test prompt.", desc)
}

func TestVerifier_Lookup_Missing(t *testing.T) {
	v := NewVerifier(sqliteConfig(newPromptDB(t)))

	row, err := v.Lookup(context.Background(), "prompt-nope")
	require.NoError(t, err)
	assert.Nil(t, row)
	assert.Equal(t, "None", row.String())
}

func TestVerifier_Lookup_ExactMatch(t *testing.T) {
	v := NewVerifier(sqliteConfig(newPromptDB(t)))

	for _, id := range []string{"prompt-%", "PROMPT-1", "prompt-1 "} {
		row, err := v.Lookup(context.Background(), id)
		require.NoError(t, err)
		assert.Nil(t, row, id)
	}
}

func TestVerifier_Lookup_RepeatedReadsAreIdentical(t *testing.T) {
	v := NewVerifier(sqliteConfig(newPromptDB(t)))

	first, err := v.Lookup(context.Background(), "prompt-1")
	require.NoError(t, err)
	second, err := v.Lookup(context.Background(), "prompt-1")
	require.NoError(t, err)

	assert.True(t, first.Equal(second))
	assert.NotSame(t, first, second)
}

func TestVerifier_Lookup_MissingFileIsNotCreated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backend", "database.db")
	v := NewVerifier(sqliteConfig(path))

	_, err := v.Lookup(context.Background(), "prompt-1")
	require.Error(t, err)
	assert.NoFileExists(t, path)
}

func TestVerifier_Lookup_MissingTable(t *testing.T) {
	cfg := sqliteConfig(newPromptDB(t))
	cfg.Table = "agents"

	_, err := NewVerifier(cfg).Lookup(context.Background(), "prompt-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prompt-1")
}

func TestOpen_UnknownType(t *testing.T) {
	_, err := Open(context.Background(), config.StorageConfig{Type: "redis"})
	require.Error(t, err)
}

func TestRow_String(t *testing.T) {
	tests := []struct {
		name   string
		values []any
		want   string
	}{
		{
			name:   "mixed values",
			values: []any{"prompt-1", "Title", int64(1), nil, true, false},
			want:   `('prompt-1', 'Title', 1, None, True, False)`,
		},
		{
			name:   "single quote switches to double quotes",
			values: []any{"It's"},
			want:   `("It's",)`,
		},
		{
			name:   "both quote kinds keep single quotes",
			values: []any{`It's "quoted"`, "x"},
			want:   `('It\'s "quoted"', 'x')`,
		},
		{
			name:   "escapes",
			values: []any{"a\\b\nc", []byte("raw")},
			want:   `('a\\b\nc', 'raw')`,
		},
		{
			name:   "json text",
			values: []any{`["admin-test"]`, `[]`},
			want:   `('["admin-test"]', '[]')`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := &Row{Columns: make([]string, len(tt.values)), Values: tt.values}
			assert.Equal(t, tt.want, row.String())
		})
	}
}

func TestRow_Equal(t *testing.T) {
	a := &Row{Columns: []string{"id"}, Values: []any{"x"}}
	b := &Row{Columns: []string{"id"}, Values: []any{"x"}}
	c := &Row{Columns: []string{"id"}, Values: []any{"y"}}
	var none *Row

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(none))
	assert.True(t, none.Equal(nil))
}
