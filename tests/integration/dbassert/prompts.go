//go:build integration

// Package dbassert holds assertions on prompt rows read directly from storage.
package dbassert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptcheck/internal/storage"
)

// RequiredPromptColumns are columns every stored prompt row must carry.
var RequiredPromptColumns = []string{
	"id",
	"title",
	"description",
}

// ExpectedPrompt contains expected values for prompt row assertions.
// Zero values are not checked, allowing partial matching.
type ExpectedPrompt struct {
	ID          string
	Title       string
	Description string
	Author      string
}

// AssertPromptColumns verifies that all required columns are present.
func AssertPromptColumns(t *testing.T, row *storage.Row) {
	t.Helper()
	require.NotNil(t, row, "prompt row should exist")

	for _, col := range RequiredPromptColumns {
		_, ok := row.Get(col)
		assert.True(t, ok, "prompt row should have column %s", col)
	}
}

// AssertPromptMatches verifies that the row matches expected values.
// Only non-zero expected values are checked.
func AssertPromptMatches(t *testing.T, expected ExpectedPrompt, row *storage.Row) {
	t.Helper()
	require.NotNil(t, row, "prompt row should exist")

	check := func(column, want string) {
		if want == "" {
			return
		}
		got, ok := row.Get(column)
		if assert.True(t, ok, "missing column %s", column) {
			assert.Equal(t, want, got, "%s mismatch", column)
		}
	}

	check("id", expected.ID)
	check("title", expected.Title)
	check("description", expected.Description)
	check("author", expected.Author)
}

// AssertOnlyColumnChanged verifies that before and after differ at most in column.
func AssertOnlyColumnChanged(t *testing.T, before, after *storage.Row, column string) {
	t.Helper()
	require.NotNil(t, before)
	require.NotNil(t, after)
	require.Equal(t, before.Columns, after.Columns, "column sets differ")

	for i, name := range before.Columns {
		if name == column {
			continue
		}
		assert.Equal(t, before.Values[i], after.Values[i], "column %s changed", name)
	}
}
