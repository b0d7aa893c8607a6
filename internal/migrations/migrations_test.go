package migrations

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatementsAreCreateIfAbsent(t *testing.T) {
	for _, dialect := range []string{Postgres, SQLite} {
		t.Run(dialect, func(t *testing.T) {
			stmts, err := Statements(dialect)
			require.NoError(t, err)
			require.Len(t, stmts, 9)
			for _, stmt := range stmts {
				assert.True(t,
					strings.HasPrefix(stmt, "CREATE TABLE IF NOT EXISTS") ||
						strings.HasPrefix(stmt, "CREATE INDEX IF NOT EXISTS"),
					"not idempotent: %s", stmt)
			}
			assert.Contains(t, stmts[0], "balls")
			assert.Contains(t, stmts[len(stmts)-1], "frame_shots")
		})
	}
}

func TestSQLiteDialectUsesAutoincrement(t *testing.T) {
	stmts, err := Statements(SQLite)
	require.NoError(t, err)
	joined := strings.Join(stmts, "\n")
	assert.NotContains(t, joined, "SERIAL")
	assert.NotContains(t, joined, "DOUBLE PRECISION")
	assert.Contains(t, joined, "AUTOINCREMENT")
}

func TestStatementsUnknownDialect(t *testing.T) {
	_, err := Statements("oracle")
	assert.Error(t, err)
}

func TestLatestVersion(t *testing.T) {
	v, err := LatestVersion(Postgres)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}
