package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectSQLite(t *testing.T) {
	db, err := Connect(SQLite, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer db.Close()

	var one int
	require.NoError(t, db.Get(&one, "SELECT 1"))
	assert.Equal(t, 1, one)
	assert.Equal(t, 1, db.Stats().MaxOpenConnections)
}

func TestConnectUnknownDriver(t *testing.T) {
	_, err := Connect("mysql", "whatever")
	assert.ErrorContains(t, err, "unsupported database driver")
}
