package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_CreatesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deck.db")

	database, err := Open(path)
	require.NoError(t, err)
	defer database.Close()

	var name string
	err = database.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'mass_setups'`).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "mass_setups", name)
}

func TestOpen_IsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck.db")

	first, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := Open(path)
	require.NoError(t, err)
	defer second.Close()
	assert.NoError(t, second.Ping())
}

func TestInitDatabase_SetsGlobal(t *testing.T) {
	defer func() { DB = nil }()

	require.NoError(t, InitDatabase(filepath.Join(t.TempDir(), "deck.db")))
	assert.NotNil(t, DB)
	assert.NoError(t, Close())
}
