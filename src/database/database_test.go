package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMigrationsCreatesTables(t *testing.T) {
	db, err := OpenForTest()
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{"dashboards", "daily_prices"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, table)
		assert.Equal(t, table, name)
	}
}

func TestRunMigrationsIsRepeatable(t *testing.T) {
	db, err := OpenForTest()
	require.NoError(t, err)
	defer db.Close()

	assert.NoError(t, RunMigrations(db))
}

func TestRunMigrationsRejectsNilDB(t *testing.T) {
	assert.Error(t, RunMigrations(nil))
}
