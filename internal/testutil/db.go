// Package testutil opens throwaway databases for package tests.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/iliyamo/fyyur-trivia/internal/database"
	"github.com/iliyamo/fyyur-trivia/internal/migration"
)

// OpenSQLite opens an empty SQLite file under t.TempDir and applies every
// step of the given sets.  The pool is closed when the test ends.
func OpenSQLite(t testing.TB, sets ...migration.Set) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := database.OpenDialector(sqlite.Open(database.SQLiteDSN(path)), false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	for _, set := range sets {
		require.NoError(t, set.Up(db, ""))
	}
	return db
}

// InUse reports how many pooled connections are checked out.
func InUse(t testing.TB, db *gorm.DB) int {
	t.Helper()
	sqlDB, err := db.DB()
	require.NoError(t, err)
	return sqlDB.Stats().InUse
}
