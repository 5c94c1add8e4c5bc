package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_CreatesSchema(t *testing.T) {
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Migrate(db))
	// Running again must be a no-op.
	require.NoError(t, Migrate(db))

	for _, table := range []string{"users", "password_reset_tokens", "scraping_sessions", "events"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		assert.NoError(t, err, "table %s", table)
	}
}

func TestNew_EnablesForeignKeys(t *testing.T) {
	db, err := New(filepath.Join(t.TempDir(), "fk.db"))
	require.NoError(t, err)
	defer db.Close()

	var enabled int
	require.NoError(t, db.QueryRow("PRAGMA foreign_keys").Scan(&enabled))
	assert.Equal(t, 1, enabled)
}

func TestMigrate_EmailUniqueIgnoresCase(t *testing.T) {
	db, err := New(filepath.Join(t.TempDir(), "email.db"))
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, Migrate(db))

	const insert = `INSERT INTO users (id, first_name, last_name, email, password_hash, created_at, updated_at)
		VALUES (?, 'a', 'b', ?, 'x', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`
	_, err = db.Exec(insert, "1", "someone@example.com")
	require.NoError(t, err)
	_, err = db.Exec(insert, "2", "SomeOne@Example.com")
	assert.Error(t, err)
}

func TestWithPragmas(t *testing.T) {
	assert.Equal(t, "a.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", withPragmas("a.db"))
	assert.Equal(t, "file:a.db?mode=rwc&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", withPragmas("file:a.db?mode=rwc"))
}
