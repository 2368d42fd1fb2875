package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payos/internal/platform/config"
)

func TestNewDBMemoryAndMigrate(t *testing.T) {
	db, err := NewDB(config.DatabaseConfig{URL: ":memory:", MaxConnections: 10})
	require.NoError(t, err)
	defer db.Close()

	applied, err := Migrate(db, filepath.Join("..", "..", "..", "migrations"))
	require.NoError(t, err)
	assert.Contains(t, applied, "001_init.sql")

	for _, table := range []string{"webhook_events", "subscriptions", "payment_links", "idempotency_keys", "audit_logs"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		require.NoError(t, err, table)
	}

	// running twice is harmless
	_, err = Migrate(db, filepath.Join("..", "..", "..", "migrations"))
	require.NoError(t, err)
}

func TestNewDBCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "payos.db")
	db, err := NewDB(config.DatabaseConfig{URL: "file:" + path, MaxConnections: 2})
	require.NoError(t, err)
	defer db.Close()

	_, err = os.Stat(filepath.Dir(path))
	require.NoError(t, err)
}

func TestMigrateOrdersFilesAndSkipsOthers(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "002_b.sql"), []byte("INSERT INTO t (v) VALUES ('b');"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "001_a.sql"), []byte("CREATE TABLE t (v TEXT);"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("not sql"), 0644))

	db, err := NewDB(config.DatabaseConfig{URL: ":memory:"})
	require.NoError(t, err)
	defer db.Close()

	applied, err := Migrate(db, dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_a.sql", "002_b.sql"}, applied)

	var v string
	require.NoError(t, db.QueryRow("SELECT v FROM t").Scan(&v))
	assert.Equal(t, "b", v)
}

func TestMigrateMissingDir(t *testing.T) {
	db, err := NewDB(config.DatabaseConfig{URL: ":memory:"})
	require.NoError(t, err)
	defer db.Close()

	_, err = Migrate(db, filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
