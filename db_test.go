package main

import (
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/flickguess/assets"
)

func TestMigrate_EmbeddedIsIdempotent(t *testing.T) {
	db, err := openDB(filepath.Join(t.TempDir(), "nested", "app.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, migrate(db, assets.Migrations()))
	require.NoError(t, migrate(db, assets.Migrations()))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM _migrations`).Scan(&n))
	assert.Equal(t, 1, n)

	for _, table := range []string{"users", "rounds", "daily_results"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		assert.NoError(t, err, table)
	}
}

func TestMigrate_OrderAndFailure(t *testing.T) {
	db, err := openDB(filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	defer db.Close()

	fsys := fstest.MapFS{
		"002_seed.sql": {Data: []byte(`INSERT INTO things(name) VALUES ('a');`)},
		"001_init.sql": {Data: []byte(`CREATE TABLE things (name TEXT);`)},
		"README.md":    {Data: []byte(`not sql`)},
	}
	require.NoError(t, migrate(db, fsys))
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM things`).Scan(&n))
	assert.Equal(t, 1, n)

	bad := fstest.MapFS{"003_bad.sql": {Data: []byte(`CREATE TABLE oops (`)}}
	assert.Error(t, migrate(db, bad))
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM _migrations WHERE name='003_bad.sql'`).Scan(&n))
	assert.Zero(t, n, "failed migrations are not recorded")
}
