package db

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jasontalley/pact/errors"
)

func openMigrated(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenWithMigrations(filepath.Join(t.TempDir(), "pact.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrationsLoadInVersionOrder(t *testing.T) {
	steps, err := loadMigrations()
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(steps), 5)

	assert.Equal(t, bootstrapVersion, steps[0].version)
	for i := 1; i < len(steps); i++ {
		assert.Less(t, steps[i-1].filename, steps[i].filename, "steps should sort by filename")
		assert.NotEmpty(t, steps[i].sql)
	}
}

func TestMigrateBuildsGovernanceSchema(t *testing.T) {
	db := openMigrated(t)

	tables := []string{
		"schema_migrations",
		"atoms",
		"changesets",
		"molecules",
		"molecule_atoms",
		"human_id_counter",
	}
	for _, table := range tables {
		var n int
		err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&n)
		require.NoError(t, err)
		assert.Equal(t, 1, n, "table %s should exist after migrations", table)
	}

	// changeset_id lands on atoms via ALTER TABLE in a later step.
	rows, err := db.Query("SELECT changeset_id FROM atoms LIMIT 0")
	require.NoError(t, err)
	rows.Close()

	// The id counter is seeded so the first allocation yields IA-001.
	var next int
	require.NoError(t, db.QueryRow("SELECT next_value FROM human_id_counter").Scan(&next))
	assert.Equal(t, 1, next)
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openMigrated(t)

	versions, err := AppliedVersions(db)
	require.NoError(t, err)
	recorded := len(versions)

	require.NoError(t, Migrate(db, nil), "rerunning migrations should be safe")

	versions, err = AppliedVersions(db)
	require.NoError(t, err)
	assert.Len(t, versions, recorded, "reruns must not re-record migrations")
}

func TestAppliedVersions(t *testing.T) {
	db := openMigrated(t)

	versions, err := AppliedVersions(db)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(versions), 5)
	assert.Equal(t, bootstrapVersion, versions[0], "bootstrap migration should be recorded first")
	assert.True(t, sort.StringsAreSorted(versions), "versions should come back in apply order")
}

func TestMigrateErrorsCarryStackTraces(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "pact.db")

	// Poison the ledger: schema_migrations exists with no rows, and a bare
	// atoms table makes the status index in the atoms step fail.
	db, err := Open(dbPath, nil)
	require.NoError(t, err)
	_, err = db.Exec("CREATE TABLE schema_migrations (version INTEGER)")
	require.NoError(t, err)
	_, err = db.Exec("CREATE TABLE atoms (id TEXT)")
	require.NoError(t, err)
	db.Close()

	db, err = OpenWithMigrations(dbPath, nil)
	require.Error(t, err)
	require.Nil(t, db)
	assert.Contains(t, fmt.Sprintf("%+v", err), "migrate.go", "error should carry a stack trace")
	assert.NotNil(t, errors.GetReportableStackTrace(err))
}

func TestMigrateClosedDatabase(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "pact.db"), nil)
	require.NoError(t, err)
	db.Close()

	require.Error(t, Migrate(db, nil))
}
