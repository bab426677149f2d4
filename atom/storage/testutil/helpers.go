// Package testutil provides database helpers for storage and registry tests.
package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/jasontalley/pact/atom"
	"github.com/jasontalley/pact/db"
)

// SetupTestDB creates an in-memory SQLite database for testing.
// Uses real migrations so the test schema matches the production schema.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { testDB.Close() })

	_, err = testDB.Exec("PRAGMA foreign_keys = ON")
	require.NoError(t, err)

	require.NoError(t, db.Migrate(testDB, nil), "failed to run migrations")
	return testDB
}

// SetupEmptyDB creates an in-memory SQLite database without any schema.
// Used for testing error handling when tables are missing.
func SetupEmptyDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { testDB.Close() })
	return testDB
}

// NewDraftAtom builds an unsaved draft atom with sensible defaults. The
// human id is assigned by the store on insert.
func NewDraftAtom(description string) *atom.Atom {
	now := time.Now().UTC()
	return &atom.Atom{
		ID:             uuid.NewString(),
		Description:    description,
		Category:       atom.CategoryFunctional,
		Status:         atom.StatusDraft,
		IntentIdentity: uuid.NewString(),
		IntentVersion:  1,
		Tags:           []string{},
		CreatedAt:      now,
		UpdatedAt:      now,
		RowVersion:     1,
	}
}

// SyncHumanIDCounter realigns the allocation counter with rows inserted
// directly by fixtures. Production inserts go through the store and never
// need this.
func SyncHumanIDCounter(t *testing.T, testDB *sql.DB) {
	t.Helper()

	_, err := testDB.Exec(`
		UPDATE human_id_counter
		SET next_value = (
			SELECT COALESCE(MAX(CAST(SUBSTR(human_id, 4) AS INTEGER)), 0) + 1 FROM atoms
		)
		WHERE id = 1`)
	require.NoError(t, err)
}
