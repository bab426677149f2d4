package db

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jasontalley/pact/errors"
)

func TestOpenAppliesSessionPragmas(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "pact.db"), nil)
	require.NoError(t, err)
	defer db.Close()

	checks := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"busy_timeout", strconv.Itoa(SQLiteBusyTimeoutMS)},
	}
	for _, c := range checks {
		var got string
		require.NoError(t, db.QueryRow("PRAGMA "+c.pragma).Scan(&got), c.pragma)
		assert.Equal(t, c.want, got, "PRAGMA %s", c.pragma)
	}
}

func TestOpenCreatesMissingFile(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "new.db")

	db, err := Open(dbPath, nil)
	require.NoError(t, err)
	defer db.Close()

	_, err = os.Stat(dbPath)
	assert.NoError(t, err, "open should create the database file")
}

func TestOpenRejectsUnreachablePath(t *testing.T) {
	db, err := Open("/no/such/directory/pact.db", nil)
	// The driver defers connecting on some platforms; force it with a ping.
	if err == nil && db != nil {
		err = db.Ping()
		db.Close()
	}
	assert.Error(t, err)
}

func TestOpenWithLogger(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "pact.db"), zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)
	require.NoError(t, db.Close())
}

func TestIsDatabaseClosed(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"wrapped sentinel", errors.Wrap(ErrDatabaseClosed, "query atoms"), true},
		{"raw driver message", errors.New("sql: database is closed"), true},
		{"unrelated error", errors.New("no such table: atoms"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsDatabaseClosed(tt.err); got != tt.want {
				t.Errorf("IsDatabaseClosed(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
