package db

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/jasontalley/pact/errors"
)

// SQLiteBusyTimeoutMS is how long a connection waits on a locked database
// before returning SQLITE_BUSY. Governance commands are short-lived, so five
// seconds comfortably covers contention between the CLI and a watch process.
const SQLiteBusyTimeoutMS = 5000

// sessionPragmas run against every new handle, in order. WAL keeps readers
// unblocked during writes, foreign keys guard molecule and changeset
// references, and the busy timeout absorbs brief lock contention.
var sessionPragmas = []struct {
	name string
	stmt string
}{
	{"journal_mode", "PRAGMA journal_mode = WAL"},
	{"foreign_keys", "PRAGMA foreign_keys = ON"},
	{"busy_timeout", fmt.Sprintf("PRAGMA busy_timeout = %d", SQLiteBusyTimeoutMS)},
}

// Open opens the governance database at path and applies the session
// pragmas. A nil logger keeps the open silent, which the test helpers use.
func Open(path string, logger *zap.SugaredLogger) (*sql.DB, error) {
	if logger != nil {
		logger.Debugw("Opening database", "path", path)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "open database %s", path)
	}

	for _, pragma := range sessionPragmas {
		if _, err := db.Exec(pragma.stmt); err != nil {
			db.Close()
			return nil, errors.Wrapf(err, "apply %s pragma", pragma.name)
		}
	}

	if logger != nil {
		logger.Infow("Database opened",
			"path", path,
			"wal_mode", true,
			"foreign_keys", true,
		)
	}

	return db, nil
}

// OpenWithMigrations opens the database and brings the schema up to date in
// one step. This is the entry point most commands use.
func OpenWithMigrations(path string, logger *zap.SugaredLogger) (*sql.DB, error) {
	db, err := Open(path, logger)
	if err != nil {
		return nil, err
	}

	if err := Migrate(db, logger); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "run migrations")
	}

	return db, nil
}
