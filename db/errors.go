package db

import (
	"strings"

	"github.com/jasontalley/pact/errors"
)

// ErrDatabaseClosed marks operations attempted after the connection pool was
// shut down, which happens when a watch process is interrupted mid-rerun.
var ErrDatabaseClosed = errors.New("database is closed")

// IsDatabaseClosed matches both our own sentinel and the raw driver message.
// The sql package surfaces its own "database is closed" errors that we never
// get a chance to wrap, so a string check is the only net that catches both.
func IsDatabaseClosed(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrDatabaseClosed) ||
		strings.Contains(err.Error(), "database is closed")
}
