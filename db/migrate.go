package db

import (
	"database/sql"
	"embed"
	"path"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/jasontalley/pact/errors"
)

//go:embed sqlite/migrations/*.sql
var migrationFS embed.FS

const migrationDir = "sqlite/migrations"

// bootstrapVersion creates the schema_migrations table itself, so it is the
// one step allowed to run while that table is still missing.
const bootstrapVersion = "000"

// migration is one embedded schema step. Apply order follows the numeric
// filename prefix, which doubles as the recorded version.
type migration struct {
	version  string
	filename string
	sql      string
}

// loadMigrations reads the embedded steps in apply order.
func loadMigrations() ([]migration, error) {
	entries, err := migrationFS.ReadDir(migrationDir)
	if err != nil {
		return nil, errors.Wrap(err, "read migrations")
	}

	var steps []migration
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}
		raw, err := migrationFS.ReadFile(path.Join(migrationDir, name))
		if err != nil {
			return nil, errors.Wrapf(err, "read %s", name)
		}
		steps = append(steps, migration{
			version:  strings.SplitN(name, "_", 2)[0],
			filename: name,
			sql:      string(raw),
		})
	}
	sort.Slice(steps, func(i, j int) bool { return steps[i].filename < steps[j].filename })
	return steps, nil
}

// Migrate brings the schema up to date. Each pending step runs in its own
// transaction; applied steps are skipped, so calling this on every open is
// safe.
func Migrate(db *sql.DB, logger *zap.SugaredLogger) error {
	steps, err := loadMigrations()
	if err != nil {
		return err
	}

	applied := 0
	for _, step := range steps {
		done, err := isApplied(db, step)
		if err != nil {
			return err
		}
		if done {
			if logger != nil {
				logger.Debugw("Skipping migration (already applied)",
					"migration", step.filename)
			}
			continue
		}

		if logger != nil {
			logger.Infow("Applying migration",
				"migration", step.filename,
				"version", step.version)
		}
		if err := apply(db, step); err != nil {
			return err
		}
		applied++
	}

	if logger != nil {
		logger.Infow("Migrations complete",
			"applied", applied,
			"total", len(steps))
	}
	return nil
}

// isApplied reports whether the step's version is already recorded. A missing
// schema_migrations table is only legal for the bootstrap step.
func isApplied(db *sql.DB, step migration) (bool, error) {
	var exists bool
	err := db.QueryRow(
		"SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = ?)",
		step.version).Scan(&exists)
	if err != nil {
		if step.version != bootstrapVersion {
			return false, errors.Newf("schema_migrations table missing, but migration is not %s: %s",
				bootstrapVersion, step.filename)
		}
		return false, nil
	}
	return exists, nil
}

// apply executes the step and records its version in one transaction. The
// bootstrap step creates schema_migrations and then records itself through it.
func apply(db *sql.DB, step migration) error {
	tx, err := db.Begin()
	if err != nil {
		return errors.Wrapf(err, "begin tx for %s", step.filename)
	}

	if _, err := tx.Exec(step.sql); err != nil {
		tx.Rollback()
		return errors.Wrapf(err, "execute %s", step.filename)
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", step.version); err != nil {
		tx.Rollback()
		return errors.Wrapf(err, "record %s", step.filename)
	}

	return errors.Wrapf(tx.Commit(), "commit %s", step.filename)
}

// AppliedVersions returns the recorded migration versions in apply order.
func AppliedVersions(db *sql.DB) ([]string, error) {
	rows, err := db.Query("SELECT version FROM schema_migrations ORDER BY version")
	if err != nil {
		return nil, errors.Wrap(err, "read schema_migrations")
	}
	defer rows.Close()

	var versions []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, errors.Wrap(err, "scan migration version")
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}
