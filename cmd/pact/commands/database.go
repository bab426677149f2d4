package commands

import (
	"database/sql"

	"github.com/jasontalley/pact/atom/registry"
	"github.com/jasontalley/pact/atom/scoring"
	"github.com/jasontalley/pact/atom/storage"
	"github.com/jasontalley/pact/config"
	"github.com/jasontalley/pact/db"
	"github.com/jasontalley/pact/errors"
	"github.com/jasontalley/pact/judge"
	"github.com/jasontalley/pact/logger"
)

// openDatabase opens and migrates a database using the specified path.
// If dbPath is empty, it loads from pact config. Uses logger.Logger for db operations.
func openDatabase(dbPath string) (*sql.DB, error) {
	if dbPath == "" {
		path, err := config.GetDatabasePath()
		if err != nil {
			return nil, errors.Wrap(err, "failed to get database path")
		}
		if path == "" {
			dbPath = "pact.db"
		} else {
			dbPath = path
		}
	}

	database, err := db.Open(dbPath, logger.Logger)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database at %s", dbPath)
	}

	if err := db.Migrate(database, logger.Logger); err != nil {
		database.Close()
		return nil, errors.Wrapf(err, "failed to run migrations on %s", dbPath)
	}

	return database, nil
}

// openRegistry wires the full governance stack: config, database, optional
// judge, scorer, and the lifecycle registry. Callers must Close the returned
// database.
func openRegistry() (*registry.Registry, *sql.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to load configuration")
	}

	database, err := openDatabase("")
	if err != nil {
		return nil, nil, err
	}

	store := storage.NewSQLStore(database, logger.Logger)
	scorer := scoring.NewScorer(judge.FromConfig(cfg, logger.Logger), logger.Logger)

	reg := registry.New(store, registry.Options{
		Scorer:    scorer,
		Threshold: cfg.GetQualityThreshold(),
		Logger:    logger.Logger,
	})

	return reg, database, nil
}
