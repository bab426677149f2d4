package commands

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jasontalley/pact/config"
	"github.com/jasontalley/pact/db"
	"github.com/jasontalley/pact/display"
	"github.com/jasontalley/pact/sym"
)

// DbCmd represents the db (database) command
var DbCmd = &cobra.Command{
	Use:   "db",
	Short: sym.DB + " Manage the pact database",
	Long: sym.DB + ` db — Manage the pact database

Database operations: migrations and catalog statistics.

Examples:
  pact db migrate                 # Apply pending schema migrations
  pact db stats                   # Show catalog statistics`,
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	Long:  "Open the database and apply any schema migrations that have not run yet.",
	RunE:  runDbMigrate,
}

var dbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show catalog statistics",
	Long:  "Display atom counts by status, changeset and molecule counts, and the next human id.",
	RunE:  runDbStats,
}

func init() {
	DbCmd.AddCommand(dbMigrateCmd)
	DbCmd.AddCommand(dbStatsCmd)
}

func runDbMigrate(cmd *cobra.Command, args []string) error {
	database, err := openDatabase("")
	if err != nil {
		return err
	}
	defer database.Close()

	versions, err := db.AppliedVersions(database)
	if err != nil {
		return fmt.Errorf("failed to list applied migrations: %w", err)
	}

	fmt.Printf("%s Database migrated (%d migration(s) applied)\n", sym.DB, len(versions))
	return nil
}

// dbStats is the stats payload, shaped for both renderings.
type dbStats struct {
	Path        string         `json:"path"`
	Atoms       map[string]int `json:"atoms"`
	TotalAtoms  int            `json:"total_atoms"`
	Changesets  map[string]int `json:"changesets"`
	Molecules   int            `json:"molecules"`
	NextHumanID string         `json:"next_human_id"`
}

func runDbStats(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	database, err := openDatabase("")
	if err != nil {
		return err
	}
	defer database.Close()

	stats := dbStats{
		Path:       cfg.GetDatabasePath(),
		Atoms:      make(map[string]int),
		Changesets: make(map[string]int),
	}

	rows, err := database.Query(`SELECT status, COUNT(*) FROM atoms GROUP BY status`)
	if err != nil {
		return fmt.Errorf("failed to query atom counts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return fmt.Errorf("failed to scan atom count: %w", err)
		}
		stats.Atoms[status] = count
		stats.TotalAtoms += count
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read atom counts: %w", err)
	}

	csRows, err := database.Query(`SELECT status, COUNT(*) FROM changesets GROUP BY status`)
	if err != nil {
		return fmt.Errorf("failed to query changeset counts: %w", err)
	}
	defer csRows.Close()
	for csRows.Next() {
		var status string
		var count int
		if err := csRows.Scan(&status, &count); err != nil {
			return fmt.Errorf("failed to scan changeset count: %w", err)
		}
		stats.Changesets[status] = count
	}
	if err := csRows.Err(); err != nil {
		return fmt.Errorf("failed to read changeset counts: %w", err)
	}

	if err := database.QueryRow(`SELECT COUNT(*) FROM molecules`).Scan(&stats.Molecules); err != nil {
		return fmt.Errorf("failed to count molecules: %w", err)
	}

	var next int
	err = database.QueryRow(`SELECT next_value FROM human_id_counter WHERE id = 1`).Scan(&next)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("failed to read human id counter: %w", err)
	}
	if next > 0 {
		stats.NextHumanID = fmt.Sprintf("IA-%03d", next)
	}

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(stats)
	}

	fmt.Printf("%s Database Statistics\n", sym.DB)
	fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")
	fmt.Printf("Database Path:    %s\n", stats.Path)
	fmt.Printf("Total Atoms:      %d\n", stats.TotalAtoms)
	for _, status := range []string{"proposed", "draft", "committed", "superseded", "abandoned"} {
		if count, ok := stats.Atoms[status]; ok {
			fmt.Printf("  %s %-12s %d\n", sym.StatusGlyph(status), status+":", count)
		}
	}
	fmt.Println()
	for _, status := range []string{"open", "approved", "discarded"} {
		if count, ok := stats.Changesets[status]; ok {
			fmt.Printf("Changesets %-10s %d\n", status+":", count)
		}
	}
	fmt.Printf("Molecules:        %d\n", stats.Molecules)
	if stats.NextHumanID != "" {
		fmt.Printf("Next Human ID:    %s\n", stats.NextHumanID)
	}
	return nil
}
