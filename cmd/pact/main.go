package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jasontalley/pact/cmd/pact/commands"
	"github.com/jasontalley/pact/logger"
)

var rootCmd = &cobra.Command{
	Use:   "pact",
	Short: "pact - Intent governance engine",
	Long: `pact - Intent governance for behavioral requirements.

pact captures requirements as intent atoms: irreducible, falsifiable
behavioral statements with a governed lifecycle, quality scoring, and
test coupling analysis.

Available commands:
  atom      - Manage intent atoms (create, commit, supersede, ...)
  changeset - Group proposed atoms for batch review
  molecule  - Compose atoms into ordered groups
  coupling  - Analyze test-to-atom coupling
  score     - Score a description for atomicity
  db        - Manage the pact database
  config    - Manage pact configuration
  version   - Show version information

Examples:
  pact atom create "User sees a confirmation message after saving"
  pact atom commit IA-001
  pact coupling analyze ./src
  pact score "System responds within 200ms"`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		jsonOutput, _ := cmd.Root().PersistentFlags().GetBool("json")
		verbosity, _ := cmd.Root().PersistentFlags().GetCount("verbose")
		if err := logger.Initialize(jsonOutput, verbosity); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")

	rootCmd.AddCommand(commands.AtomCmd)
	rootCmd.AddCommand(commands.ChangesetCmd)
	rootCmd.AddCommand(commands.MoleculeCmd)
	rootCmd.AddCommand(commands.CouplingCmd)
	rootCmd.AddCommand(commands.ScoreCmd)
	rootCmd.AddCommand(commands.DbCmd)
	rootCmd.AddCommand(commands.ConfigCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	defer logger.Cleanup()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
