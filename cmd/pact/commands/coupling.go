package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/jasontalley/pact/atom/registry"
	"github.com/jasontalley/pact/config"
	"github.com/jasontalley/pact/coupling"
	"github.com/jasontalley/pact/display"
	"github.com/jasontalley/pact/logger"
	"github.com/jasontalley/pact/sym"
)

// CouplingCmd represents the coupling command
var CouplingCmd = &cobra.Command{
	Use:   "coupling",
	Short: sym.Coupling + " Analyze test-atom coupling",
	Long: sym.Coupling + ` coupling — Analyze test-atom coupling

Scan test files for @atom annotations and reconcile them against the
atom catalog. The report lists orphan tests (no annotation), unrealized
atoms (committed but untested), and mismatches (annotations referencing
unknown atoms), and computes a coupling score as the percentage of
annotated tests.

The gate fails when the score is below the threshold or any mismatch
exists. A run with zero discovered tests scores 100 and passes.

Annotations bind a test to the atom it realizes:

  // @atom IA-042
  func TestLoginFailureShowsToast(t *testing.T) { ... }

Examples:
  pact coupling analyze
  pact coupling analyze --root ./services/auth --threshold 90
  pact coupling analyze --include '**/*_test.go'
  pact coupling watch`,
}

var couplingAnalyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run one coupling analysis",
	Long:  "Run one analysis over the tree and print the report. Exits non-zero when the gate fails.",
	RunE:  runCouplingAnalyze,
}

var couplingWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-analyze on file changes",
	Long:  "Watch the tree and re-run the analysis whenever test files change. Stops on interrupt.",
	RunE:  runCouplingWatch,
}

var (
	couplingRoot      string
	couplingThreshold int
	couplingIncludes  []string
	couplingExcludes  []string
)

func init() {
	for _, c := range []*cobra.Command{couplingAnalyzeCmd, couplingWatchCmd} {
		c.Flags().StringVar(&couplingRoot, "root", ".", "Directory tree to analyze")
		c.Flags().IntVar(&couplingThreshold, "threshold", 0, "Minimum passing score (overrides config)")
		c.Flags().StringArrayVar(&couplingIncludes, "include", nil, "Test file glob (repeatable, overrides config)")
		c.Flags().StringArrayVar(&couplingExcludes, "exclude", nil, "Exclusion glob (repeatable, overrides config)")
	}

	CouplingCmd.AddCommand(couplingAnalyzeCmd)
	CouplingCmd.AddCommand(couplingWatchCmd)
}

// analysisOptions merges config-derived analyzer options with flag
// overrides.
func analysisOptions(cmd *cobra.Command, cfg *config.Config) coupling.Options {
	opts := cfg.CouplingOptions(couplingRoot)
	if cmd.Flags().Changed("threshold") {
		opts.Threshold = couplingThreshold
	}
	if len(couplingIncludes) > 0 {
		opts.Includes = couplingIncludes
	}
	if len(couplingExcludes) > 0 {
		opts.Excludes = couplingExcludes
	}
	return opts
}

// analyzeOnce snapshots the catalog and runs one analysis over the tree.
func analyzeOnce(ctx context.Context, reg *registry.Registry, opts coupling.Options) (*coupling.Report, error) {
	catalog, err := reg.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot atom catalog: %w", err)
	}
	analyzer := coupling.NewAnalyzer(opts, catalog, logger.Logger)
	report, err := analyzer.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}
	return report, nil
}

func runCouplingAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	reg, database, err := openRegistry()
	if err != nil {
		return err
	}
	defer database.Close()

	report, err := analyzeOnce(cmd.Context(), reg, analysisOptions(cmd, cfg))
	if err != nil {
		return err
	}

	if display.ShouldOutputJSON(cmd) {
		if err := display.OutputJSON(report); err != nil {
			return err
		}
	} else if report.PassesGate {
		fmt.Print(coupling.Render(report))
		pterm.Success.Printf("Coupling gate passed: %d%% (threshold %d%%)\n",
			report.Summary.CouplingScore, report.Threshold)
	}

	// A failing gate surfaces the full report through the returned error.
	return coupling.CheckGate(report)
}

func runCouplingWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	reg, database, err := openRegistry()
	if err != nil {
		return err
	}
	defer database.Close()

	var (
		optsMu sync.Mutex
		opts   = analysisOptions(cmd, cfg)
	)
	rerun := func() {
		optsMu.Lock()
		current := opts
		optsMu.Unlock()

		report, err := analyzeOnce(cmd.Context(), reg, current)
		if err != nil {
			pterm.Error.Printf("Analysis failed: %v\n", err)
			return
		}
		fmt.Printf("\n[%s]\n", time.Now().Format("15:04:05"))
		fmt.Print(coupling.Render(report))
		if report.PassesGate {
			pterm.Success.Printf("Coupling gate passed: %d%%\n", report.Summary.CouplingScore)
		} else {
			pterm.Error.Printf("Coupling gate failed: %d%% (threshold %d%%)\n",
				report.Summary.CouplingScore, report.Threshold)
		}
	}

	watcher, err := coupling.NewWatcher(couplingRoot, rerun, logger.Logger)
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	watcher.Start()

	// Threshold and glob edits in the config file take effect on the next
	// run without restarting the watch.
	if configPath := config.ActiveConfigFile(); configPath != "" {
		cfgWatcher, err := config.NewConfigWatcher(configPath)
		if err != nil {
			logger.Warnw("Config watch unavailable", "path", configPath, "error", err)
		} else {
			cfgWatcher.OnReload(func(newCfg *config.Config) error {
				optsMu.Lock()
				opts = analysisOptions(cmd, newCfg)
				optsMu.Unlock()
				rerun()
				return nil
			})
			config.SetGlobalWatcher(cfgWatcher)
			cfgWatcher.Start()
			defer cfgWatcher.Stop()
		}
	}

	pterm.Info.Printf("Watching %s for changes (Ctrl-C to stop)\n", couplingRoot)
	rerun()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	return watcher.Stop()
}
