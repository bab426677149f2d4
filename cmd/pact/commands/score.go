package commands

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/jasontalley/pact/atom/gate"
	"github.com/jasontalley/pact/atom/scoring"
	"github.com/jasontalley/pact/config"
	"github.com/jasontalley/pact/display"
	"github.com/jasontalley/pact/judge"
	"github.com/jasontalley/pact/logger"
	"github.com/jasontalley/pact/sym"
)

// ScoreCmd represents the score command
var ScoreCmd = &cobra.Command{
	Use:   "score <description>",
	Short: sym.Score + " Score a description for atomicity",
	Long: sym.Score + ` score — Score a description for atomicity

Evaluate a behavioral description against the five atomicity
heuristics (single behavior, no compound statements, falsifiable,
observable, appropriately scoped) without creating an atom. When a
semantic judge is configured its assessment blends into the score.

Examples:
  pact score "User sees an error toast when login fails"
  pact score "Add auth and fix the dashboard" --json`,
	Args: cobra.ExactArgs(1),
	RunE: runScore,
}

func runScore(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	scorer := scoring.NewScorer(judge.FromConfig(cfg, logger.Logger), logger.Logger)
	result, err := scorer.Score(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to score description: %w", err)
	}

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(result)
	}

	verdict := pterm.Green("atomic")
	if !result.IsAtomic {
		verdict = pterm.Red("not atomic")
	}
	fmt.Printf("%s Score: %d/100 (%s)\n", sym.Score, result.QualityScore, verdict)
	decision := gate.Authorize(&result.QualityScore, cfg.GetQualityThreshold())
	if decision.OK {
		fmt.Printf("  Gate:       passes at threshold %d\n", decision.Threshold)
	} else {
		fmt.Printf("  Gate:       fails at threshold %d\n", decision.Threshold)
	}
	if result.JudgeConsulted && result.JudgeConfidence != nil {
		fmt.Printf("  Judge:      consulted (confidence %.2f)\n", *result.JudgeConfidence)
	}
	fmt.Println()
	for _, h := range result.Heuristics {
		mark := pterm.Green("✓")
		if !h.Passed {
			mark = pterm.Red("✗")
		}
		fmt.Printf("  %s %-22s %2d/%d\n", mark, h.Name, h.Score, h.MaxScore)
	}
	if len(result.Violations) > 0 {
		fmt.Println()
		for _, v := range result.Violations {
			pterm.Printf("  %s %s\n", pterm.Yellow("!"), v)
		}
	}
	if len(result.Suggestions) > 0 {
		fmt.Println()
		fmt.Println("  Suggestions:")
		for _, s := range result.Suggestions {
			fmt.Printf("    - %s\n", s)
		}
	}
	return nil
}
