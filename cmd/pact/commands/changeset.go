package commands

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/jasontalley/pact/atom"
	"github.com/jasontalley/pact/atom/storage"
	"github.com/jasontalley/pact/display"
	"github.com/jasontalley/pact/sym"
)

// ChangesetCmd represents the changeset command
var ChangesetCmd = &cobra.Command{
	Use:   "changeset",
	Short: sym.Changeset + " Manage changesets",
	Long: sym.Changeset + ` changeset — Manage changesets

A changeset groups proposed atoms for batch review. Atoms created
under an open changeset start proposed instead of draft; approving the
changeset commits every member that clears the quality gate in one
transaction, and discarding it abandons them all.

Examples:
  pact changeset open "auth revamp"
  pact changeset list
  pact changeset show cs-1a2b3c
  pact changeset approve cs-1a2b3c
  pact changeset discard cs-1a2b3c
  pact changeset convert IA-042`,
}

var changesetOpenCmd = &cobra.Command{
	Use:   "open <name>",
	Short: "Open a new changeset",
	Args:  cobra.ExactArgs(1),
	RunE:  runChangesetOpen,
}

var changesetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List changesets",
	RunE:  runChangesetList,
}

var changesetShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a changeset and its atoms",
	Args:  cobra.ExactArgs(1),
	RunE:  runChangesetShow,
}

var changesetApproveCmd = &cobra.Command{
	Use:   "approve <id>",
	Short: "Approve a changeset",
	Long: `Commit every proposed atom in the changeset in one transaction.

Approval fails atomically if any member does not clear the quality
gate; no member commits until all of them can.`,
	Args: cobra.ExactArgs(1),
	RunE: runChangesetApprove,
}

var changesetDiscardCmd = &cobra.Command{
	Use:   "discard <id>",
	Short: "Discard a changeset",
	Long:  "Abandon every proposed atom in the changeset and close it.",
	Args:  cobra.ExactArgs(1),
	RunE:  runChangesetDiscard,
}

var changesetConvertCmd = &cobra.Command{
	Use:   "convert <atom-id>",
	Short: "Convert a proposed atom to a draft",
	Long:  "Detach a proposed atom from its changeset and convert it to a directly managed draft.",
	Args:  cobra.ExactArgs(1),
	RunE:  runChangesetConvert,
}

func init() {
	ChangesetCmd.AddCommand(changesetOpenCmd)
	ChangesetCmd.AddCommand(changesetListCmd)
	ChangesetCmd.AddCommand(changesetShowCmd)
	ChangesetCmd.AddCommand(changesetApproveCmd)
	ChangesetCmd.AddCommand(changesetDiscardCmd)
	ChangesetCmd.AddCommand(changesetConvertCmd)
}

func printChangeset(cs *atom.Changeset) {
	fmt.Printf("%s %s  %s\n", sym.Changeset, cs.ID, cs.Name)
	fmt.Printf("  Status:   %s\n", cs.Status)
	fmt.Printf("  Created:  %s\n", cs.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("  Updated:  %s\n", cs.UpdatedAt.Format("2006-01-02 15:04:05"))
}

func runChangesetOpen(cmd *cobra.Command, args []string) error {
	reg, database, err := openRegistry()
	if err != nil {
		return err
	}
	defer database.Close()

	cs, err := reg.OpenChangeset(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to open changeset: %w", err)
	}

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(cs)
	}
	pterm.Success.Printf("Opened changeset %s (%s)\n", cs.ID, cs.Name)
	return nil
}

func runChangesetList(cmd *cobra.Command, args []string) error {
	reg, database, err := openRegistry()
	if err != nil {
		return err
	}
	defer database.Close()

	changesets, err := reg.ListChangesets(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list changesets: %w", err)
	}

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(changesets)
	}
	if len(changesets) == 0 {
		pterm.Info.Println("No changesets found")
		return nil
	}
	for _, cs := range changesets {
		fmt.Printf("%s %-12s %-10s %s\n", sym.Changeset, cs.ID, cs.Status, cs.Name)
	}
	fmt.Printf("\n%d changeset(s)\n", len(changesets))
	return nil
}

func runChangesetShow(cmd *cobra.Command, args []string) error {
	reg, database, err := openRegistry()
	if err != nil {
		return err
	}
	defer database.Close()

	cs, err := reg.GetChangeset(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	atoms, err := reg.List(cmd.Context(), storage.ListFilter{ChangesetID: cs.ID})
	if err != nil {
		return fmt.Errorf("failed to list changeset atoms: %w", err)
	}

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(struct {
			Changeset *atom.Changeset `json:"changeset"`
			Atoms     []*atom.Atom    `json:"atoms"`
		}{cs, atoms})
	}
	printChangeset(cs)
	if len(atoms) > 0 {
		fmt.Println()
		for _, a := range atoms {
			printAtomLine(a)
		}
	}
	fmt.Printf("\n%d atom(s)\n", len(atoms))
	return nil
}

func runChangesetApprove(cmd *cobra.Command, args []string) error {
	reg, database, err := openRegistry()
	if err != nil {
		return err
	}
	defer database.Close()

	cs, err := reg.ApproveChangeset(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(cs)
	}
	pterm.Success.Printf("Approved changeset %s (%s)\n", cs.ID, cs.Name)
	return nil
}

func runChangesetDiscard(cmd *cobra.Command, args []string) error {
	reg, database, err := openRegistry()
	if err != nil {
		return err
	}
	defer database.Close()

	cs, err := reg.DiscardChangeset(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to discard changeset: %w", err)
	}

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(cs)
	}
	pterm.Success.Printf("Discarded changeset %s (%s)\n", cs.ID, cs.Name)
	return nil
}

func runChangesetConvert(cmd *cobra.Command, args []string) error {
	reg, database, err := openRegistry()
	if err != nil {
		return err
	}
	defer database.Close()

	a, err := reg.ConvertToDraft(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to convert atom to draft: %w", err)
	}

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(a)
	}
	pterm.Success.Printf("Converted %s to draft\n", a.HumanID)
	return nil
}
