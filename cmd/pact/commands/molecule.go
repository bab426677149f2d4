package commands

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/jasontalley/pact/atom"
	"github.com/jasontalley/pact/display"
	"github.com/jasontalley/pact/sym"
)

// MoleculeCmd represents the molecule command
var MoleculeCmd = &cobra.Command{
	Use:   "molecule",
	Short: sym.Molecule + " Manage molecules",
	Long: sym.Molecule + ` molecule — Manage molecules

A molecule composes atoms into a larger behavioral unit. Membership is
ordered, and an atom cannot be removed from the catalog while a
molecule still references it.

Examples:
  pact molecule create "login flow" --description "Everything the login path promises"
  pact molecule list
  pact molecule show mol-1a2b3c
  pact molecule add mol-1a2b3c IA-042
  pact molecule remove mol-1a2b3c IA-042`,
}

var moleculeCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a molecule",
	Args:  cobra.ExactArgs(1),
	RunE:  runMoleculeCreate,
}

var moleculeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List molecules",
	RunE:  runMoleculeList,
}

var moleculeShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a molecule and its member atoms",
	Args:  cobra.ExactArgs(1),
	RunE:  runMoleculeShow,
}

var moleculeAddCmd = &cobra.Command{
	Use:   "add <molecule-id> <atom-id>",
	Short: "Add an atom to a molecule",
	Args:  cobra.ExactArgs(2),
	RunE:  runMoleculeAdd,
}

var moleculeRemoveCmd = &cobra.Command{
	Use:   "remove <molecule-id> <atom-id>",
	Short: "Remove an atom from a molecule",
	Args:  cobra.ExactArgs(2),
	RunE:  runMoleculeRemove,
}

var moleculeDescription string

func init() {
	moleculeCreateCmd.Flags().StringVar(&moleculeDescription, "description", "", "What the composed behavior promises")

	MoleculeCmd.AddCommand(moleculeCreateCmd)
	MoleculeCmd.AddCommand(moleculeListCmd)
	MoleculeCmd.AddCommand(moleculeShowCmd)
	MoleculeCmd.AddCommand(moleculeAddCmd)
	MoleculeCmd.AddCommand(moleculeRemoveCmd)
}

func runMoleculeCreate(cmd *cobra.Command, args []string) error {
	reg, database, err := openRegistry()
	if err != nil {
		return err
	}
	defer database.Close()

	m, err := reg.CreateMolecule(cmd.Context(), args[0], moleculeDescription)
	if err != nil {
		return fmt.Errorf("failed to create molecule: %w", err)
	}

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(m)
	}
	pterm.Success.Printf("Created molecule %s (%s)\n", m.ID, m.Name)
	return nil
}

func runMoleculeList(cmd *cobra.Command, args []string) error {
	reg, database, err := openRegistry()
	if err != nil {
		return err
	}
	defer database.Close()

	molecules, err := reg.ListMolecules(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list molecules: %w", err)
	}

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(molecules)
	}
	if len(molecules) == 0 {
		pterm.Info.Println("No molecules found")
		return nil
	}
	for _, m := range molecules {
		fmt.Printf("%s %-12s %s\n", sym.Molecule, m.ID, m.Name)
	}
	fmt.Printf("\n%d molecule(s)\n", len(molecules))
	return nil
}

func runMoleculeShow(cmd *cobra.Command, args []string) error {
	reg, database, err := openRegistry()
	if err != nil {
		return err
	}
	defer database.Close()

	m, err := reg.GetMolecule(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	atoms, err := reg.ListMoleculeAtoms(cmd.Context(), m.ID)
	if err != nil {
		return fmt.Errorf("failed to list molecule atoms: %w", err)
	}

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(struct {
			Molecule *atom.Molecule `json:"molecule"`
			Atoms    []*atom.Atom   `json:"atoms"`
		}{m, atoms})
	}
	fmt.Printf("%s %s  %s\n", sym.Molecule, m.ID, m.Name)
	if m.Description != "" {
		fmt.Printf("  Description: %s\n", m.Description)
	}
	fmt.Printf("  Created:     %s\n", m.CreatedAt.Format("2006-01-02 15:04:05"))
	if len(atoms) > 0 {
		fmt.Println()
		for _, a := range atoms {
			printAtomLine(a)
		}
	}
	fmt.Printf("\n%d atom(s)\n", len(atoms))
	return nil
}

func runMoleculeAdd(cmd *cobra.Command, args []string) error {
	reg, database, err := openRegistry()
	if err != nil {
		return err
	}
	defer database.Close()

	if err := reg.AddAtomToMolecule(cmd.Context(), args[0], args[1]); err != nil {
		return fmt.Errorf("failed to add atom to molecule: %w", err)
	}

	pterm.Success.Printf("Added %s to molecule %s\n", args[1], args[0])
	return nil
}

func runMoleculeRemove(cmd *cobra.Command, args []string) error {
	reg, database, err := openRegistry()
	if err != nil {
		return err
	}
	defer database.Close()

	if err := reg.RemoveAtomFromMolecule(cmd.Context(), args[0], args[1]); err != nil {
		return fmt.Errorf("failed to remove atom from molecule: %w", err)
	}

	pterm.Success.Printf("Removed %s from molecule %s\n", args[1], args[0])
	return nil
}
