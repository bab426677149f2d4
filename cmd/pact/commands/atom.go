package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/jasontalley/pact/atom"
	"github.com/jasontalley/pact/atom/registry"
	"github.com/jasontalley/pact/atom/storage"
	"github.com/jasontalley/pact/display"
	"github.com/jasontalley/pact/sym"
)

// AtomCmd represents the atom command
var AtomCmd = &cobra.Command{
	Use:   "atom",
	Short: sym.Atom + " Manage intent atoms",
	Long: sym.Atom + ` atom — Manage intent atoms

An intent atom is one irreducible, falsifiable behavioral statement.
Atoms move through a lifecycle (draft or proposed, committed,
superseded or abandoned) and committed atoms are frozen forever.

Examples:
  pact atom create "User sees an error toast when login fails"
  pact atom create "Retries use exponential backoff" --category reliability --tag auth
  pact atom show IA-042
  pact atom list --status committed --tag auth
  pact atom update IA-042 --description "Retries back off exponentially to 30s"
  pact atom commit IA-042
  pact atom supersede IA-042 --description "Retries back off with jitter to 60s"
  pact atom chain IA-042
  pact atom export --output atoms.yaml
  pact atom import atoms.yaml`,
}

var atomCreateCmd = &cobra.Command{
	Use:   "create <description>",
	Short: "Create a new intent atom",
	Long: `Create a new intent atom from a behavioral description.

The atom starts as a draft unless --changeset places it under an open
changeset, in which case it starts proposed and commits through
changeset approval. When scoring is configured the description is
scored at creation time.`,
	Args: cobra.ExactArgs(1),
	RunE: runAtomCreate,
}

var atomShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one atom",
	Long:  "Display a single atom by human id (IA-NNN) or UUID.",
	Args:  cobra.ExactArgs(1),
	RunE:  runAtomShow,
}

var atomListCmd = &cobra.Command{
	Use:   "list",
	Short: "List atoms",
	Long:  "List atoms in human id order, optionally filtered by status, category, tag, or changeset.",
	RunE:  runAtomList,
}

var atomUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a draft or proposed atom",
	Long: `Update fields of a draft or proposed atom.

Description changes append to the refinement history with their source
(user, ai, or system). Committed atoms are frozen and cannot be updated.`,
	Args: cobra.ExactArgs(1),
	RunE: runAtomUpdate,
}

var atomCommitCmd = &cobra.Command{
	Use:   "commit <id>",
	Short: "Commit a draft atom",
	Long: `Promote a draft atom into the governed set.

The quality gate must authorize the atom's score first. Proposed atoms
commit through changeset approval, not directly.`,
	Args: cobra.ExactArgs(1),
	RunE: runAtomCommit,
}

var atomSupersedeCmd = &cobra.Command{
	Use:   "supersede <id>",
	Short: "Supersede a committed atom",
	Long: `Replace a committed atom with a successor.

With --by, links an existing atom as the successor. With --description,
creates a new draft as the next edition of the same intent and links it
in one step. The original stays in the catalog as superseded.`,
	Args: cobra.ExactArgs(1),
	RunE: runAtomSupersede,
}

var atomChainCmd = &cobra.Command{
	Use:   "chain <id>",
	Short: "Show an atom's supersession chain",
	Long:  "Walk the supersession chain from the given atom to its latest edition.",
	Args:  cobra.ExactArgs(1),
	RunE:  runAtomChain,
}

var atomTagCmd = &cobra.Command{
	Use:   "tag <id> <tag>",
	Short: "Add a tag to an atom",
	Args:  cobra.ExactArgs(2),
	RunE:  runAtomTag,
}

var atomUntagCmd = &cobra.Command{
	Use:   "untag <id> <tag>",
	Short: "Remove a tag from an atom",
	Args:  cobra.ExactArgs(2),
	RunE:  runAtomUntag,
}

var atomAbandonCmd = &cobra.Command{
	Use:   "abandon <id>",
	Short: "Abandon a draft or proposed atom",
	Long:  "Withdraw a draft or proposed atom without committing it. Abandoned atoms stay in the catalog.",
	Args:  cobra.ExactArgs(1),
	RunE:  runAtomAbandon,
}

var atomRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Delete a draft or proposed atom",
	Long:  "Delete a draft or proposed atom outright. Committed and superseded atoms never leave the catalog.",
	Args:  cobra.ExactArgs(1),
	RunE:  runAtomRemove,
}

var atomExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the catalog to YAML",
	Long:  "Write every atom to a YAML catalog document, to stdout or to --output.",
	RunE:  runAtomExport,
}

var atomImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import atoms from a YAML catalog",
	Long: `Import atoms from a YAML catalog document, from a file or from
stdin when the file is "-". Imported atoms are created fresh as drafts
with new ids; lifecycle state does not carry over.`,
	Args: cobra.ExactArgs(1),
	RunE: runAtomImport,
}

var (
	atomCreateCategory  string
	atomCreateTags      []string
	atomCreateChangeset string
	atomCreateOutcomes  []string
	atomCreateCriteria  []string

	atomListStatuses  []string
	atomListCategory  string
	atomListTag       string
	atomListChangeset string

	atomUpdateDescription string
	atomUpdateCategory    string
	atomUpdateScore       int
	atomUpdateSource      string

	atomSupersedeBy          string
	atomSupersedeDescription string
	atomSupersedeCategory    string

	atomExportOutput string
)

func init() {
	atomCreateCmd.Flags().StringVar(&atomCreateCategory, "category", "", "Atom category: functional, performance, security, reliability, usability, maintainability")
	atomCreateCmd.Flags().StringArrayVar(&atomCreateTags, "tag", nil, "Tag to attach (repeatable)")
	atomCreateCmd.Flags().StringVar(&atomCreateChangeset, "changeset", "", "Open changeset to propose the atom under")
	atomCreateCmd.Flags().StringArrayVar(&atomCreateOutcomes, "outcome", nil, "Observable outcome of the behavior (repeatable)")
	atomCreateCmd.Flags().StringArrayVar(&atomCreateCriteria, "criterion", nil, "Falsifiability criterion for the behavior (repeatable)")

	atomListCmd.Flags().StringArrayVar(&atomListStatuses, "status", nil, "Filter by status (repeatable): proposed, draft, committed, superseded, abandoned")
	atomListCmd.Flags().StringVar(&atomListCategory, "category", "", "Filter by category")
	atomListCmd.Flags().StringVar(&atomListTag, "tag", "", "Filter by tag")
	atomListCmd.Flags().StringVar(&atomListChangeset, "changeset", "", "Filter by changeset id")

	atomUpdateCmd.Flags().StringVar(&atomUpdateDescription, "description", "", "New description (appends to refinement history)")
	atomUpdateCmd.Flags().StringVar(&atomUpdateCategory, "category", "", "New category")
	atomUpdateCmd.Flags().IntVar(&atomUpdateScore, "score", 0, "Manually set the quality score (0-100)")
	atomUpdateCmd.Flags().StringVar(&atomUpdateSource, "source", "", "Refinement source for description changes: user, ai, system")

	atomSupersedeCmd.Flags().StringVar(&atomSupersedeBy, "by", "", "Existing atom to link as the successor")
	atomSupersedeCmd.Flags().StringVar(&atomSupersedeDescription, "description", "", "Description for a new successor atom")
	atomSupersedeCmd.Flags().StringVar(&atomSupersedeCategory, "category", "", "Category for the new successor (defaults to the original's)")

	atomExportCmd.Flags().StringVar(&atomExportOutput, "output", "", "File to write the catalog to (default stdout)")

	AtomCmd.AddCommand(atomCreateCmd)
	AtomCmd.AddCommand(atomShowCmd)
	AtomCmd.AddCommand(atomListCmd)
	AtomCmd.AddCommand(atomUpdateCmd)
	AtomCmd.AddCommand(atomCommitCmd)
	AtomCmd.AddCommand(atomSupersedeCmd)
	AtomCmd.AddCommand(atomChainCmd)
	AtomCmd.AddCommand(atomTagCmd)
	AtomCmd.AddCommand(atomUntagCmd)
	AtomCmd.AddCommand(atomAbandonCmd)
	AtomCmd.AddCommand(atomRemoveCmd)
	AtomCmd.AddCommand(atomExportCmd)
	AtomCmd.AddCommand(atomImportCmd)
}

func runAtomCreate(cmd *cobra.Command, args []string) error {
	reg, database, err := openRegistry()
	if err != nil {
		return err
	}
	defer database.Close()

	req := registry.CreateRequest{
		Description: args[0],
		Category:    atom.Category(atomCreateCategory),
		Tags:        atomCreateTags,
		ChangesetID: atomCreateChangeset,
	}
	for _, o := range atomCreateOutcomes {
		req.ObservableOutcomes = append(req.ObservableOutcomes, atom.OutcomeClause{Description: o})
	}
	for _, c := range atomCreateCriteria {
		req.FalsifiabilityCriteria = append(req.FalsifiabilityCriteria, atom.CriterionClause{Description: c})
	}

	a, err := reg.Create(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("failed to create atom: %w", err)
	}

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(a)
	}
	pterm.Success.Printf("Created atom %s\n", a.HumanID)
	printAtom(a)
	return nil
}

func runAtomShow(cmd *cobra.Command, args []string) error {
	reg, database, err := openRegistry()
	if err != nil {
		return err
	}
	defer database.Close()

	a, err := reg.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(a)
	}
	printAtom(a)
	return nil
}

func runAtomList(cmd *cobra.Command, args []string) error {
	reg, database, err := openRegistry()
	if err != nil {
		return err
	}
	defer database.Close()

	filter := storage.ListFilter{
		Category:    atom.Category(atomListCategory),
		ChangesetID: atomListChangeset,
		Tag:         atomListTag,
	}
	for _, s := range atomListStatuses {
		status, err := atom.ParseStatus(s)
		if err != nil {
			return err
		}
		filter.Statuses = append(filter.Statuses, status)
	}

	atoms, err := reg.List(cmd.Context(), filter)
	if err != nil {
		return fmt.Errorf("failed to list atoms: %w", err)
	}

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(atoms)
	}
	if len(atoms) == 0 {
		pterm.Info.Println("No atoms found")
		return nil
	}
	for _, a := range atoms {
		printAtomLine(a)
	}
	fmt.Printf("\n%d atom(s)\n", len(atoms))
	return nil
}

func runAtomUpdate(cmd *cobra.Command, args []string) error {
	reg, database, err := openRegistry()
	if err != nil {
		return err
	}
	defer database.Close()

	var patch registry.Patch
	if cmd.Flags().Changed("description") {
		patch.Description = &atomUpdateDescription
	}
	if cmd.Flags().Changed("category") {
		category := atom.Category(atomUpdateCategory)
		patch.Category = &category
	}
	if cmd.Flags().Changed("score") {
		patch.QualityScore = &atomUpdateScore
	}
	if atomUpdateSource != "" {
		patch.Source = atom.RefinementSource(atomUpdateSource)
	}

	a, err := reg.Update(cmd.Context(), args[0], patch)
	if err != nil {
		return fmt.Errorf("failed to update atom: %w", err)
	}

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(a)
	}
	pterm.Success.Printf("Updated atom %s\n", a.HumanID)
	printAtom(a)
	return nil
}

func runAtomCommit(cmd *cobra.Command, args []string) error {
	reg, database, err := openRegistry()
	if err != nil {
		return err
	}
	defer database.Close()

	a, err := reg.Commit(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(a)
	}
	pterm.Success.Printf("Committed atom %s (score %d, threshold %d)\n",
		a.HumanID, a.EffectiveScore(), reg.Threshold())
	return nil
}

func runAtomSupersede(cmd *cobra.Command, args []string) error {
	if atomSupersedeBy == "" && atomSupersedeDescription == "" {
		return fmt.Errorf("either --by or --description is required")
	}
	if atomSupersedeBy != "" && atomSupersedeDescription != "" {
		return fmt.Errorf("--by and --description are mutually exclusive")
	}

	reg, database, err := openRegistry()
	if err != nil {
		return err
	}
	defer database.Close()

	if atomSupersedeBy != "" {
		a, err := reg.Supersede(cmd.Context(), args[0], atomSupersedeBy)
		if err != nil {
			return fmt.Errorf("failed to supersede atom: %w", err)
		}
		if display.ShouldOutputJSON(cmd) {
			return display.OutputJSON(a)
		}
		pterm.Success.Printf("Superseded %s by %s\n", a.HumanID, *a.SupersededBy)
		return nil
	}

	result, err := reg.SupersedeWithNewAtom(cmd.Context(), args[0], registry.NewAtomRequest{
		Description: atomSupersedeDescription,
		Category:    atom.Category(atomSupersedeCategory),
	})
	if err != nil {
		return fmt.Errorf("failed to supersede atom: %w", err)
	}

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(result)
	}
	pterm.Success.Printf("Superseded %s by new atom %s\n",
		result.Original.HumanID, result.Successor.HumanID)
	printAtom(result.Successor)
	return nil
}

func runAtomChain(cmd *cobra.Command, args []string) error {
	reg, database, err := openRegistry()
	if err != nil {
		return err
	}
	defer database.Close()

	chain, err := reg.FindSupersessionChain(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to walk supersession chain: %w", err)
	}

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(chain)
	}
	for i, a := range chain {
		marker := "   "
		if i > 0 {
			marker = " ↳ "
		}
		fmt.Printf("%s%s %-8s v%d  %s\n",
			marker, sym.StatusGlyph(string(a.Status)), a.HumanID, a.IntentVersion, a.Description)
	}
	return nil
}

func runAtomTag(cmd *cobra.Command, args []string) error {
	reg, database, err := openRegistry()
	if err != nil {
		return err
	}
	defer database.Close()

	a, err := reg.AddTag(cmd.Context(), args[0], args[1])
	if err != nil {
		return fmt.Errorf("failed to tag atom: %w", err)
	}

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(a)
	}
	pterm.Success.Printf("Tagged %s with %q\n", a.HumanID, args[1])
	return nil
}

func runAtomUntag(cmd *cobra.Command, args []string) error {
	reg, database, err := openRegistry()
	if err != nil {
		return err
	}
	defer database.Close()

	a, err := reg.RemoveTag(cmd.Context(), args[0], args[1])
	if err != nil {
		return fmt.Errorf("failed to untag atom: %w", err)
	}

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(a)
	}
	pterm.Success.Printf("Removed tag %q from %s\n", args[1], a.HumanID)
	return nil
}

func runAtomAbandon(cmd *cobra.Command, args []string) error {
	reg, database, err := openRegistry()
	if err != nil {
		return err
	}
	defer database.Close()

	a, err := reg.Abandon(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to abandon atom: %w", err)
	}

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(a)
	}
	pterm.Success.Printf("Abandoned atom %s\n", a.HumanID)
	return nil
}

func runAtomRemove(cmd *cobra.Command, args []string) error {
	reg, database, err := openRegistry()
	if err != nil {
		return err
	}
	defer database.Close()

	if err := reg.Remove(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to remove atom: %w", err)
	}

	pterm.Success.Printf("Removed atom %s\n", args[0])
	return nil
}

func runAtomExport(cmd *cobra.Command, args []string) error {
	reg, database, err := openRegistry()
	if err != nil {
		return err
	}
	defer database.Close()

	var w io.Writer = os.Stdout
	if atomExportOutput != "" {
		f, err := os.Create(atomExportOutput)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if err := reg.ExportYAML(cmd.Context(), w); err != nil {
		return fmt.Errorf("failed to export catalog: %w", err)
	}
	if atomExportOutput != "" {
		pterm.Success.Printf("Exported catalog to %s\n", atomExportOutput)
	}
	return nil
}

func runAtomImport(cmd *cobra.Command, args []string) error {
	reg, database, err := openRegistry()
	if err != nil {
		return err
	}
	defer database.Close()

	var rd io.Reader = os.Stdin
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open catalog file: %w", err)
		}
		defer f.Close()
		rd = f
	}

	imported, err := reg.ImportYAML(cmd.Context(), rd)
	if err != nil {
		return fmt.Errorf("failed to import catalog: %w", err)
	}

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(imported)
	}
	pterm.Success.Printf("Imported %d atom(s)\n", len(imported))
	for _, a := range imported {
		printAtomLine(a)
	}
	return nil
}
