package commands

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"

	"github.com/jasontalley/pact/atom"
	"github.com/jasontalley/pact/display"
	"github.com/jasontalley/pact/sym"
)

func init() {
	if display.ShouldDisableColor() {
		pterm.DisableStyling()
	}
}

// printAtom renders one atom with aligned fields.
func printAtom(a *atom.Atom) {
	fmt.Printf("%s %s  %s\n", sym.Atom, a.HumanID, a.Description)
	fmt.Printf("  ID:          %s\n", a.ID)
	fmt.Printf("  Status:      %s %s\n", sym.StatusGlyph(string(a.Status)), a.Status)
	fmt.Printf("  Category:    %s\n", a.Category)
	if a.QualityScore != nil {
		fmt.Printf("  Quality:     %d\n", *a.QualityScore)
	}
	fmt.Printf("  Version:     %d\n", a.IntentVersion)
	if a.ParentIntent != nil {
		fmt.Printf("  Parent:      %s\n", *a.ParentIntent)
	}
	if a.SupersededBy != nil {
		fmt.Printf("  Superseded:  by %s\n", *a.SupersededBy)
	}
	if len(a.Tags) > 0 {
		fmt.Printf("  Tags:        %s\n", strings.Join(a.Tags, ", "))
	}
	if a.ChangesetID != nil {
		fmt.Printf("  Changeset:   %s\n", *a.ChangesetID)
	}
	for _, o := range a.ObservableOutcomes {
		fmt.Printf("  Outcome:     %s\n", o.Description)
	}
	for _, c := range a.FalsifiabilityCriteria {
		fmt.Printf("  Criterion:   %s\n", c.Description)
	}
	if len(a.RefinementHistory) > 1 {
		fmt.Printf("  Refinements: %d\n", len(a.RefinementHistory))
	}
	if a.CommittedAt != nil {
		fmt.Printf("  Committed:   %s\n", a.CommittedAt.Format("2006-01-02 15:04:05"))
	}
	fmt.Printf("  Created:     %s\n", a.CreatedAt.Format("2006-01-02 15:04:05"))
}

// printAtomLine renders one atom as a list row.
func printAtomLine(a *atom.Atom) {
	score := "  -"
	if a.QualityScore != nil {
		score = fmt.Sprintf("%3d", *a.QualityScore)
	}
	fmt.Printf("%s %-8s %-11s %s  %s\n",
		sym.StatusGlyph(string(a.Status)), a.HumanID, a.Status, score, a.Description)
}
