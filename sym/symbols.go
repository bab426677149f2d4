// Package sym defines canonical symbols for pact governance operations and
// system markers. These symbols are stable across CLI output and
// documentation.
package sym

// Glyph string constants — the visual expression of each symbol.
//
// Primary governance operators — each has a top-level command.
const (
	Atom      = "⚛" // atom — intent atoms, the unit of governed intent
	Changeset = "⧉" // changeset — grouped proposals reviewed as one
	Molecule  = "⬡" // molecule — ordered composition of atoms
	Coupling  = "⋈" // coupling — test-to-atom binding analysis
	Score     = "∑" // score — atomicity scoring
	Config    = "≡" // config — configuration and system settings
)

// Lifecycle markers — the states an atom moves through.
const (
	Draft      = "◌" // draft — mutable, not yet promoted
	Proposed   = "◍" // proposed — staged under a changeset
	Committed  = "●" // committed — immutable governed intent
	Superseded = "◐" // superseded — replaced by a newer edition
	Abandoned  = "○" // abandoned — withdrawn before promotion
)

// System infrastructure symbols.
const (
	DB   = "⊔" // database/storage layer
	Gate = "⊨" // quality and coupling gates
)

// entry binds a glyph to its command, label, and description.
type entry struct {
	glyph       string
	command     string
	label       string
	description string
}

// registry is the canonical mapping between glyphs and symbol metadata.
var registry = []entry{
	{Atom, "atom", "Atom", "Intent atoms, the unit of governed intent"},
	{Changeset, "changeset", "Changeset", "Grouped proposals reviewed as one"},
	{Molecule, "molecule", "Molecule", "Ordered composition of atoms"},
	{Coupling, "coupling", "Coupling", "Test-to-atom binding analysis"},
	{Score, "score", "Score", "Atomicity scoring"},
	{Config, "config", "Config", "Configuration and system settings"},
	{DB, "db", "Database", "Database/storage layer"},
	{Gate, "", "Gate", "Quality and coupling gates"},
	{Draft, "", "Draft", "Mutable, not yet promoted"},
	{Proposed, "", "Proposed", "Staged under a changeset"},
	{Committed, "", "Committed", "Immutable governed intent"},
	{Superseded, "", "Superseded", "Replaced by a newer edition"},
	{Abandoned, "", "Abandoned", "Withdrawn before promotion"},
}

// SymbolToCommand maps glyph strings to their text command equivalents.
var SymbolToCommand = map[string]string{}

// CommandToSymbol maps text commands to their canonical glyph strings.
var CommandToSymbol = map[string]string{}

// CommandDescriptions provides human-readable explanations for help output.
var CommandDescriptions = map[string]string{}

func init() {
	for _, e := range registry {
		if e.command == "" {
			continue
		}
		SymbolToCommand[e.glyph] = e.command
		CommandToSymbol[e.command] = e.glyph
		CommandDescriptions[e.command] = e.label + " — " + e.description
	}
}

// StatusGlyph returns the lifecycle marker for an atom status string.
// Unknown statuses get the draft marker.
func StatusGlyph(status string) string {
	switch status {
	case "proposed":
		return Proposed
	case "committed":
		return Committed
	case "superseded":
		return Superseded
	case "abandoned":
		return Abandoned
	default:
		return Draft
	}
}
