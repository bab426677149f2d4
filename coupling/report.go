package coupling

import (
	"fmt"
	"strings"

	"github.com/jasontalley/pact/atom"
)

// maxSectionEntries caps each report section; the remainder is summarized
// as a single "... and N more" line so large repositories stay readable.
const maxSectionEntries = 20

// UnrealizedAtom is a committed atom no discovered test references.
type UnrealizedAtom struct {
	HumanID     string      `json:"human_id"`
	Description string      `json:"description"`
	Status      atom.Status `json:"status"`
}

// Mismatch is a referenced id with no corresponding catalog entry. One
// entry is recorded per (id, file) pair.
type Mismatch struct {
	HumanID string `json:"human_id"`
	File    string `json:"file"`
	Issue   string `json:"issue"`
}

// Summary holds the aggregate counters of one analysis run.
type Summary struct {
	TotalTestFiles  int `json:"total_test_files"`
	TotalTests      int `json:"total_tests"`
	AnnotatedTests  int `json:"annotated_tests"`
	OrphanCount     int `json:"orphan_count"`
	UnrealizedCount int `json:"unrealized_count"`
	MismatchCount   int `json:"mismatch_count"`
	CouplingScore   int `json:"coupling_score"` // 0..100
}

// Report is the complete, deterministic outcome of one analysis run. Two
// runs over identical inputs produce identical reports, so no timestamps
// or host details appear here.
type Report struct {
	Summary    Summary          `json:"summary"`
	Orphans    []OrphanTest     `json:"orphans"`
	Unrealized []UnrealizedAtom `json:"unrealized"`
	Mismatches []Mismatch       `json:"mismatches"`
	Threshold  int              `json:"threshold"`
	PassesGate bool             `json:"passes_gate"`
}

func writeSummaryLine(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "  %-20s%s\n", label, value)
}

func writeSectionHeader(b *strings.Builder, title string, count int) {
	fmt.Fprintf(b, "%s (%d)\n", title, count)
}

func writeTruncation(b *strings.Builder, total int) {
	if total > maxSectionEntries {
		fmt.Fprintf(b, "  ... and %d more\n", total-maxSectionEntries)
	}
}

// Render formats the report as fixed-width text. All three detail sections
// are always present so reports diff cleanly between runs.
func Render(r *Report) string {
	var b strings.Builder
	banner := strings.Repeat("=", 64)

	b.WriteString(banner + "\n")
	b.WriteString("TEST-ATOM COUPLING ANALYSIS REPORT\n")
	b.WriteString(banner + "\n\n")

	b.WriteString("SUMMARY\n")
	writeSummaryLine(&b, "Total Test Files:", fmt.Sprintf("%d", r.Summary.TotalTestFiles))
	writeSummaryLine(&b, "Total Tests:", fmt.Sprintf("%d", r.Summary.TotalTests))
	writeSummaryLine(&b, "Annotated Tests:", fmt.Sprintf("%d", r.Summary.AnnotatedTests))
	writeSummaryLine(&b, "Orphan Tests:", fmt.Sprintf("%d", r.Summary.OrphanCount))
	writeSummaryLine(&b, "Unrealized Atoms:", fmt.Sprintf("%d", r.Summary.UnrealizedCount))
	writeSummaryLine(&b, "Mismatches:", fmt.Sprintf("%d", r.Summary.MismatchCount))
	writeSummaryLine(&b, "Coupling Score:", fmt.Sprintf("%d%%", r.Summary.CouplingScore))
	gateStatus := "FAILED"
	if r.PassesGate {
		gateStatus = "PASSED"
	}
	writeSummaryLine(&b, "Gate Status:", gateStatus)
	b.WriteString("\n")

	writeSectionHeader(&b, "ORPHAN TESTS", r.Summary.OrphanCount)
	if len(r.Orphans) == 0 {
		b.WriteString("  (none)\n")
	}
	for i, o := range r.Orphans {
		if i == maxSectionEntries {
			break
		}
		fmt.Fprintf(&b, "  %s:%d  %s\n", o.File, o.Line, o.TestName)
	}
	writeTruncation(&b, len(r.Orphans))
	b.WriteString("\n")

	writeSectionHeader(&b, "UNREALIZED ATOMS", r.Summary.UnrealizedCount)
	if len(r.Unrealized) == 0 {
		b.WriteString("  (none)\n")
	}
	for i, u := range r.Unrealized {
		if i == maxSectionEntries {
			break
		}
		fmt.Fprintf(&b, "  %s  %s\n", u.HumanID, u.Description)
	}
	writeTruncation(&b, len(r.Unrealized))
	b.WriteString("\n")

	writeSectionHeader(&b, "MISMATCHES", r.Summary.MismatchCount)
	if len(r.Mismatches) == 0 {
		b.WriteString("  (none)\n")
	}
	for i, m := range r.Mismatches {
		if i == maxSectionEntries {
			break
		}
		fmt.Fprintf(&b, "  %s  %s  %s\n", m.HumanID, m.File, m.Issue)
	}
	writeTruncation(&b, len(r.Mismatches))
	b.WriteString("\n")

	b.WriteString(banner + "\n")
	return b.String()
}
