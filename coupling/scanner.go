package coupling

import (
	"regexp"
	"strings"
)

// annotationLookback is the public contract between annotations and tests:
// the last line of an annotation stack must sit within this many lines above
// the test declaration it binds to. Annotations further away are missed by
// design; the scanner is a tolerant line scanner, not a parser.
const annotationLookback = 3

// annotationPattern recognizes "// @atom IA-NNN". Malformed variants
// (missing digits, non-numeric suffix) never register.
var annotationPattern = regexp.MustCompile(`//\s*@atom\s+(IA-\d+)\b`)

// Test and describe declarations are recognized by fixed-shape call syntax
// with a string first argument. The three alternations keep the quote style
// paired without backreferences.
var (
	testPattern     = regexp.MustCompile(`^\s*(?:it|test)(?:\.\w+)?\(\s*(?:'([^']*)'|"([^"]*)"|` + "`([^`]*)`" + `)`)
	describePattern = regexp.MustCompile(`^\s*describe(?:\.\w+)?\(\s*(?:'([^']*)'|"([^"]*)"|` + "`([^`]*)`" + `)`)
)

// OrphanTest is a discovered test with no annotation within the lookback
// window.
type OrphanTest struct {
	File     string `json:"file"`
	TestName string `json:"test_name"` // Qualified as "Outer > inner" when inside a describe
	Line     int    `json:"line"`      // 1-based
}

// fileScan is the per-file scan outcome, merged during aggregation.
type fileScan struct {
	File           string
	TotalTests     int
	AnnotatedTests int
	ReferencedIDs  map[string]bool
	Orphans        []OrphanTest
}

// firstGroup returns the first non-empty capture of a quote-alternation
// match. An empty string is a legitimate capture (empty test name).
func firstGroup(m []string) string {
	for _, g := range m[1:] {
		if g != "" {
			return g
		}
	}
	return ""
}

// scanFile scans one file's content line by line, tracking the most recent
// describe block name and a pending annotation stack. Consecutive annotation
// lines stack; every stacked id binds to the next test declaration when the
// last annotation line is within the lookback window above it.
func scanFile(rel string, content []byte) *fileScan {
	scan := &fileScan{
		File:          rel,
		ReferencedIDs: make(map[string]bool),
	}

	var currentDescribe string
	var pendingIDs []string
	lastAnnotationLine := 0 // 1-based, 0 = no pending annotation

	lines := strings.Split(string(content), "\n")
	for i, line := range lines {
		lineNo := i + 1

		if m := annotationPattern.FindStringSubmatch(line); m != nil {
			if lastAnnotationLine == lineNo-1 && len(pendingIDs) > 0 {
				pendingIDs = append(pendingIDs, m[1])
			} else {
				pendingIDs = []string{m[1]}
			}
			lastAnnotationLine = lineNo
			continue
		}

		if m := describePattern.FindStringSubmatch(line); m != nil {
			currentDescribe = firstGroup(m)
			continue
		}

		if m := testPattern.FindStringSubmatch(line); m != nil {
			scan.TotalTests++
			name := firstGroup(m)
			if currentDescribe != "" {
				name = currentDescribe + " > " + name
			}

			if lastAnnotationLine > 0 && lineNo-lastAnnotationLine <= annotationLookback {
				scan.AnnotatedTests++
				for _, id := range pendingIDs {
					scan.ReferencedIDs[id] = true
				}
			} else {
				scan.Orphans = append(scan.Orphans, OrphanTest{
					File:     rel,
					TestName: name,
					Line:     lineNo,
				})
			}

			// An annotation stack binds to at most one test.
			pendingIDs = nil
			lastAnnotationLine = 0
		}
	}

	return scan
}
