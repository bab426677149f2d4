package coupling

import (
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"

	"github.com/jasontalley/pact/atom"
)

func failingReportFixture() *Report {
	return &Report{
		Summary: Summary{
			TotalTestFiles:  2,
			TotalTests:      6,
			AnnotatedTests:  4,
			OrphanCount:     2,
			UnrealizedCount: 1,
			MismatchCount:   1,
			CouplingScore:   67,
		},
		Orphans: []OrphanTest{
			{File: "src/auth/login.spec.ts", TestName: "Login > rejects expired tokens", Line: 42},
			{File: "src/cart/cart.spec.ts", TestName: "shows a running total", Line: 7},
		},
		Unrealized: []UnrealizedAtom{
			{
				HumanID:     "IA-007",
				Description: "User sees a password strength meter while typing",
				Status:      atom.StatusCommitted,
			},
		},
		Mismatches: []Mismatch{
			{
				HumanID: "IA-999",
				File:    "src/auth/login.spec.ts",
				Issue:   "referenced atom IA-999 does not exist in the catalog",
			},
		},
		Threshold:  80,
		PassesGate: false,
	}
}

func newGoldie(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestRenderFailingReport(t *testing.T) {
	g := newGoldie(t)
	g.Assert(t, "report_failing", []byte(Render(failingReportFixture())))
}

func TestRenderEmptyPassingReport(t *testing.T) {
	rep := &Report{
		Summary:    Summary{CouplingScore: 100},
		Threshold:  80,
		PassesGate: true,
	}

	g := newGoldie(t)
	g.Assert(t, "report_passing", []byte(Render(rep)))
}

func TestRenderTruncatesLongSections(t *testing.T) {
	rep := &Report{Threshold: 80}
	for i := 1; i <= 23; i++ {
		rep.Orphans = append(rep.Orphans, OrphanTest{
			File:     fmt.Sprintf("file-%02d.spec.ts", i),
			TestName: fmt.Sprintf("case %02d", i),
			Line:     i,
		})
	}
	rep.Summary.OrphanCount = len(rep.Orphans)

	out := Render(rep)
	assert.Contains(t, out, "ORPHAN TESTS (23)")
	assert.Contains(t, out, "file-20.spec.ts:20")
	assert.NotContains(t, out, "file-21.spec.ts")
	assert.Contains(t, out, "... and 3 more")
}

func TestRenderIsDeterministic(t *testing.T) {
	rep := failingReportFixture()
	assert.Equal(t, Render(rep), Render(rep))
}
