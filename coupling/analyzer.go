package coupling

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/jasontalley/pact/atom"
	"github.com/jasontalley/pact/errors"
)

// DefaultThreshold is the minimum coupling score required to pass the gate.
const DefaultThreshold = 80

// Options configures one analysis run. Zero values fall back to package
// defaults.
type Options struct {
	Root         string   // Directory to scan
	Includes     []string // Glob patterns selecting test files
	Excludes     []string // Glob patterns pruning files and directories
	Threshold    int      // Minimum passing coupling score
	MaxFiles     int      // Discovery cap; excess files are dropped with a warning
	MaxFileBytes int64    // Files larger than this are skipped at scan time
	Workers      int      // Concurrent file scanners
}

func (o Options) withDefaults() Options {
	if len(o.Includes) == 0 {
		o.Includes = DefaultIncludes
	}
	if len(o.Excludes) == 0 {
		o.Excludes = DefaultExcludes
	}
	if o.Threshold <= 0 {
		o.Threshold = DefaultThreshold
	}
	if o.MaxFiles <= 0 {
		o.MaxFiles = DefaultMaxFiles
	}
	if o.MaxFileBytes <= 0 {
		o.MaxFileBytes = DefaultMaxFileBytes
	}
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
		if o.Workers > 8 {
			o.Workers = 8
		}
	}
	return o
}

// Analyzer reconstructs test-to-atom bindings from annotation comments and
// classifies the result against a catalog snapshot. It holds no state
// between runs.
type Analyzer struct {
	opts    Options
	catalog Catalog
	logger  *zap.SugaredLogger
}

func NewAnalyzer(opts Options, catalog Catalog, logger *zap.SugaredLogger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Analyzer{
		opts:    opts.withDefaults(),
		catalog: catalog,
		logger:  logger,
	}
}

// Run discovers test files under the root, scans them concurrently, and
// aggregates the results into a deterministic report. Unreadable or
// oversized files are logged and left out of every total; a missing root
// yields an empty report rather than an error.
func (a *Analyzer) Run(ctx context.Context) (*Report, error) {
	includes, err := compilePatterns(a.opts.Includes)
	if err != nil {
		return nil, errors.Wrap(err, "compiling include patterns")
	}
	excludes, err := compilePatterns(a.opts.Excludes)
	if err != nil {
		return nil, errors.Wrap(err, "compiling exclude patterns")
	}

	files := discoverFiles(a.opts.Root, includes, excludes, a.opts.MaxFiles, a.logger)

	scans, err := a.scanAll(ctx, files)
	if err != nil {
		return nil, err
	}

	report := a.aggregate(scans)
	a.logger.Debugw("Coupling analysis complete",
		"files", report.Summary.TotalTestFiles,
		"tests", report.Summary.TotalTests,
		"annotated", report.Summary.AnnotatedTests,
		"score", report.Summary.CouplingScore,
		"passes_gate", report.PassesGate,
	)
	return report, nil
}

// scanAll fans the file list out over a worker pool. Workers share nothing;
// each emits an independent fileScan that is merged afterwards.
func (a *Analyzer) scanAll(ctx context.Context, files []string) ([]*fileScan, error) {
	fileCh := make(chan string)
	scanCh := make(chan *fileScan)

	var wg sync.WaitGroup
	for i := 0; i < a.opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rel := range fileCh {
				if scan := a.scanOne(rel); scan != nil {
					scanCh <- scan
				}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(scanCh)
	}()

	go func() {
		defer close(fileCh)
		for _, rel := range files {
			select {
			case <-ctx.Done():
				return
			case fileCh <- rel:
			}
		}
	}()

	var scans []*fileScan
	for scan := range scanCh {
		scans = append(scans, scan)
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "coupling analysis canceled")
	}
	return scans, nil
}

// scanOne reads and scans a single file. Any failure skips the file so one
// unreadable path never fails the whole run.
func (a *Analyzer) scanOne(rel string) *fileScan {
	abs := filepath.Join(a.opts.Root, filepath.FromSlash(rel))

	info, err := os.Stat(abs)
	if err != nil {
		a.logger.Warnw("Skipping unreadable test file", "file", rel, "error", err)
		return nil
	}
	if info.Size() > a.opts.MaxFileBytes {
		a.logger.Warnw("Skipping oversized test file",
			"file", rel, "size", info.Size(), "max", a.opts.MaxFileBytes)
		return nil
	}

	content, err := os.ReadFile(abs)
	if err != nil {
		a.logger.Warnw("Skipping unreadable test file", "file", rel, "error", err)
		return nil
	}
	return scanFile(rel, content)
}

func (a *Analyzer) aggregate(scans []*fileScan) *Report {
	report := &Report{Threshold: a.opts.Threshold}

	// id -> set of files referencing it
	referenced := make(map[string]map[string]bool)
	for _, scan := range scans {
		report.Summary.TotalTestFiles++
		report.Summary.TotalTests += scan.TotalTests
		report.Summary.AnnotatedTests += scan.AnnotatedTests
		report.Orphans = append(report.Orphans, scan.Orphans...)
		for id := range scan.ReferencedIDs {
			if referenced[id] == nil {
				referenced[id] = make(map[string]bool)
			}
			referenced[id][scan.File] = true
		}
	}

	index := a.catalog.byHumanID()
	for id, inFiles := range referenced {
		if _, ok := index[id]; ok {
			continue
		}
		for file := range inFiles {
			report.Mismatches = append(report.Mismatches, Mismatch{
				HumanID: id,
				File:    file,
				Issue:   fmt.Sprintf("referenced atom %s does not exist in the catalog", id),
			})
		}
	}

	// Superseded atoms remain valid reference targets; only committed atoms
	// with no referencing test count as unrealized.
	for _, entry := range a.catalog {
		if entry.Status != atom.StatusCommitted {
			continue
		}
		if len(referenced[entry.HumanID]) == 0 {
			report.Unrealized = append(report.Unrealized, UnrealizedAtom{
				HumanID:     entry.HumanID,
				Description: entry.Description,
				Status:      entry.Status,
			})
		}
	}

	if report.Summary.TotalTests == 0 {
		report.Summary.CouplingScore = 100
	} else {
		ratio := float64(report.Summary.AnnotatedTests) / float64(report.Summary.TotalTests)
		report.Summary.CouplingScore = int(math.Round(ratio * 100))
	}

	// Worker completion order is nondeterministic; sorting makes reruns over
	// unchanged inputs byte-identical.
	sort.Slice(report.Orphans, func(i, j int) bool {
		a, b := report.Orphans[i], report.Orphans[j]
		if a.File != b.File {
			return a.File < b.File
		}
		return a.Line < b.Line
	})
	sort.Slice(report.Unrealized, func(i, j int) bool {
		return report.Unrealized[i].HumanID < report.Unrealized[j].HumanID
	})
	sort.Slice(report.Mismatches, func(i, j int) bool {
		a, b := report.Mismatches[i], report.Mismatches[j]
		if a.HumanID != b.HumanID {
			return a.HumanID < b.HumanID
		}
		return a.File < b.File
	})

	report.Summary.OrphanCount = len(report.Orphans)
	report.Summary.UnrealizedCount = len(report.Unrealized)
	report.Summary.MismatchCount = len(report.Mismatches)
	report.PassesGate = report.Summary.CouplingScore >= a.opts.Threshold &&
		len(report.Mismatches) == 0

	return report
}
