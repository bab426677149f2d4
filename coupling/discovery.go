package coupling

import (
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"go.uber.org/zap"
)

// Discovery defaults. MaxFiles bounds worst-case latency on pathological
// trees; MaxFileBytes keeps generated bundles out of the scan.
const (
	DefaultMaxFiles     = 10000
	DefaultMaxFileBytes = 1 << 20 // 1 MiB
)

// Default patterns cover the common test-file layouts.
var (
	DefaultIncludes = []string{"**/*.spec.*", "**/*.test.*"}
	DefaultExcludes = []string{"**/node_modules/**", "**/dist/**"}
)

// discoverFiles walks root and returns slash-separated relative paths of
// files matching an include pattern and no exclude pattern. Excluded
// directories are pruned without descending. A missing root degrades to an
// empty list rather than an error. Discovery truncates at maxFiles.
func discoverFiles(root string, includes, excludes []*regexp.Regexp, maxFiles int, logger *zap.SugaredLogger) []string {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		if logger != nil {
			logger.Warnw("Analysis root missing or not a directory, producing empty report", "root", root)
		}
		return nil
	}

	var files []string
	truncated := false

	filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if logger != nil {
				logger.Warnw("Skipping unreadable entry during discovery", "path", path, "error", walkErr)
			}
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			// Directory paths get a trailing separator so patterns like
			// **/node_modules/** prune the subtree before descending.
			if matchesAny(excludes, rel+"/") {
				return fs.SkipDir
			}
			return nil
		}

		if len(files) >= maxFiles {
			truncated = true
			return fs.SkipAll
		}

		if matchesAny(excludes, rel) {
			return nil
		}
		if matchesAny(includes, rel) {
			files = append(files, rel)
		}
		return nil
	})

	if truncated && logger != nil {
		logger.Warnw("Discovery truncated at file cap", "max_files", maxFiles, "root", root)
	}

	return files
}
