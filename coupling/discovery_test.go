package coupling

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func writeTestFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func mustCompilePatterns(t *testing.T, globs []string) []*regexp.Regexp {
	t.Helper()
	compiled, err := compilePatterns(globs)
	require.NoError(t, err)
	return compiled
}

func TestDiscoverFilesMatchesDefaultIncludes(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "login.spec.ts", "")
	writeTestFile(t, root, "src/api.test.js", "")
	writeTestFile(t, root, "src/util.ts", "")
	writeTestFile(t, root, "README.md", "")

	includes := mustCompilePatterns(t, DefaultIncludes)
	excludes := mustCompilePatterns(t, DefaultExcludes)

	files := discoverFiles(root, includes, excludes, DefaultMaxFiles, zaptest.NewLogger(t).Sugar())
	assert.ElementsMatch(t, []string{"login.spec.ts", "src/api.test.js"}, files)
}

func TestDiscoverFilesPrunesExcludedDirectories(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "src/app.spec.ts", "")
	writeTestFile(t, root, "node_modules/pkg/index.test.js", "")
	writeTestFile(t, root, "src/node_modules/lib/deep.spec.ts", "")
	writeTestFile(t, root, "dist/bundle.spec.js", "")

	includes := mustCompilePatterns(t, DefaultIncludes)
	excludes := mustCompilePatterns(t, DefaultExcludes)

	files := discoverFiles(root, includes, excludes, DefaultMaxFiles, zaptest.NewLogger(t).Sugar())
	assert.Equal(t, []string{"src/app.spec.ts"}, files)
}

func TestDiscoverFilesExcludesMatchingFiles(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "old.spec.ts", "")
	writeTestFile(t, root, "new.spec.ts", "")

	includes := mustCompilePatterns(t, DefaultIncludes)
	excludes := mustCompilePatterns(t, []string{"**/old.spec.*"})

	files := discoverFiles(root, includes, excludes, DefaultMaxFiles, zaptest.NewLogger(t).Sugar())
	assert.Equal(t, []string{"new.spec.ts"}, files)
}

func TestDiscoverFilesMissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "does-not-exist")

	includes := mustCompilePatterns(t, DefaultIncludes)
	files := discoverFiles(root, includes, nil, DefaultMaxFiles, zaptest.NewLogger(t).Sugar())
	assert.Empty(t, files)
}

func TestDiscoverFilesRootIsFile(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "plain.txt", "not a directory")

	includes := mustCompilePatterns(t, DefaultIncludes)
	files := discoverFiles(filepath.Join(dir, "plain.txt"), includes, nil, DefaultMaxFiles, zaptest.NewLogger(t).Sugar())
	assert.Empty(t, files)
}

func TestDiscoverFilesTruncatesAtCap(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a.spec.ts", "b.spec.ts", "c.spec.ts", "d.spec.ts", "e.spec.ts"} {
		writeTestFile(t, root, name, "")
	}

	includes := mustCompilePatterns(t, DefaultIncludes)
	files := discoverFiles(root, includes, nil, 3, zaptest.NewLogger(t).Sugar())
	assert.Len(t, files, 3)
}
