package coupling

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestWatcher(t *testing.T, root string, onChange func()) *Watcher {
	t.Helper()
	w, err := NewWatcher(root, onChange, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)
	w.debouncePeriod = 50 * time.Millisecond
	return w
}

func waitForChange(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not report a change in time")
	}
}

func notifyOnce(ch chan struct{}) func() {
	return func() {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func TestWatcherReportsFileChanges(t *testing.T) {
	root := t.TempDir()
	changed := make(chan struct{}, 1)
	w := newTestWatcher(t, root, notifyOnce(changed))
	w.Start()
	defer w.Stop()

	require.NoError(t, os.WriteFile(
		filepath.Join(root, "new.spec.ts"), []byte("it('x', () => {})"), 0o644))
	waitForChange(t, changed)
}

func TestWatcherPicksUpNewDirectories(t *testing.T) {
	root := t.TempDir()
	changed := make(chan struct{}, 1)
	w := newTestWatcher(t, root, notifyOnce(changed))
	w.Start()
	defer w.Stop()

	sub := filepath.Join(root, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))
	// First change is the directory creation; once it fires, the new
	// directory is watched.
	waitForChange(t, changed)

	require.NoError(t, os.WriteFile(
		filepath.Join(sub, "inner.spec.ts"), []byte("it('y', () => {})"), 0o644))
	waitForChange(t, changed)
}

func TestWatcherStopWithoutStart(t *testing.T) {
	w := newTestWatcher(t, t.TempDir(), func() {})
	require.NoError(t, w.Stop())
}

func TestWatcherMissingRoot(t *testing.T) {
	_, err := NewWatcher(
		filepath.Join(t.TempDir(), "missing"), func() {}, zaptest.NewLogger(t).Sugar())
	require.Error(t, err)
}
