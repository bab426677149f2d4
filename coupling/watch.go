package coupling

import (
	"io/fs"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/jasontalley/pact/errors"
)

// Watcher re-triggers a callback when files under a test tree change.
// fsnotify watches are per-directory, so the whole tree is registered up
// front and new directories are added as they appear.
type Watcher struct {
	root           string
	watcher        *fsnotify.Watcher
	onChange       func()
	mu             sync.Mutex
	debounceTimer  *time.Timer
	debouncePeriod time.Duration
	started        bool
	done           chan struct{}
	logger         *zap.SugaredLogger
}

// NewWatcher creates a watcher over root. onChange runs after changes settle
// for the debounce period; rapid bursts of events collapse into one call.
func NewWatcher(root string, onChange func(), logger *zap.SugaredLogger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}

	w := &Watcher{
		root:           root,
		watcher:        fsw,
		onChange:       onChange,
		debouncePeriod: 500 * time.Millisecond,
		done:           make(chan struct{}),
		logger:         logger,
	}

	if err := w.addTree(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// addTree registers root and every directory below it. Directories that
// vanish mid-walk are skipped.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return errors.Wrapf(err, "failed to watch %s", root)
			}
			w.logger.Warnw("Skipping unwatchable directory", "path", path, "error", err)
			return fs.SkipDir
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warnw("Failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

// Start begins watching in a background goroutine.
func (w *Watcher) Start() {
	w.started = true
	go w.watchLoop()
}

func (w *Watcher) watchLoop() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Create == fsnotify.Create {
				// A new directory needs its own watch to see files inside it.
				w.addTree(event.Name)
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				w.logger.Debugw("Test tree changed",
					"file", event.Name,
					"op", event.Op.String())
				w.scheduleChange()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warnw("Watcher error", "error", err)
		}
	}
}

// scheduleChange debounces rapid file changes before invoking the callback.
func (w *Watcher) scheduleChange() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debouncePeriod, w.onChange)
}

// Stop closes the watcher and waits for the watch loop to exit. Any pending
// debounce timer is canceled.
func (w *Watcher) Stop() error {
	err := w.watcher.Close()
	if w.started {
		<-w.done
	}

	w.mu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.mu.Unlock()
	return err
}
