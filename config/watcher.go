package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jasontalley/pact/errors"
	"github.com/jasontalley/pact/logger"
)

// ConfigWatcher reloads the process-wide configuration when the watched file
// changes on disk and fans the fresh Config out to registered callbacks.
// Long-running commands such as `pact coupling watch` use it to pick up
// threshold and glob edits without a restart.
type ConfigWatcher struct {
	configPath string
	watcher    *fsnotify.Watcher

	mu             sync.Mutex
	callbacks      []ReloadCallback
	reloadTimer    *time.Timer
	debouncePeriod time.Duration
	ownWrite       bool
}

// ReloadCallback receives the freshly loaded Config after a reload.
type ReloadCallback func(*Config) error

// NewConfigWatcher watches configPath for changes. The file must already
// exist; resolve it with ActiveConfigFile rather than guessing at a path.
func NewConfigWatcher(configPath string) (*ConfigWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create fsnotify watcher")
	}
	if err := watcher.Add(configPath); err != nil {
		watcher.Close()
		return nil, errors.Wrapf(err, "watch config file %s", configPath)
	}

	return &ConfigWatcher{
		configPath:     configPath,
		watcher:        watcher,
		debouncePeriod: 500 * time.Millisecond,
	}, nil
}

// OnReload registers a callback to run after each successful reload.
func (cw *ConfigWatcher) OnReload(callback ReloadCallback) {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	cw.callbacks = append(cw.callbacks, callback)
}

// MarkOwnWrite flags the next filesystem event as produced by our own save,
// so persisting a setting does not bounce back as a reload.
func (cw *ConfigWatcher) MarkOwnWrite() {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	cw.ownWrite = true
}

// checkOwnWrite consumes the own-write flag.
func (cw *ConfigWatcher) checkOwnWrite() bool {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	was := cw.ownWrite
	cw.ownWrite = false
	return was
}

// Start launches the watch loop in the background.
func (cw *ConfigWatcher) Start() {
	go cw.run()
}

// Stop cancels any pending reload and closes the underlying watcher, which
// ends the watch loop.
func (cw *ConfigWatcher) Stop() error {
	cw.mu.Lock()
	if cw.reloadTimer != nil {
		cw.reloadTimer.Stop()
	}
	cw.mu.Unlock()
	return cw.watcher.Close()
}

func (cw *ConfigWatcher) run() {
	for {
		select {
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			cw.handleEvent(event)

		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			logger.Warnw("Config watch error", "error", err)
		}
	}
}

// handleEvent decides whether a filesystem event warrants a reload.
func (cw *ConfigWatcher) handleEvent(event fsnotify.Event) {
	if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
		return
	}
	if isBackupFile(event.Name) {
		return
	}
	if cw.checkOwnWrite() {
		logger.Debugw("Ignoring own config write", "file", event.Name)
		return
	}

	logger.Infow("Config file changed",
		"file", event.Name,
		"op", event.Op.String())
	cw.armReload()
}

// armReload starts or extends the debounce window. Editors fire several
// events per save; only the last one should trigger a reload.
func (cw *ConfigWatcher) armReload() {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if cw.reloadTimer != nil {
		cw.reloadTimer.Stop()
	}
	cw.reloadTimer = time.AfterFunc(cw.debouncePeriod, func() {
		if err := cw.reload(); err != nil {
			logger.Errorw("Config reload failed",
				"path", cw.configPath,
				"error", err)
		}
	})
}

// reload drops the cached configuration, loads a fresh one, and fans it out.
// A failing callback is logged and does not stop the rest.
func (cw *ConfigWatcher) reload() error {
	Reset()
	cfg, err := Load()
	if err != nil {
		return errors.Wrap(err, "reload config")
	}

	logger.Infow("Config reloaded", "path", cw.configPath)

	for _, callback := range cw.snapshotCallbacks() {
		if err := callback(cfg); err != nil {
			logger.Warnw("Config reload callback failed", "error", err)
		}
	}
	return nil
}

func (cw *ConfigWatcher) snapshotCallbacks() []ReloadCallback {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	return append([]ReloadCallback(nil), cw.callbacks...)
}

// isBackupFile reports whether path is one of the rotation slots written by
// saveUserConfig. Rotation lands beside the watched file and must not
// trigger reloads.
func isBackupFile(path string) bool {
	base := filepath.Base(path)
	for n := 1; n <= maxConfigBackups; n++ {
		if base == backupSlot(configFileName, n) {
			return true
		}
	}
	return false
}

// Singleton wiring so saveUserConfig can flag its own writes from anywhere.
var (
	globalWatcher   *ConfigWatcher
	globalWatcherMu sync.Mutex
)

// SetGlobalWatcher installs the watcher saveUserConfig consults before
// writing. Pass nil to clear it.
func SetGlobalWatcher(watcher *ConfigWatcher) {
	globalWatcherMu.Lock()
	defer globalWatcherMu.Unlock()
	globalWatcher = watcher
}

// GetGlobalWatcher returns the installed watcher, or nil when none is set.
func GetGlobalWatcher() *ConfigWatcher {
	globalWatcherMu.Lock()
	defer globalWatcherMu.Unlock()
	return globalWatcher
}
