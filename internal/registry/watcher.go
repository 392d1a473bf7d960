package registry

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"conductor/pkg/logging"
)

// defaultDebounce is how long to wait for additional changes before
// reloading. Editors often truncate-then-write or rename into place,
// producing bursts of events for one logical change.
const defaultDebounce = 500 * time.Millisecond

// Watcher reloads a Registry when its capabilities file changes on disk.
type Watcher struct {
	registry *Registry
	path     string

	watcher       *fsnotify.Watcher
	debounceDelay time.Duration

	// mu guards pending, the timer for the current debounce window.
	mu      sync.Mutex
	pending *time.Timer

	stopCh   chan struct{}
	stopOnce sync.Once

	// onReload, if set, is invoked after every reload attempt with its
	// outcome. Used to re-prime caches derived from the descriptor set.
	onReload func(error)
}

// NewWatcher creates a Watcher for the capabilities file at path. The
// watcher is inert until Start is called.
func NewWatcher(reg *Registry, path string, onReload func(error)) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &Watcher{
		registry:      reg,
		path:          filepath.Clean(path),
		watcher:       fsWatcher,
		debounceDelay: defaultDebounce,
		stopCh:        make(chan struct{}),
		onReload:      onReload,
	}, nil
}

// Start begins watching. The file's parent directory is watched rather than
// the file itself so renames into place are observed.
func (w *Watcher) Start(ctx context.Context) error {
	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	go w.processEvents(ctx)
	logging.Info("RegistryWatcher", "Watching %s for capability changes", w.path)
	return nil
}

// Stop halts event processing and releases the underlying watcher. Safe to
// call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.watcher.Close()

		w.mu.Lock()
		defer w.mu.Unlock()
		if w.pending != nil {
			w.pending.Stop()
			w.pending = nil
		}
	})
}

func (w *Watcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Error("RegistryWatcher", err, "File watcher error")
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return
	}

	logging.Debug("RegistryWatcher", "Capabilities file event: %s %s", event.Op, event.Name)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending != nil {
		w.pending.Stop()
	}
	w.pending = time.AfterFunc(w.debounceDelay, w.reload)
}

func (w *Watcher) reload() {
	err := w.registry.Reload()
	if err != nil {
		logging.Error("RegistryWatcher", err, "Capabilities reload failed, keeping previous set")
	} else {
		logging.Info("RegistryWatcher", "Capabilities reloaded: %d servers (generation %d)",
			w.registry.Len(), w.registry.Generation())
	}

	if w.onReload != nil {
		w.onReload(err)
	}
}
