package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/0xmhha/study-tracker/pkg/discovery"
	"github.com/0xmhha/study-tracker/pkg/logger"
	"github.com/fsnotify/fsnotify"
)

// watcher implements the Watcher interface using fsnotify.
type watcher struct {
	fsw    *fsnotify.Watcher
	logger logger.Logger
	config Config

	events chan Event
	errors chan error

	mu       sync.RWMutex
	started  bool
	running  bool
	closed   bool
	stopChan chan struct{}
	stopOnce sync.Once

	// Debouncing state.
	debounceTimers map[string]*time.Timer
	debounceMu     sync.Mutex

	// Circuit breaker state.
	failureCount int
}

// New creates a new import directory watcher.
func New(cfg Config, log logger.Logger) (Watcher, error) {
	if cfg.DebounceInterval <= 0 {
		cfg.DebounceInterval = 100 * time.Millisecond
	}
	if cfg.CircuitBreakerThreshold <= 0 {
		cfg.CircuitBreakerThreshold = 5
	}
	if cfg.Filter == nil {
		cfg.Filter = discovery.IsImportFile
	}
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = 100
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	w := &watcher{
		fsw:            fsw,
		logger:         log,
		config:         cfg,
		events:         make(chan Event, cfg.EventBuffer),
		errors:         make(chan error, 10),
		stopChan:       make(chan struct{}),
		debounceTimers: make(map[string]*time.Timer),
	}

	log.Debug("file watcher created",
		"debounce_interval", cfg.DebounceInterval,
		"circuit_breaker_threshold", cfg.CircuitBreakerThreshold)

	return w, nil
}

// Start implements Watcher.Start.
func (w *watcher) Start(ctx context.Context, dirs []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}
	if w.started {
		return ErrAlreadyStarted
	}

	roots := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		expanded, err := filepath.Abs(discovery.ExpandHome(dir))
		if err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidPath, dir)
		}

		info, err := os.Stat(expanded)
		if err != nil {
			if os.IsNotExist(err) {
				w.logger.Warn("watch path does not exist, skipping", "path", expanded)
				continue
			}
			return fmt.Errorf("failed to stat path %s: %w", expanded, err)
		}
		if !info.IsDir() {
			w.logger.Warn("watch path is not a directory, skipping", "path", expanded)
			continue
		}

		roots = append(roots, expanded)
	}

	if len(roots) == 0 {
		return ErrInvalidPath
	}

	for _, root := range roots {
		if err := w.addDirRecursive(root, nil); err != nil {
			return fmt.Errorf("failed to add path %s: %w", root, err)
		}
	}

	w.started = true
	w.running = true

	w.logger.Info("watcher started", "paths", roots, "path_count", len(roots))

	go w.processEvents(ctx)

	return nil
}

// Stop implements Watcher.Stop.
func (w *watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}
	if !w.running {
		return ErrNotStarted
	}

	w.running = false
	w.stopOnce.Do(func() { close(w.stopChan) })

	w.logger.Info("watcher stopped")
	return nil
}

// Events implements Watcher.Events.
func (w *watcher) Events() <-chan Event {
	return w.events
}

// Errors implements Watcher.Errors.
func (w *watcher) Errors() <-chan error {
	return w.errors
}

// Close implements Watcher.Close.
func (w *watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}

	w.closed = true
	w.running = false
	w.stopOnce.Do(func() { close(w.stopChan) })

	w.debounceMu.Lock()
	for _, timer := range w.debounceTimers {
		timer.Stop()
	}
	w.debounceTimers = nil
	w.debounceMu.Unlock()

	// Senders hold mu.RLock and check closed, so closing here is safe.
	close(w.events)
	close(w.errors)

	if err := w.fsw.Close(); err != nil {
		w.logger.Error("failed to close fsnotify watcher", "error", err)
		return fmt.Errorf("failed to close watcher: %w", err)
	}

	w.logger.Debug("watcher closed")
	return nil
}

// processEvents handles events from fsnotify until stopped.
func (w *watcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("event processing stopped", "reason", "context cancelled")
			return

		case <-w.stopChan:
			w.logger.Debug("event processing stopped", "reason", "stop signal")
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if w.handleError(err) {
				return
			}
		}
	}
}

// handleEvent converts an fsnotify event and schedules it for emission.
func (w *watcher) handleEvent(event fsnotify.Event) {
	w.mu.Lock()
	w.failureCount = 0
	w.mu.Unlock()

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			w.watchNewDir(event.Name)
			return
		}
	}

	if !w.config.Filter(event.Name) {
		return
	}

	var op Op
	switch {
	case event.Has(fsnotify.Create):
		op = OpCreate
	case event.Has(fsnotify.Write):
		op = OpWrite
	case event.Has(fsnotify.Remove):
		op = OpRemove
	case event.Has(fsnotify.Rename):
		op = OpRename
	default:
		// Chmod alone never changes content.
		return
	}

	w.debounceEvent(Event{
		Path:      event.Name,
		Op:        op,
		Timestamp: time.Now(),
	})
}

// watchNewDir adds a directory created after Start and reports import
// files that were written into it before the watch was in place.
func (w *watcher) watchNewDir(dir string) {
	if strings.HasPrefix(filepath.Base(dir), ".") {
		return
	}

	err := w.addDirRecursive(dir, func(path string) {
		w.debounceEvent(Event{Path: path, Op: OpCreate, Timestamp: time.Now()})
	})
	if err != nil {
		w.logger.Warn("failed to watch new directory", "path", dir, "error", err)
	}
}

// debounceEvent emits event after the path has been quiet for the
// debounce interval.
func (w *watcher) debounceEvent(event Event) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if w.debounceTimers == nil {
		return
	}

	if timer, exists := w.debounceTimers[event.Path]; exists {
		timer.Stop()
	}

	w.debounceTimers[event.Path] = time.AfterFunc(w.config.DebounceInterval, func() {
		w.debounceMu.Lock()
		delete(w.debounceTimers, event.Path)
		w.debounceMu.Unlock()

		w.emit(event)
	})
}

func (w *watcher) emit(event Event) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.closed {
		return
	}

	select {
	case w.events <- event:
	default:
		w.logger.Warn("event channel full, dropping event",
			"path", event.Path,
			"op", event.Op)
	}
}

// handleError records an fsnotify error and reports whether the circuit
// breaker opened.
func (w *watcher) handleError(err error) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.failureCount++

	w.logger.Error("fsnotify error",
		"error", err,
		"failure_count", w.failureCount)

	if w.failureCount >= w.config.CircuitBreakerThreshold {
		w.logger.Error("circuit breaker opened",
			"threshold", w.config.CircuitBreakerThreshold)
		w.sendError(ErrCircuitBreakerOpen)
		return true
	}

	w.sendError(err)
	return false
}

// sendError must be called with mu held.
func (w *watcher) sendError(err error) {
	if w.closed {
		return
	}
	select {
	case w.errors <- err:
	default:
		w.logger.Warn("error channel full, dropping error", "error", err)
	}
}

// addDirRecursive watches root and every non-hidden subdirectory.
// onFile, if set, is called for each matching file found on the way.
func (w *watcher) addDirRecursive(root string, onFile func(path string)) error {
	if err := w.fsw.Add(root); err != nil {
		return fmt.Errorf("failed to add path: %w", err)
	}
	w.logger.Debug("added watch path", "path", root)

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			w.logger.Warn("error walking path", "path", path, "error", err)
			return nil
		}
		if path == root {
			return nil
		}

		if !d.IsDir() {
			if onFile != nil && w.config.Filter(path) {
				onFile(path)
			}
			return nil
		}

		if strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}

		if addErr := w.fsw.Add(path); addErr != nil {
			w.logger.Warn("failed to add subdirectory", "path", path, "error", addErr)
			return nil
		}

		w.logger.Debug("added watch subdirectory", "path", path)
		return nil
	})
}
