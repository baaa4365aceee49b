// Package watcher notifies about changes to import files.
//
// It wraps fsnotify, watches import directories recursively (including
// directories created after Start) and coalesces bursts of writes to the
// same file into a single event.
//
// Example usage:
//
//	w, err := watcher.New(watcher.Config{
//	    DebounceInterval: 200 * time.Millisecond,
//	}, log)
//	if err != nil {
//	    return err
//	}
//	defer w.Close()
//
//	if err := w.Start(ctx, cfg.Import.Dirs); err != nil {
//	    return err
//	}
//
//	for event := range w.Events() {
//	    fmt.Printf("%s %s\n", event.Op, event.Path)
//	}
package watcher

import (
	"context"
	"time"
)

// Op describes a file operation type.
type Op uint32

// File operation types.
const (
	OpCreate Op = 1 << iota // File created
	OpWrite                 // Lines appended or file rewritten
	OpRemove                // File deleted
	OpRename                // File renamed/moved
	OpChmod                 // File permissions changed
)

// String returns a human-readable operation name.
func (op Op) String() string {
	switch op {
	case OpCreate:
		return "CREATE"
	case OpWrite:
		return "WRITE"
	case OpRemove:
		return "REMOVE"
	case OpRename:
		return "RENAME"
	case OpChmod:
		return "CHMOD"
	default:
		return "UNKNOWN"
	}
}

// Readable reports whether the file may have new content after op.
func (op Op) Readable() bool {
	return op == OpCreate || op == OpWrite
}

// Event represents a debounced change to an import file.
type Event struct {
	// Path is the absolute path of the import file.
	Path string

	// Op is the last operation seen within the debounce window.
	Op Op

	// Timestamp is when the last operation was observed.
	Timestamp time.Time
}

// Watcher provides file system monitoring.
type Watcher interface {
	// Start adds the directories (recursively) and starts the event loop
	// in the background. Missing directories are skipped; ErrInvalidPath
	// is returned when none of them exist.
	//
	// The loop stops when ctx is cancelled, Stop or Close is called, or
	// the circuit breaker opens.
	Start(ctx context.Context, dirs []string) error

	// Stop ends the event loop. The watcher cannot be restarted.
	Stop() error

	// Events returns debounced file events.
	// The channel is closed by Close.
	Events() <-chan Event

	// Errors returns non-fatal watcher errors, and ErrCircuitBreakerOpen
	// once too many consecutive errors occurred.
	// The channel is closed by Close.
	Errors() <-chan error

	// Close stops the watcher and releases resources. Safe to call twice.
	Close() error
}

// Config contains watcher configuration.
type Config struct {
	// DebounceInterval is the quiet period before an event is emitted.
	// Operations on the same file within this interval are coalesced.
	// Default: 100ms.
	DebounceInterval time.Duration

	// CircuitBreakerThreshold is the number of consecutive fsnotify errors
	// after which the watcher gives up.
	// Default: 5.
	CircuitBreakerThreshold int

	// Filter selects the files that produce events.
	// Default: discovery.IsImportFile (*.jsonl, not hidden).
	Filter func(path string) bool

	// EventBuffer is the capacity of the Events channel. Events that do
	// not fit are dropped with a warning; the next write re-emits them.
	// Default: 100.
	EventBuffer int
}
