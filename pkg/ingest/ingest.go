package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/0xmhha/study-tracker/pkg/config"
	"github.com/0xmhha/study-tracker/pkg/discovery"
	"github.com/0xmhha/study-tracker/pkg/logger"
	"github.com/0xmhha/study-tracker/pkg/parser"
	"github.com/0xmhha/study-tracker/pkg/reader"
	"github.com/0xmhha/study-tracker/pkg/watcher"
	bolt "go.etcd.io/bbolt"
)

// Ingester imports JSONL files through a Tracker.
//
// Imports are serialised, so Sweep, ImportFile and Run may be called
// concurrently.
type Ingester struct {
	tracker   Tracker
	reader    reader.Reader
	discovery discovery.Discoverer
	logger    logger.Logger

	// state is the position database opened by Open; nil otherwise.
	state *bolt.DB

	mu     sync.Mutex
	closed bool
}

// New creates an Ingester from its parts. The Ingester takes ownership
// of r and closes it on Close.
func New(t Tracker, r reader.Reader, d discovery.Discoverer, log logger.Logger) (*Ingester, error) {
	if t == nil || r == nil || d == nil {
		return nil, ErrInvalidConfig
	}
	if log == nil {
		log = logger.Noop()
	}

	return &Ingester{
		tracker:   t,
		reader:    r,
		discovery: d,
		logger:    log,
	}, nil
}

// Open wires an Ingester for cfg: a bbolt position store at
// cfg.StatePath, a parser interpreting zone-less dates in loc and a
// discoverer over cfg.Dirs.
func Open(cfg config.ImportConfig, loc *time.Location, t Tracker, log logger.Logger) (*Ingester, error) {
	if len(cfg.Dirs) == 0 {
		return nil, ErrNoDirs
	}
	if cfg.StatePath == "" {
		return nil, fmt.Errorf("%w: state path is required", ErrInvalidConfig)
	}

	statePath := discovery.ExpandHome(cfg.StatePath)
	if err := os.MkdirAll(filepath.Dir(statePath), 0700); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	db, err := bolt.Open(statePath, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open import state: %w", err)
	}

	positions, err := reader.NewBoltPositionStore(db)
	if err != nil {
		closeQuietly(db, log)
		return nil, err
	}

	r, err := reader.New(reader.Config{
		PositionStore: positions,
		Parser:        parser.New(parser.Config{Location: loc}, log),
	}, log)
	if err != nil {
		closeQuietly(db, log)
		return nil, fmt.Errorf("failed to create reader: %w", err)
	}

	in, err := New(t, r, discovery.New(cfg.Dirs, log), log)
	if err != nil {
		closeQuietly(db, log)
		return nil, err
	}
	in.state = db

	log.Info("ingester opened",
		"dirs", cfg.Dirs,
		"state_path", statePath)

	return in, nil
}

func closeQuietly(db *bolt.DB, log logger.Logger) {
	if err := db.Close(); err != nil {
		log.Error("failed to close import state", "error", err)
	}
}

// Sweep imports new lines from every discovered file.
//
// Files that cannot be read are logged and skipped.
func (in *Ingester) Sweep(ctx context.Context) (Result, error) {
	files, err := in.discovery.Discover()
	if err != nil {
		return Result{}, fmt.Errorf("failed to discover import files: %w", err)
	}

	var total Result
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		res, err := in.ImportFile(ctx, f.Path)
		if err != nil {
			if errors.Is(err, ErrIngesterClosed) {
				return total, err
			}
			in.logger.Warn("failed to import file",
				"path", f.Path,
				"error", err)
			continue
		}
		total.Add(res)
	}

	in.logger.Info("import sweep complete",
		"files", total.Files,
		"sessions", total.Sessions,
		"goals", total.Goals,
		"skipped", total.Skipped,
		"failed", total.Failed)

	return total, nil
}

// ImportFile imports the lines appended to path since the last import.
func (in *Ingester) ImportFile(ctx context.Context, path string) (Result, error) {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.closed {
		return Result{}, ErrIngesterClosed
	}

	batch, err := in.reader.Read(ctx, path)
	if err != nil {
		return Result{}, err
	}

	res := Result{Files: 1, Skipped: len(batch.Skipped)}
	for _, e := range batch.Entries {
		in.apply(ctx, path, e, &res)
	}

	if res.Imported() > 0 || res.Skipped > 0 || res.Failed > 0 {
		in.logger.Debug("file imported",
			"path", path,
			"sessions", res.Sessions,
			"goals", res.Goals,
			"skipped", res.Skipped,
			"failed", res.Failed,
			"offset", batch.Offset)
	}

	return res, nil
}

func (in *Ingester) apply(ctx context.Context, path string, e parser.Entry, res *Result) {
	var err error

	switch e.Kind {
	case parser.KindSession:
		if _, err = in.tracker.CreateSession(ctx, *e.Session); err == nil {
			res.Sessions++
		}
	case parser.KindGoal:
		if _, err = in.tracker.CreateGoal(ctx, *e.Goal); err == nil {
			res.Goals++
		}
	default:
		err = fmt.Errorf("%w: %s", parser.ErrUnknownKind, e.Kind)
	}

	if err != nil {
		res.Failed++
		in.logger.Error("failed to import record",
			"path", path,
			"line", e.Line,
			"kind", e.Kind,
			"error", err)
	}
}

// Run watches the import directories with w, sweeps once, then imports
// every change until ctx is cancelled. onUpdate, if set, is called after
// each change that produced records or skipped lines.
//
// Run returns nil on cancellation and an error if the watcher fails.
func (in *Ingester) Run(ctx context.Context, w watcher.Watcher, onUpdate func(Update)) error {
	// Watch before sweeping so that lines appended during the sweep are
	// picked up; the stored offsets prevent double imports.
	if err := w.Start(ctx, in.discovery.Dirs()); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer func() {
		if err := w.Stop(); err != nil && !errors.Is(err, watcher.ErrNotStarted) {
			in.logger.Debug("failed to stop watcher", "error", err)
		}
	}()

	total, err := in.Sweep(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}

	in.logger.Info("watching import directories", "dirs", in.discovery.Dirs())

	for {
		select {
		case <-ctx.Done():
			in.logger.Info("import watch stopped", "reason", "context cancelled")
			return nil

		case event, ok := <-w.Events():
			if !ok {
				return nil
			}
			in.handleEvent(ctx, event, &total, onUpdate)

		case err, ok := <-w.Errors():
			if !ok {
				return nil
			}
			if errors.Is(err, watcher.ErrCircuitBreakerOpen) {
				return fmt.Errorf("import watch aborted: %w", err)
			}
			in.logger.Warn("watcher error", "error", err)
		}
	}
}

func (in *Ingester) handleEvent(ctx context.Context, event watcher.Event, total *Result, onUpdate func(Update)) {
	in.logger.Debug("import file changed",
		"path", event.Path,
		"op", event.Op)

	if !event.Op.Readable() {
		// A file recreated under the same name starts from the top.
		if err := in.resetFile(event.Path); err != nil {
			in.logger.Warn("failed to reset read position",
				"path", event.Path,
				"error", err)
		}
		return
	}

	res, err := in.ImportFile(ctx, event.Path)
	if err != nil {
		in.logger.Warn("failed to import file after change",
			"path", event.Path,
			"error", err)
		return
	}

	if res.Imported() == 0 && res.Skipped == 0 && res.Failed == 0 {
		return
	}

	total.Add(res)
	if onUpdate != nil {
		onUpdate(Update{
			Timestamp: time.Now(),
			Path:      event.Path,
			Result:    res,
			Total:     *total,
		})
	}
}

func (in *Ingester) resetFile(path string) error {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.closed {
		return ErrIngesterClosed
	}
	return in.reader.Reset(path)
}

// Close releases the reader and the import state database.
func (in *Ingester) Close() error {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.closed {
		return nil
	}
	in.closed = true

	var errs []error
	if err := in.reader.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close reader: %w", err))
	}
	if in.state != nil {
		if err := in.state.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close import state: %w", err))
		}
	}

	return errors.Join(errs...)
}
