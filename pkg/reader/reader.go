package reader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/0xmhha/study-tracker/pkg/logger"
	"github.com/0xmhha/study-tracker/pkg/parser"
)

const (
	defaultMaxRetries  = 3
	defaultRetryDelay  = 100 * time.Millisecond
	defaultMaxFileSize = 100 * 1024 * 1024
)

// reader implements the Reader interface.
type reader struct {
	positions PositionStore
	parser    parser.Parser
	logger    logger.Logger
	config    Config

	mu     sync.RWMutex
	closed bool
}

// New creates a reader that resumes each import file from its stored
// offset.
func New(cfg Config, log logger.Logger) (Reader, error) {
	if cfg.PositionStore == nil {
		return nil, ErrNoPositionStore
	}
	if cfg.Parser == nil {
		return nil, ErrNoParser
	}

	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = defaultRetryDelay
	}
	if cfg.MaxFileSize == 0 {
		cfg.MaxFileSize = defaultMaxFileSize
	}

	log.Debug("import reader created",
		"max_retries", cfg.MaxRetries,
		"retry_delay", cfg.RetryDelay,
		"max_file_size", cfg.MaxFileSize)

	return &reader{
		positions: cfg.PositionStore,
		parser:    cfg.Parser,
		logger:    log,
		config:    cfg,
	}, nil
}

func (r *reader) checkOpen() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return ErrReaderClosed
	}
	return nil
}

// Read implements Reader.Read.
//
// The new offset is stored even when every line was skipped, so a
// malformed line is reported once rather than on every read.
func (r *reader) Read(ctx context.Context, path string) (parser.Batch, error) {
	if err := r.checkOpen(); err != nil {
		return parser.Batch{}, err
	}

	offset, err := r.positions.GetPosition(path)
	if err != nil {
		return parser.Batch{}, fmt.Errorf("failed to get position for %s: %w", path, err)
	}

	batch, err := r.readWithRetry(ctx, path, offset)
	if err != nil {
		return parser.Batch{}, err
	}

	if batch.Offset != offset {
		if err := r.positions.SetPosition(path, batch.Offset); err != nil {
			// The batch is still returned; the lines are re-read next time.
			r.logger.Error("failed to store position",
				"path", path,
				"offset", batch.Offset,
				"error", err)
		}
	}

	if len(batch.Entries) > 0 || len(batch.Skipped) > 0 {
		sessions, goals := countKinds(batch.Entries)
		r.logger.Debug("read import lines",
			"path", path,
			"sessions", sessions,
			"goals", goals,
			"skipped", len(batch.Skipped),
			"from", offset,
			"to", batch.Offset)
	}

	return batch, nil
}

// ReadFrom implements Reader.ReadFrom.
func (r *reader) ReadFrom(ctx context.Context, path string, offset int64) (parser.Batch, error) {
	if err := r.checkOpen(); err != nil {
		return parser.Batch{}, err
	}
	if offset < 0 {
		return parser.Batch{}, ErrInvalidOffset
	}

	return r.readWithRetry(ctx, path, offset)
}

// Reset implements Reader.Reset.
func (r *reader) Reset(path string) error {
	if err := r.checkOpen(); err != nil {
		return err
	}

	if err := r.positions.SetPosition(path, 0); err != nil {
		return fmt.Errorf("failed to reset position for %s: %w", path, err)
	}

	r.logger.Debug("import position reset", "path", path)
	return nil
}

// Close implements Reader.Close.
func (r *reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	return nil
}

// readWithRetry retries transient failures with exponential backoff.
func (r *reader) readWithRetry(ctx context.Context, path string, offset int64) (parser.Batch, error) {
	var lastErr error

	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := backoff(r.config.RetryDelay, attempt)

			select {
			case <-ctx.Done():
				return parser.Batch{}, ctx.Err()
			case <-time.After(delay):
			}
		}

		batch, err := r.readFile(ctx, path, offset)
		if err == nil {
			return batch, nil
		}
		if !retryable(err) {
			return parser.Batch{}, err
		}

		lastErr = err
		r.logger.Warn("import read failed, retrying",
			"path", path,
			"attempt", attempt+1,
			"error", err)
	}

	return parser.Batch{}, fmt.Errorf("giving up on %s after %d attempts: %w",
		path, r.config.MaxRetries+1, lastErr)
}

// readFile parses the complete lines after offset.
func (r *reader) readFile(ctx context.Context, path string, offset int64) (parser.Batch, error) {
	if err := ctx.Err(); err != nil {
		return parser.Batch{}, err
	}

	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return parser.Batch{}, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	case errors.Is(err, fs.ErrPermission):
		return parser.Batch{}, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
	case err != nil:
		return parser.Batch{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	size := info.Size()
	if size > r.config.MaxFileSize {
		return parser.Batch{}, fmt.Errorf("%w: %s (%d bytes)", ErrFileTooLarge, path, size)
	}

	if offset > size {
		r.logger.Warn("import file shrank, reading from the start",
			"path", path,
			"old_offset", offset,
			"size", size)
		offset = 0
	}
	if offset == size {
		return parser.Batch{Entries: []parser.Entry{}, Offset: offset}, nil
	}

	batch, err := r.parser.ParseFile(path, offset)
	if err != nil {
		return parser.Batch{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return batch, nil
}

// backoff returns base doubled for every attempt after the first retry.
func backoff(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		return 0
	}
	return base << (attempt - 1) // nolint:gosec // attempt is bounded by MaxRetries
}

// retryable reports whether err may clear up on its own. A missing file
// has been removed and is not retried.
func retryable(err error) bool {
	switch {
	case errors.Is(err, ErrFileNotFound),
		errors.Is(err, ErrPermissionDenied),
		errors.Is(err, ErrFileTooLarge),
		errors.Is(err, parser.ErrFileTooLarge),
		errors.Is(err, ErrInvalidOffset),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return false
	default:
		return true
	}
}

func countKinds(entries []parser.Entry) (sessions, goals int) {
	for _, e := range entries {
		switch e.Kind {
		case parser.KindSession:
			sessions++
		case parser.KindGoal:
			goals++
		}
	}
	return sessions, goals
}
