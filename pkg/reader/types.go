// Package reader provides incremental file reading with position tracking.
//
// It reads import files from the last known position and persists offsets
// so that restarts never import a line twice. Truncated files are read
// again from the beginning.
//
// Example usage:
//
//	positions, err := reader.NewBoltPositionStore(stateDB)
//	if err != nil {
//	    return err
//	}
//	r, err := reader.New(reader.Config{
//	    PositionStore: positions,
//	    Parser:        parser.New(parser.Config{}, log),
//	}, log)
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//
//	batch, err := r.Read(ctx, "/path/to/log.jsonl")
//	if err != nil {
//	    return err
//	}
//	for _, e := range batch.Entries {
//	    fmt.Println(e.Kind)
//	}
package reader

import (
	"context"
	"time"

	"github.com/0xmhha/study-tracker/pkg/parser"
)

// PositionStore persists the byte offset reached in each import file.
//
// Paths are absolute. An unknown path has offset 0.
type PositionStore interface {
	GetPosition(path string) (int64, error)
	SetPosition(path string, offset int64) error
}

// Reader reads import files incrementally.
type Reader interface {
	// Read parses the complete lines appended to path since the stored
	// offset and advances the offset past them. A file shorter than its
	// stored offset is read from the beginning.
	Read(ctx context.Context, path string) (parser.Batch, error)

	// ReadFrom parses path from offset without touching the stored offset.
	ReadFrom(ctx context.Context, path string, offset int64) (parser.Batch, error)

	// Reset forgets the stored offset so the next Read starts at 0.
	Reset(path string) error

	// Close marks the reader closed. The PositionStore is not closed.
	Close() error
}

// Config contains reader configuration.
type Config struct {
	// PositionStore persists offsets. Required.
	PositionStore PositionStore

	// Parser parses import lines. Required.
	Parser parser.Parser

	// MaxRetries bounds retries of transient read failures.
	// Default: 3.
	MaxRetries int

	// RetryDelay is the first retry delay; each retry doubles it.
	// Default: 100ms.
	RetryDelay time.Duration

	// MaxFileSize rejects larger import files.
	// Default: 100MB.
	MaxFileSize int64
}
