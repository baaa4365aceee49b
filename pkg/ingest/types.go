// Package ingest imports study records from JSONL files into the tracker.
//
// An Ingester sweeps every discovered import file once and can then follow
// the import directories, importing lines as they are appended. Read
// offsets are persisted by the reader, so each line is imported at most
// once across restarts.
//
// Example usage:
//
//	in, err := ingest.Open(cfg.Import, loc, svc, log)
//	if err != nil {
//	    return err
//	}
//	defer in.Close()
//
//	res, err := in.Sweep(ctx)
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("imported %d sessions\n", res.Sessions)
package ingest

import (
	"context"
	"time"

	"github.com/0xmhha/study-tracker/pkg/record"
)

// Tracker receives imported records.
type Tracker interface {
	CreateSession(ctx context.Context, in record.SessionInput) (record.Session, error)
	CreateGoal(ctx context.Context, in record.GoalInput) (record.Goal, error)
}

// Result counts the outcome of an import.
type Result struct {
	// Files is the number of files read.
	Files int `json:"files"`

	// Sessions and Goals count the records created.
	Sessions int `json:"sessions"`
	Goals    int `json:"goals"`

	// Skipped counts malformed or invalid lines.
	Skipped int `json:"skipped"`

	// Failed counts valid lines the tracker could not store.
	Failed int `json:"failed"`
}

// Imported returns the number of records created.
func (r Result) Imported() int {
	return r.Sessions + r.Goals
}

// Add accumulates o into r.
func (r *Result) Add(o Result) {
	r.Files += o.Files
	r.Sessions += o.Sessions
	r.Goals += o.Goals
	r.Skipped += o.Skipped
	r.Failed += o.Failed
}

// Update is reported for every file change imported while watching.
type Update struct {
	// Timestamp is when the import finished.
	Timestamp time.Time

	// Path is the import file that changed.
	Path string

	// Result counts the lines imported from Path.
	Result Result

	// Total accumulates every Result since Watch started.
	Total Result
}
