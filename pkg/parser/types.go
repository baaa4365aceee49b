// Package parser reads study records from JSONL import files.
//
// Every line holds one JSON object whose "kind" selects the record type:
//
//	{"kind":"session","subject":"Math","duration":45,"date":"2024-03-13T18:00:00Z","notes":"ch. 4"}
//	{"kind":"goal","type":"weekly","targetHours":10,"title":"Finals","startDate":"2024-03-11","endDate":"2024-03-17"}
//
// Dates are RFC 3339 timestamps, "2006-01-02T15:04" local times or plain
// "2006-01-02" dates; the latter two are interpreted in the parser's
// location. Malformed or invalid lines are skipped and reported, never
// fatal.
//
// Example usage:
//
//	p := parser.New(parser.Config{Location: time.Local}, log)
//	batch, err := p.ParseFile("/path/to/log.jsonl", 0)
//	if err != nil {
//	    return err
//	}
//	for _, e := range batch.Entries {
//	    fmt.Println(e.Kind, e.Line)
//	}
package parser

import (
	"time"

	"github.com/0xmhha/study-tracker/pkg/record"
)

// Kind is the record type of an import line.
type Kind string

const (
	// KindSession marks a study session line.
	KindSession Kind = "session"

	// KindGoal marks a goal line.
	KindGoal Kind = "goal"
)

// line is the wire form of one import line.
type line struct {
	Kind Kind `json:"kind"`

	// Session fields.
	Subject  string `json:"subject"`
	Duration int    `json:"duration"`
	Date     string `json:"date"`
	Notes    string `json:"notes"`

	// Goal fields.
	Type        record.GoalType `json:"type"`
	TargetHours int             `json:"targetHours"`
	Title       string          `json:"title"`
	StartDate   string          `json:"startDate"`
	EndDate     string          `json:"endDate"`
}

// Entry is one successfully parsed and validated import line.
//
// Exactly one of Session and Goal is set, matching Kind.
type Entry struct {
	// Line is the 1-indexed line number relative to the read offset.
	Line int

	Kind    Kind
	Session *record.SessionInput
	Goal    *record.GoalInput
}

// Batch is the result of parsing a file region.
type Batch struct {
	// Entries holds the valid lines in file order.
	Entries []Entry

	// Skipped holds one *ParseError or *ValidationError per rejected line.
	Skipped []error

	// Offset is the byte offset just past the last consumed line.
	Offset int64
}

// Config contains parser configuration.
type Config struct {
	// Location interprets dates without an explicit offset
	// (default: time.Local).
	Location *time.Location

	// MaxFileSize rejects larger files (default: MaxFileSize).
	MaxFileSize int64
}
