package parser

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/0xmhha/study-tracker/pkg/logger"
	"github.com/0xmhha/study-tracker/pkg/record"
)

const (
	// MaxFileSize is the maximum allowed JSONL file size (100MB).
	// Files larger than this will be rejected to prevent memory exhaustion.
	MaxFileSize = 100 * 1024 * 1024

	// MaxLineLength is the maximum allowed line length (1MB).
	MaxLineLength = 1024 * 1024
)

// dateLayouts are tried in order for every date field.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Parser provides methods for parsing study record JSONL files.
type Parser interface {
	// ParseFile reads complete lines from offset to the end of the file.
	//
	// A trailing line without a newline is consumed only when it parses;
	// otherwise it is assumed to be mid-write and left for the next call.
	//
	// Returns an error only if the file cannot be read or is too large.
	//
	// Thread-safety: This method is safe to call concurrently with different files.
	ParseFile(path string, offset int64) (Batch, error)

	// ParseLine parses a single JSONL line (without newline character).
	//
	// Returns a *ParseError wrapping ErrMalformedJSON, ErrUnknownKind or
	// ErrInvalidDate, or a *ValidationError wrapping *record.ValidationError.
	ParseLine(line string) (Entry, error)
}

// jsonlParser implements the Parser interface.
type jsonlParser struct {
	loc     *time.Location
	maxSize int64
	logger  logger.Logger
}

// New creates a new Parser instance.
func New(cfg Config, log logger.Logger) Parser {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.MaxFileSize == 0 {
		cfg.MaxFileSize = MaxFileSize
	}
	if log == nil {
		log = logger.Noop()
	}

	return &jsonlParser{
		loc:     cfg.Location,
		maxSize: cfg.MaxFileSize,
		logger:  log,
	}
}

// ParseFile implements Parser.ParseFile.
func (p *jsonlParser) ParseFile(path string, offset int64) (Batch, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Batch{}, fmt.Errorf("failed to stat file: %w", err)
	}

	if info.Size() > p.maxSize {
		return Batch{}, fmt.Errorf("%w: size=%d, max=%d",
			ErrFileTooLarge, info.Size(), p.maxSize)
	}

	// #nosec G304: path is validated by caller
	f, err := os.Open(path) // nolint:gosec
	if err != nil {
		return Batch{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			p.logger.Warn("failed to close file", "path", path, "error", closeErr)
		}
	}()

	if offset > 0 {
		if _, seekErr := f.Seek(offset, io.SeekStart); seekErr != nil {
			return Batch{}, fmt.Errorf("failed to seek to offset %d: %w", offset, seekErr)
		}
	}

	batch := Batch{
		Entries: make([]Entry, 0, 32),
		Offset:  offset,
	}
	r := bufio.NewReaderSize(f, 64*1024)
	lineNum := 0

	for {
		raw, readErr := r.ReadBytes('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return batch, fmt.Errorf("read error after line %d: %w", lineNum, readErr)
		}
		if len(raw) == 0 {
			break
		}

		complete := raw[len(raw)-1] == '\n'
		text := strings.TrimSpace(string(bytes.TrimRight(raw, "\r\n")))

		if !complete {
			// Partial tail: consume it only if it is already a valid line.
			if text == "" {
				break
			}
			entry, lineErr := p.ParseLine(text)
			if lineErr != nil {
				p.logger.Debug("leaving partial line for next read",
					"path", path,
					"offset", batch.Offset)
				break
			}
			lineNum++
			entry.Line = lineNum
			batch.Entries = append(batch.Entries, entry)
			batch.Offset += int64(len(raw))
			break
		}

		lineNum++
		batch.Offset += int64(len(raw))

		if text == "" {
			continue
		}

		if len(raw) > MaxLineLength {
			p.skip(&batch, path, &ParseError{Line: lineNum, Data: text, Err: ErrLineTooLong})
			continue
		}

		entry, lineErr := p.ParseLine(text)
		if lineErr != nil {
			p.skip(&batch, path, withLine(lineErr, lineNum))
			continue
		}

		entry.Line = lineNum
		batch.Entries = append(batch.Entries, entry)
	}

	return batch, nil
}

func (p *jsonlParser) skip(b *Batch, path string, err error) {
	p.logger.Warn("skipping import line", "path", path, "error", err)
	b.Skipped = append(b.Skipped, err)
}

// ParseLine implements Parser.ParseLine.
func (p *jsonlParser) ParseLine(text string) (Entry, error) {
	if strings.TrimSpace(text) == "" {
		return Entry{}, &ParseError{Data: text, Err: fmt.Errorf("%w: empty line", ErrMalformedJSON)}
	}

	var l line
	if err := json.Unmarshal([]byte(text), &l); err != nil {
		return Entry{}, &ParseError{Data: text, Err: fmt.Errorf("%w: %v", ErrMalformedJSON, err)}
	}

	switch l.Kind {
	case KindSession:
		return p.session(l, text)
	case KindGoal:
		return p.goal(l, text)
	default:
		return Entry{}, &ParseError{Data: text, Err: fmt.Errorf("%w: %q", ErrUnknownKind, l.Kind)}
	}
}

func (p *jsonlParser) session(l line, text string) (Entry, error) {
	date, err := p.parseDate(l.Date)
	if err != nil {
		return Entry{}, &ParseError{Data: text, Err: fmt.Errorf("date: %w", err)}
	}

	in := record.SessionInput{
		Subject:  l.Subject,
		Duration: l.Duration,
		Date:     date,
		Notes:    l.Notes,
	}
	if err := in.Validate(); err != nil {
		return Entry{}, &ValidationError{Kind: KindSession, Err: err}
	}

	return Entry{Kind: KindSession, Session: &in}, nil
}

func (p *jsonlParser) goal(l line, text string) (Entry, error) {
	start, err := p.parseDate(l.StartDate)
	if err != nil {
		return Entry{}, &ParseError{Data: text, Err: fmt.Errorf("startDate: %w", err)}
	}
	end, err := p.parseDate(l.EndDate)
	if err != nil {
		return Entry{}, &ParseError{Data: text, Err: fmt.Errorf("endDate: %w", err)}
	}

	in := record.GoalInput{
		Type:        l.Type,
		TargetHours: l.TargetHours,
		Title:       l.Title,
		StartDate:   start,
		EndDate:     end,
	}
	if err := in.Validate(); err != nil {
		return Entry{}, &ValidationError{Kind: KindGoal, Err: err}
	}

	return Entry{Kind: KindGoal, Goal: &in}, nil
}

// parseDate returns the zero time for an empty string so that record
// validation reports the missing field.
func (p *jsonlParser) parseDate(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, nil
	}
	return ParseDate(s, p.loc)
}

// ParseDate parses s with the layouts accepted in import files. Layouts
// without a zone are interpreted in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if loc == nil {
		loc = time.Local
	}

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// withLine stamps a line number on errors returned by ParseLine.
func withLine(err error, lineNum int) error {
	var perr *ParseError
	if errors.As(err, &perr) {
		perr.Line = lineNum
		return perr
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		verr.Line = lineNum
		return verr
	}
	return err
}
