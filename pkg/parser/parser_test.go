package parser

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/0xmhha/study-tracker/pkg/logger"
	"github.com/0xmhha/study-tracker/pkg/record"
)

func newTestParser() Parser {
	return New(Config{Location: time.UTC}, logger.Noop())
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "log.jsonl")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	return path
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		wantErr error
		check   func(t *testing.T, e Entry)
	}{
		{
			name: "session with all fields",
			line: `{"kind":"session","subject":" Math ","duration":45,"date":"2024-03-13T18:00:00Z","notes":"ch. 4"}`,
			check: func(t *testing.T, e Entry) {
				if e.Kind != KindSession || e.Session == nil || e.Goal != nil {
					t.Fatalf("entry = %+v, want session", e)
				}
				if e.Session.Duration != 45 {
					t.Errorf("Duration = %d, want 45", e.Session.Duration)
				}
				if !e.Session.Date.Equal(time.Date(2024, 3, 13, 18, 0, 0, 0, time.UTC)) {
					t.Errorf("Date = %v", e.Session.Date)
				}
				if e.Session.Notes != "ch. 4" {
					t.Errorf("Notes = %q", e.Session.Notes)
				}
			},
		},
		{
			name: "session with local minute timestamp",
			line: `{"kind":"session","subject":"Art","duration":30,"date":"2024-03-13T09:15"}`,
			check: func(t *testing.T, e Entry) {
				want := time.Date(2024, 3, 13, 9, 15, 0, 0, time.UTC)
				if !e.Session.Date.Equal(want) {
					t.Errorf("Date = %v, want %v", e.Session.Date, want)
				}
			},
		},
		{
			name: "goal with plain dates",
			line: `{"kind":"goal","type":"weekly","targetHours":10,"title":"Finals","startDate":"2024-03-11","endDate":"2024-03-17"}`,
			check: func(t *testing.T, e Entry) {
				if e.Kind != KindGoal || e.Goal == nil {
					t.Fatalf("entry = %+v, want goal", e)
				}
				if e.Goal.Type != record.GoalWeekly || e.Goal.TargetHours != 10 {
					t.Errorf("Goal = %+v", e.Goal)
				}
				if !e.Goal.StartDate.Equal(time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)) {
					t.Errorf("StartDate = %v", e.Goal.StartDate)
				}
			},
		},
		{name: "empty line", line: "", wantErr: ErrMalformedJSON},
		{name: "invalid json", line: `{"kind":`, wantErr: ErrMalformedJSON},
		{name: "unknown kind", line: `{"kind":"exam","subject":"Math"}`, wantErr: ErrUnknownKind},
		{name: "missing kind", line: `{"subject":"Math","duration":10,"date":"2024-03-13"}`, wantErr: ErrUnknownKind},
		{name: "bad date", line: `{"kind":"session","subject":"Math","duration":10,"date":"yesterday"}`, wantErr: ErrInvalidDate},
		{name: "invalid session", line: `{"kind":"session","subject":"","duration":0,"date":"2024-03-13"}`, wantErr: record.ErrValidation},
		{name: "invalid goal", line: `{"kind":"goal","type":"yearly","targetHours":1,"title":"x","startDate":"2024-03-11","endDate":"2024-03-17"}`, wantErr: record.ErrValidation},
	}

	p := newTestParser()
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			entry, err := p.ParseLine(tt.line)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseLine() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLine() error = %v", err)
			}
			tt.check(t, entry)
		})
	}
}

func TestParseLine_ValidationErrorCarriesFields(t *testing.T) {
	_, err := newTestParser().ParseLine(`{"kind":"session","subject":"","duration":5,"date":"2024-03-13"}`)

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %T, want *ValidationError", err)
	}
	if verr.Kind != KindSession {
		t.Errorf("Kind = %s, want session", verr.Kind)
	}

	var rerr *record.ValidationError
	if !errors.As(err, &rerr) || len(rerr.Fields) != 1 || rerr.Fields[0].Field != "subject" {
		t.Errorf("record error = %+v, want subject field", rerr)
	}
}

func TestParseFile(t *testing.T) {
	content := `{"kind":"session","subject":"Math","duration":60,"date":"2024-03-13T10:00:00Z"}

{"kind":"session","subject":"Art"
{"kind":"goal","type":"daily","targetHours":2,"title":"Today","startDate":"2024-03-13","endDate":"2024-03-13T23:59"}
{"kind":"session","subject":"","duration":0,"date":"2024-03-13"}
`
	path := writeFile(t, content)

	batch, err := newTestParser().ParseFile(path, 0)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}

	if len(batch.Entries) != 2 {
		t.Fatalf("len(Entries) = %d, want 2", len(batch.Entries))
	}
	if batch.Entries[0].Line != 1 || batch.Entries[1].Line != 4 {
		t.Errorf("lines = %d,%d, want 1,4", batch.Entries[0].Line, batch.Entries[1].Line)
	}
	if len(batch.Skipped) != 2 {
		t.Fatalf("len(Skipped) = %d, want 2", len(batch.Skipped))
	}

	var perr *ParseError
	if !errors.As(batch.Skipped[0], &perr) || perr.Line != 3 {
		t.Errorf("Skipped[0] = %v, want ParseError at line 3", batch.Skipped[0])
	}
	var verr *ValidationError
	if !errors.As(batch.Skipped[1], &verr) || verr.Line != 5 {
		t.Errorf("Skipped[1] = %v, want ValidationError at line 5", batch.Skipped[1])
	}

	if batch.Offset != int64(len(content)) {
		t.Errorf("Offset = %d, want %d", batch.Offset, len(content))
	}
}

func TestParseFile_FromOffset(t *testing.T) {
	first := `{"kind":"session","subject":"Math","duration":60,"date":"2024-03-13T10:00:00Z"}` + "\n"
	second := `{"kind":"session","subject":"Art","duration":30,"date":"2024-03-13T11:00:00Z"}` + "\n"
	path := writeFile(t, first+second)

	batch, err := newTestParser().ParseFile(path, int64(len(first)))
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if len(batch.Entries) != 1 || batch.Entries[0].Session.Subject != "Art" {
		t.Fatalf("Entries = %+v, want only Art", batch.Entries)
	}
	if batch.Offset != int64(len(first+second)) {
		t.Errorf("Offset = %d, want %d", batch.Offset, len(first+second))
	}
}

func TestParseFile_PartialTrailingLine(t *testing.T) {
	complete := `{"kind":"session","subject":"Math","duration":60,"date":"2024-03-13T10:00:00Z"}` + "\n"
	partial := `{"kind":"session","subject":"Ar`
	path := writeFile(t, complete+partial)

	batch, err := newTestParser().ParseFile(path, 0)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if len(batch.Entries) != 1 {
		t.Errorf("len(Entries) = %d, want 1", len(batch.Entries))
	}
	if len(batch.Skipped) != 0 {
		t.Errorf("partial line reported as skipped: %v", batch.Skipped)
	}
	if batch.Offset != int64(len(complete)) {
		t.Errorf("Offset = %d, want %d (partial line left unread)", batch.Offset, len(complete))
	}
}

func TestParseFile_ValidTrailingLineWithoutNewline(t *testing.T) {
	content := `{"kind":"session","subject":"Math","duration":60,"date":"2024-03-13T10:00:00Z"}`
	path := writeFile(t, content)

	batch, err := newTestParser().ParseFile(path, 0)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if len(batch.Entries) != 1 {
		t.Fatalf("len(Entries) = %d, want 1", len(batch.Entries))
	}
	if batch.Offset != int64(len(content)) {
		t.Errorf("Offset = %d, want %d", batch.Offset, len(content))
	}
}

func TestParseFile_Errors(t *testing.T) {
	p := newTestParser()

	if _, err := p.ParseFile(filepath.Join(t.TempDir(), "missing.jsonl"), 0); err == nil {
		t.Error("ParseFile() on missing file should fail")
	}

	path := writeFile(t, `{"kind":"session"}`+"\n")
	small := New(Config{Location: time.UTC, MaxFileSize: 4}, logger.Noop())
	if _, err := small.ParseFile(path, 0); !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("ParseFile() error = %v, want ErrFileTooLarge", err)
	}
}

func TestParseError_TruncatesData(t *testing.T) {
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'x'
	}
	err := &ParseError{Line: 7, Data: string(long), Err: ErrMalformedJSON}

	msg := err.Error()
	if len(msg) > 200 {
		t.Errorf("Error() length = %d, want truncated", len(msg))
	}
	if !errors.Is(err, ErrMalformedJSON) {
		t.Error("ParseError should unwrap to ErrMalformedJSON")
	}
}

func BenchmarkParseLine(b *testing.B) {
	p := newTestParser()
	line := `{"kind":"session","subject":"Math","duration":60,"date":"2024-03-13T10:00:00Z","notes":"limits"}`

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = p.ParseLine(line)
	}
}

func TestParseDate(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)

	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{in: "2024-03-13T10:00:00Z", want: time.Date(2024, 3, 13, 10, 0, 0, 0, time.UTC)},
		{in: "2024-03-13T10:00", want: time.Date(2024, 3, 13, 10, 0, 0, 0, tokyo)},
		{in: " 2024-03-13 10:30 ", want: time.Date(2024, 3, 13, 10, 30, 0, 0, tokyo)},
		{in: "2024-03-13", want: time.Date(2024, 3, 13, 0, 0, 0, 0, tokyo)},
		{in: "13/03/2024", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseDate(tt.in, tokyo)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidDate) {
				t.Errorf("ParseDate(%q) error = %v, want ErrInvalidDate", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDate(%q) error = %v", tt.in, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("ParseDate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
