package parser

import (
	"errors"
	"strconv"
)

// Common errors returned by the parser package.
var (
	// ErrMalformedJSON is returned when a JSONL line cannot be decoded.
	ErrMalformedJSON = errors.New("malformed JSON line")

	// ErrUnknownKind is returned when a line's kind is not session or goal.
	ErrUnknownKind = errors.New("unknown record kind: must be session or goal")

	// ErrInvalidDate is returned when a date field cannot be parsed.
	ErrInvalidDate = errors.New("invalid date")

	// ErrLineTooLong is returned when a line exceeds MaxLineLength.
	ErrLineTooLong = errors.New("line exceeds maximum length")

	// ErrFileTooLarge is returned when a file exceeds the maximum size limit.
	ErrFileTooLarge = errors.New("file size exceeds maximum limit")
)

// ParseError provides context about a line that could not be decoded.
type ParseError struct {
	Line int    // Line number where error occurred (1-indexed)
	Data string // The malformed line (truncated if too long)
	Err  error  // Underlying error
}

func (e *ParseError) Error() string {
	maxLen := 100
	data := e.Data
	if len(data) > maxLen {
		data = data[:maxLen] + "..."
	}
	return formatError("parse error", e.Line, data, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError provides context about a decoded line whose record
// failed validation. Err is usually a *record.ValidationError.
type ValidationError struct {
	Line int  // Line number where error occurred (1-indexed)
	Kind Kind // Record kind being validated
	Err  error
}

func (e *ValidationError) Error() string {
	return formatError("validation error", e.Line, string(e.Kind), e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// formatError creates a consistent error message format.
func formatError(prefix string, line int, context string, err error) string {
	if line > 0 {
		return prefix + " at line " + strconv.Itoa(line) + ": " + context + ": " + err.Error()
	}
	return prefix + ": " + context + ": " + err.Error()
}
