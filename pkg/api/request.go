package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/0xmhha/study-tracker/pkg/parser"
	"github.com/0xmhha/study-tracker/pkg/record"
)

// sessionRequest is the POST /api/sessions body. Numbers may be sent as
// JSON numbers or numeric strings; dates as any layout parser.ParseDate
// accepts or as epoch milliseconds.
type sessionRequest struct {
	Subject  string          `json:"subject"`
	Duration json.RawMessage `json:"duration"`
	Date     json.RawMessage `json:"date"`
	Notes    string          `json:"notes"`
}

// goalRequest is the POST /api/goals body.
type goalRequest struct {
	Type        record.GoalType `json:"type"`
	TargetHours json.RawMessage `json:"targetHours"`
	Title       string          `json:"title"`
	StartDate   json.RawMessage `json:"startDate"`
	EndDate     json.RawMessage `json:"endDate"`
}

// coercer converts raw request fields, collecting one FieldError per
// field that cannot be converted.
type coercer struct {
	loc    *time.Location
	fields []record.FieldError
}

func (c *coercer) fail(field, message string) {
	c.fields = append(c.fields, record.FieldError{Field: field, Message: message})
}

// number converts raw to a whole number. Absent and null values give 0 so
// that validation reports them.
func (c *coercer) number(raw json.RawMessage, field string) int {
	if isNull(raw) {
		return 0
	}

	var text string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			c.fail(field, "Expected number")
			return 0
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return 0
		}
	} else {
		text = string(raw)
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		c.fail(field, "Expected number")
		return 0
	}
	if f != math.Trunc(f) {
		c.fail(field, "Expected a whole number")
		return 0
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		c.fail(field, "Number out of range")
		return 0
	}
	return int(f)
}

// date converts raw to a time. Absent, null and empty values give the
// zero time so that validation reports them.
func (c *coercer) date(raw json.RawMessage, field string) time.Time {
	if isNull(raw) {
		return time.Time{}
	}

	if raw[0] != '"' {
		var ms int64
		if err := json.Unmarshal(raw, &ms); err != nil {
			c.fail(field, "Invalid date")
			return time.Time{}
		}
		return time.UnixMilli(ms).In(c.loc)
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		c.fail(field, "Invalid date")
		return time.Time{}
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}

	t, err := parser.ParseDate(s, c.loc)
	if err != nil {
		c.fail(field, "Invalid date")
		return time.Time{}
	}
	return t
}

// merge combines conversion failures with the input's own validation.
// A field that failed conversion is reported once.
func (c *coercer) merge(validateErr error) error {
	fields := append([]record.FieldError{}, c.fields...)

	var verr *record.ValidationError
	if errors.As(validateErr, &verr) {
		for _, f := range verr.Fields {
			if !c.failed(f.Field) {
				fields = append(fields, f)
			}
		}
	}

	if len(fields) == 0 {
		return nil
	}
	return &record.ValidationError{Fields: fields}
}

func (c *coercer) failed(field string) bool {
	for _, f := range c.fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// input converts the request, returning a *record.ValidationError when a
// field cannot be converted.
func (r sessionRequest) input(loc *time.Location) (record.SessionInput, error) {
	c := &coercer{loc: loc}
	in := record.SessionInput{
		Subject:  r.Subject,
		Duration: c.number(r.Duration, "duration"),
		Date:     c.date(r.Date, "date"),
		Notes:    r.Notes,
	}

	if len(c.fields) > 0 {
		return in, c.merge(in.Validate())
	}
	return in, nil
}

// input converts the request, returning a *record.ValidationError when a
// field cannot be converted.
func (r goalRequest) input(loc *time.Location) (record.GoalInput, error) {
	c := &coercer{loc: loc}
	in := record.GoalInput{
		Type:        r.Type,
		TargetHours: c.number(r.TargetHours, "targetHours"),
		Title:       r.Title,
		StartDate:   c.date(r.StartDate, "startDate"),
		EndDate:     c.date(r.EndDate, "endDate"),
	}

	if len(c.fields) > 0 {
		return in, c.merge(in.Validate())
	}
	return in, nil
}
