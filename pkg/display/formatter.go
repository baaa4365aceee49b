package display

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Palette.
const (
	colorAccent = "#7C3AED"
	colorMuted  = "#6D7383"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04"
)

// New creates a new formatter based on configuration.
func New(cfg Config) Formatter {
	if cfg.Format == "" {
		cfg.Format = FormatTable
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}

	switch cfg.Format {
	case FormatJSON:
		return &jsonFormatter{config: cfg}
	case FormatSimple:
		return &simpleFormatter{config: cfg}
	case FormatTable:
		fallthrough
	default:
		return &tableFormatter{config: cfg, styles: newStyles(cfg.Color)}
	}
}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON, FormatSimple:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q: must be table, json, or simple", s)
	}
}

// ColorEnabled reports whether styled output should be written to w:
// colour must be enabled and w must be a terminal.
func ColorEnabled(enabled bool, w io.Writer) bool {
	if !enabled {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// styles renders text unchanged when colour is disabled.
type styles struct {
	enabled bool
	title   lipgloss.Style
	header  lipgloss.Style
	muted   lipgloss.Style
}

func newStyles(color bool) styles {
	return styles{
		enabled: color,
		title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorAccent)),
		header:  lipgloss.NewStyle().Bold(true),
		muted:   lipgloss.NewStyle().Foreground(lipgloss.Color(colorMuted)),
	}
}

func (s styles) render(style lipgloss.Style, text string) string {
	if !s.enabled {
		return text
	}
	return style.Render(text)
}

// formatNumber formats a number with thousand separators.
func formatNumber(n int) string {
	if n < 0 {
		return "-" + formatNumber(-n)
	}
	s := strconv.Itoa(n)
	if n < 1000 {
		return s
	}

	var b strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return b.String()
}

// formatFloat formats a float with specified precision.
func formatFloat(f float64, precision int) string {
	return strconv.FormatFloat(f, 'f', precision, 64)
}

// formatHours formats an hour amount like "12.5h".
func formatHours(h float64) string {
	return formatFloat(h, 1) + "h"
}

// formatMinutes formats a minute amount like "1h 30m" or "45m".
func formatMinutes(m int) string {
	if m < 60 {
		return fmt.Sprintf("%dm", m)
	}
	if m%60 == 0 {
		return fmt.Sprintf("%dh", m/60)
	}
	return fmt.Sprintf("%dh %dm", m/60, m%60)
}

// formatHour formats an hour of day like "09:00".
func formatHour(h int) string {
	return fmt.Sprintf("%02d:00", h)
}

// progressBar renders percent (0-100) as a fixed-width bar.
func progressBar(percent float64, width int) string {
	filled := int(percent / 100 * float64(width))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}

// writeHeader writes a section header.
func writeHeader(w io.Writer, title string, compact bool, st styles) error {
	if compact {
		_, err := fmt.Fprintf(w, "%s\n", st.render(st.title, title))
		return err
	}

	separator := st.render(st.muted, strings.Repeat("=", len(title)))
	_, err := fmt.Fprintf(w, "\n%s\n%s\n\n", st.render(st.title, title), separator)
	return err
}
