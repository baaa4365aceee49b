package ingest

import "errors"

var (
	// ErrNoDirs is returned when no import directories are configured.
	ErrNoDirs = errors.New("no import directories configured")

	// ErrIngesterClosed is returned when operations are attempted on a
	// closed ingester.
	ErrIngesterClosed = errors.New("ingester is closed")

	// ErrInvalidConfig is returned when required dependencies are missing.
	ErrInvalidConfig = errors.New("invalid ingest configuration")
)
