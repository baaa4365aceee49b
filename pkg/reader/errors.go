package reader

import "errors"

var (
	// ErrNoPositionStore is returned by New without a PositionStore.
	ErrNoPositionStore = errors.New("reader: position store is required")

	// ErrNoParser is returned by New without a Parser.
	ErrNoParser = errors.New("reader: parser is required")

	// ErrFileNotFound is returned when an import file no longer exists.
	ErrFileNotFound = errors.New("import file not found")

	// ErrPermissionDenied is returned when an import file cannot be opened.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrFileTooLarge is returned when a file exceeds Config.MaxFileSize.
	ErrFileTooLarge = errors.New("import file exceeds maximum size")

	// ErrInvalidOffset is returned for a negative offset.
	ErrInvalidOffset = errors.New("invalid offset")

	// ErrReaderClosed is returned when using a closed reader.
	ErrReaderClosed = errors.New("reader is closed")
)
