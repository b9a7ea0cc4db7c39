package ingest

import "errors"

// Sentinel kinds for ingestion errors. Any of them rejects the whole upload.
var (
	ErrUnsupportedFormat  = errors.New("unsupported file format")
	ErrCorrupt            = errors.New("unreadable tabular payload")
	ErrNoHeader           = errors.New("no header row")
	ErrUnrecognizedHeader = errors.New("header matches no known column")
	ErrTooLarge           = errors.New("payload exceeds size limit")
)
