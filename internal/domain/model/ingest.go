package model

import "time"

// HeaderReport describes how an input header lines up with the schema.
type HeaderReport struct {
	Matched []string `json:"matched"`
	Missing []string `json:"missing,omitempty"`
	Unknown []string `json:"unknown,omitempty"`
}

// Recognized reports whether at least one schema column was found.
func (h HeaderReport) Recognized() bool { return len(h.Matched) > 0 }

// IngestReport summarises one successful ingestion.
type IngestReport struct {
	DatasetID         string
	Source            string
	Format            string
	RowsRead          int
	RowsSkipped       int
	Records           int
	DuplicatesDropped int
	Dates             int
	Plants            int
	Header            HeaderReport
	Warnings          []string
	Swapped           bool // false when a newer dataset was already active
	Duration          time.Duration
}

// Job is the lifecycle record of an upload.
type Job struct {
	ID          string
	Seq         uint64
	Name        string
	Checksum    string
	Size        int
	Status      JobStatus
	Error       string
	SubmittedAt time.Time
	StartedAt   time.Time
	FinishedAt  time.Time
	Report      *IngestReport
}
