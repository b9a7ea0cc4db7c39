package model

import "time"

// Upload is a tabular payload waiting to be ingested.
type Upload struct {
	JobID       string
	Seq         uint64 // submission order; newer uploads win the swap
	Name        string // original file name, used for format detection
	Data        []byte
	Checksum    string // hex SHA-256 of Data
	SubmittedAt time.Time
}

// JobStatus tracks an upload through ingestion.
type JobStatus string

// Job lifecycle states.
const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
)

// Done reports whether s is terminal.
func (s JobStatus) Done() bool {
	return s == JobSucceeded || s == JobFailed
}
