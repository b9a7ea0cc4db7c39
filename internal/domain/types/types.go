// Package types contains the JSON views returned by the API.
package types

import (
	"time"

	"github.com/okian/plantmetrics/internal/domain/dataset"
	"github.com/okian/plantmetrics/internal/domain/model"
	"github.com/okian/plantmetrics/internal/domain/units"
)

// RangeEntry is one end of a KPI range.
type RangeEntry struct {
	Plant string  `json:"plant"`
	Value float64 `json:"value"`
}

// RangeView is the min/max of a KPI on a date.
type RangeView struct {
	Date  string     `json:"date"`
	KPI   string     `json:"kpi"`
	Count int        `json:"count"`
	Min   RangeEntry `json:"min"`
	Max   RangeEntry `json:"max"`
}

// NewRangeView flattens r.
func NewRangeView(r dataset.Range) RangeView {
	return RangeView{
		Date:  r.Date,
		KPI:   string(r.KPI),
		Count: r.Count,
		Min:   RangeEntry{Plant: r.Min.Plant, Value: r.KPI.Value(r.Min)},
		Max:   RangeEntry{Plant: r.Max.Plant, Value: r.KPI.Value(r.Max)},
	}
}

// RecordsView lists records in a display unit.
type RecordsView struct {
	Date    string                  `json:"date,omitempty"`
	Unit    units.EnergyUnit        `json:"unit"`
	Records []model.ProcessedRecord `json:"records"`
}

// NewRecordsView converts recs to u without touching the originals.
func NewRecordsView(date string, recs []model.ProcessedRecord, u units.EnergyUnit) RecordsView {
	return RecordsView{Date: date, Unit: u, Records: InUnit(recs, u)}
}

// PeersView is a record with the other plants reporting on its date.
type PeersView struct {
	Date   string                  `json:"date"`
	Plant  string                  `json:"plant"`
	Unit   units.EnergyUnit        `json:"unit"`
	Record model.ProcessedRecord   `json:"record"`
	Peers  []model.ProcessedRecord `json:"peers"`
}

// NewPeersView converts an analysis context to u.
func NewPeersView(date, plant string, ctx dataset.AnalysisContext, u units.EnergyUnit) PeersView {
	return PeersView{
		Date:   date,
		Plant:  plant,
		Unit:   u,
		Record: ctx.Record.InUnit(u),
		Peers:  InUnit(ctx.Peers, u),
	}
}

// InUnit returns converted copies of recs. The result is never nil.
func InUnit(recs []model.ProcessedRecord, u units.EnergyUnit) []model.ProcessedRecord {
	out := make([]model.ProcessedRecord, len(recs))
	for i, r := range recs {
		out[i] = r.InUnit(u)
	}
	return out
}

// ReportView is the JSON form of an ingestion report.
type ReportView struct {
	DatasetID         string             `json:"dataset_id"`
	Source            string             `json:"source"`
	Format            string             `json:"format"`
	RowsRead          int                `json:"rows_read"`
	RowsSkipped       int                `json:"rows_skipped"`
	Records           int                `json:"records"`
	DuplicatesDropped int                `json:"duplicates_dropped"`
	Dates             int                `json:"dates"`
	Plants            int                `json:"plants"`
	Header            model.HeaderReport `json:"header"`
	Warnings          []string           `json:"warnings,omitempty"`
	Swapped           bool               `json:"swapped"`
	DurationMS        float64            `json:"duration_ms"`
}

// NewReportView renders r.
func NewReportView(r model.IngestReport) ReportView {
	return ReportView{
		DatasetID:         r.DatasetID,
		Source:            r.Source,
		Format:            r.Format,
		RowsRead:          r.RowsRead,
		RowsSkipped:       r.RowsSkipped,
		Records:           r.Records,
		DuplicatesDropped: r.DuplicatesDropped,
		Dates:             r.Dates,
		Plants:            r.Plants,
		Header:            r.Header,
		Warnings:          r.Warnings,
		Swapped:           r.Swapped,
		DurationMS:        float64(r.Duration.Microseconds()) / 1000,
	}
}

// JobView is the JSON form of an upload job.
type JobView struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Status      model.JobStatus `json:"status"`
	Checksum    string          `json:"checksum"`
	Size        int             `json:"size"`
	Error       string          `json:"error,omitempty"`
	SubmittedAt time.Time       `json:"submitted_at"`
	StartedAt   *time.Time      `json:"started_at,omitempty"`
	FinishedAt  *time.Time      `json:"finished_at,omitempty"`
	Duplicate   bool            `json:"duplicate,omitempty"`
	Report      *ReportView     `json:"report,omitempty"`
}

// NewJobView renders j.
func NewJobView(j model.Job) JobView {
	v := JobView{
		ID:          j.ID,
		Name:        j.Name,
		Status:      j.Status,
		Checksum:    j.Checksum,
		Size:        j.Size,
		Error:       j.Error,
		SubmittedAt: j.SubmittedAt,
		StartedAt:   optionalTime(j.StartedAt),
		FinishedAt:  optionalTime(j.FinishedAt),
	}
	if j.Report != nil {
		rv := NewReportView(*j.Report)
		v.Report = &rv
	}
	return v
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
