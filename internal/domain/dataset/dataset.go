// Package dataset indexes a batch of processed records. A Dataset is built
// once and never mutated, so it can be shared freely across goroutines.
package dataset

import (
	"slices"
	"time"

	"github.com/okian/plantmetrics/internal/domain/dates"
	"github.com/okian/plantmetrics/internal/domain/model"
)

// Dataset is an immutable collection with at most one record per (date, plant).
type Dataset struct {
	id         string
	source     string
	createdAt  time.Time
	records    []model.ProcessedRecord
	index      map[model.Key]int
	byDate     map[string][]int
	dates      []string
	plants     int
	duplicates int
}

// Option configures a Dataset at construction.
type Option func(*Dataset)

// WithID tags the dataset.
func WithID(id string) Option { return func(d *Dataset) { d.id = id } }

// WithSource records where the data came from.
func WithSource(s string) Option { return func(d *Dataset) { d.source = s } }

// WithCreatedAt sets the build time. Defaults to time.Now.
func WithCreatedAt(t time.Time) Option { return func(d *Dataset) { d.createdAt = t } }

// New indexes records. A later record for an already seen (date, plant)
// replaces the earlier one in place; Duplicates reports how many were dropped.
func New(records []model.ProcessedRecord, opts ...Option) *Dataset {
	d := &Dataset{
		createdAt: time.Now(),
		records:   make([]model.ProcessedRecord, 0, len(records)),
		index:     make(map[model.Key]int, len(records)),
		byDate:    make(map[string][]int),
	}
	for _, o := range opts {
		o(d)
	}

	plants := make(map[string]struct{})
	for _, r := range records {
		k := r.Key()
		if i, ok := d.index[k]; ok {
			d.records[i] = r
			d.duplicates++
			continue
		}
		i := len(d.records)
		d.index[k] = i
		d.records = append(d.records, r)
		if _, seen := d.byDate[r.Date]; !seen {
			d.dates = append(d.dates, r.Date)
		}
		d.byDate[r.Date] = append(d.byDate[r.Date], i)
		plants[r.Plant] = struct{}{}
	}
	d.plants = len(plants)

	slices.SortStableFunc(d.dates, func(a, b string) int {
		ka, kb := dates.SortKey(a), dates.SortKey(b)
		switch {
		case ka < kb:
			return -1
		case ka > kb:
			return 1
		default:
			return 0
		}
	})
	return d
}

// Empty returns a dataset with no records.
func Empty() *Dataset { return New(nil) }

// ID returns the dataset tag.
func (d *Dataset) ID() string { return d.id }

// Source returns the origin label.
func (d *Dataset) Source() string { return d.source }

// CreatedAt returns the build time.
func (d *Dataset) CreatedAt() time.Time { return d.createdAt }

// Len returns the number of unique records.
func (d *Dataset) Len() int { return len(d.records) }

// Duplicates returns how many input records were replaced by a later row.
func (d *Dataset) Duplicates() int { return d.duplicates }

// Records returns a copy of all records in dataset order.
func (d *Dataset) Records() []model.ProcessedRecord {
	return slices.Clone(d.records)
}

// Dates returns the unique dates in chronological order. Malformed dates
// sort first.
func (d *Dataset) Dates() []string {
	return slices.Clone(d.dates)
}

// RecordsOn returns the records for date in dataset order.
func (d *Dataset) RecordsOn(date string) []model.ProcessedRecord {
	idx := d.byDate[date]
	out := make([]model.ProcessedRecord, len(idx))
	for i, j := range idx {
		out[i] = d.records[j]
	}
	return out
}

// Plants returns the plant names reporting on date in dataset order.
func (d *Dataset) Plants(date string) []string {
	idx := d.byDate[date]
	out := make([]string, len(idx))
	for i, j := range idx {
		out[i] = d.records[j].Plant
	}
	return out
}

// Lookup returns the record for (date, plant), or a placeholder.
func (d *Dataset) Lookup(date, plant string) model.ProcessedRecord {
	if i, ok := d.index[model.Key{Date: date, Plant: plant}]; ok {
		return d.records[i]
	}
	return model.Placeholder(date, plant)
}

// Has reports whether (date, plant) is present.
func (d *Dataset) Has(date, plant string) bool {
	_, ok := d.index[model.Key{Date: date, Plant: plant}]
	return ok
}

// Range holds the extremes of a KPI on one date.
type Range struct {
	KPI   KPI
	Date  string
	Min   model.ProcessedRecord
	Max   model.ProcessedRecord
	Count int // records with a positive value
}

// Range scans the records on date with a strictly positive value for kpi.
// It reports false when none qualify.
func (d *Dataset) Range(date string, kpi KPI) (Range, bool) {
	r := Range{KPI: kpi, Date: date}
	var lo, hi float64
	for _, j := range d.byDate[date] {
		rec := d.records[j]
		v := kpi.Value(rec)
		if !(v > 0) {
			continue
		}
		if r.Count == 0 || v < lo {
			lo, r.Min = v, rec
		}
		if r.Count == 0 || v > hi {
			hi, r.Max = v, rec
		}
		r.Count++
	}
	return r, r.Count > 0
}

// AnalysisContext is a record together with the other plants on its date.
type AnalysisContext struct {
	Record model.ProcessedRecord
	Peers  []model.ProcessedRecord
}

// Peers returns the record for (date, plant) and every other record on the
// same date.
func (d *Dataset) Peers(date, plant string) AnalysisContext {
	ctx := AnalysisContext{Record: d.Lookup(date, plant)}
	for _, j := range d.byDate[date] {
		if d.records[j].Plant == plant {
			continue
		}
		ctx.Peers = append(ctx.Peers, d.records[j])
	}
	return ctx
}

// Summary describes a dataset.
type Summary struct {
	ID                string    `json:"id"`
	Source            string    `json:"source,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	Records           int       `json:"records"`
	Dates             int       `json:"dates"`
	Plants            int       `json:"plants"`
	FirstDate         string    `json:"first_date,omitempty"`
	LastDate          string    `json:"last_date,omitempty"`
	DuplicatesDropped int       `json:"duplicates_dropped"`
}

// Summary returns the dataset's headline counts.
func (d *Dataset) Summary() Summary {
	s := Summary{
		ID:                d.id,
		Source:            d.source,
		CreatedAt:         d.createdAt,
		Records:           len(d.records),
		Dates:             len(d.dates),
		Plants:            d.plants,
		DuplicatesDropped: d.duplicates,
	}
	if n := len(d.dates); n > 0 {
		s.FirstDate = d.dates[0]
		s.LastDate = d.dates[n-1]
	}
	return s
}
