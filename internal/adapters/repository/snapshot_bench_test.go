package repository

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/okian/plantmetrics/internal/domain/dataset"
	"github.com/okian/plantmetrics/internal/domain/model"
)

func benchDataset(plants, days int) *dataset.Dataset {
	recs := make([]model.ProcessedRecord, 0, plants*days)
	for d := 1; d <= days; d++ {
		date := fmt.Sprintf("%02d-Oct-25", d)
		for p := 0; p < plants; p++ {
			recs = append(recs, model.ProcessedRecord{
				RawRecord: model.RawRecord{Plant: fmt.Sprintf("P%03d", p), Date: date},
				SEC:       float64(p%7) + 0.1,
			})
		}
	}
	return dataset.New(recs)
}

func BenchmarkSnapshotLookup(b *testing.B) {
	s := NewSnapshotStore()
	s.SwapIfNewer(benchDataset(100, 30), 1)

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			ds := s.Current().Dataset
			_ = ds.Lookup("15-Oct-25", fmt.Sprintf("P%03d", i%100))
			i++
		}
	})
}

func BenchmarkSnapshotRangeDuringSwaps(b *testing.B) {
	s := NewSnapshotStore()
	a, c := benchDataset(100, 30), benchDataset(50, 30)
	var seq atomic.Uint64

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			if i%100 == 0 {
				next := a
				if i%200 == 0 {
					next = c
				}
				s.SwapIfNewer(next, seq.Add(1))
			}
			_, _ = s.Current().Dataset.Range("15-Oct-25", dataset.KPISEC)
			i++
		}
	})
}
