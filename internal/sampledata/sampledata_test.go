package sampledata_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/plantmetrics/internal/adapters/ingest"
	"github.com/okian/plantmetrics/internal/domain/parser"
	"github.com/okian/plantmetrics/internal/domain/processor"
	"github.com/okian/plantmetrics/internal/sampledata"
)

func TestGenerate(t *testing.T) {
	start := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)

	Convey("Given a seeded config", t, func() {
		cfg := sampledata.Config{Plants: 3, Days: 4, Start: start, Seed: 42}
		recs := sampledata.Generate(cfg)

		Convey("Then it yields plants x days records ordered by date", func() {
			So(recs, ShouldHaveLength, 12)
			So(recs[0].Date, ShouldEqual, "01-Feb-24")
			So(recs[2].Date, ShouldEqual, "01-Feb-24")
			So(recs[3].Date, ShouldEqual, "02-Feb-24")
			So(recs[11].Date, ShouldEqual, "04-Feb-24")
			So(recs[0].Plant, ShouldEqual, sampledata.PlantName(42, 0))
			So(recs[3].Plant, ShouldEqual, recs[0].Plant)
		})

		Convey("Then the same seed reproduces the sheet", func() {
			So(sampledata.Generate(cfg), ShouldResemble, recs)
		})

		Convey("Then a different seed changes it", func() {
			cfg.Seed = 7
			So(sampledata.Generate(cfg)[0].GasBoiler, ShouldNotEqual, recs[0].GasBoiler)
		})

		Convey("Then KPIs land in a plausible range", func() {
			for _, r := range recs {
				p := processor.Process(r)
				So(p.TotalEnergyExpended, ShouldBeGreaterThan, 0)
				So(p.EII, ShouldBeBetween, 80, 120)
			}
		})
	})

	Convey("Given an empty config", t, func() {
		recs := sampledata.Generate(sampledata.Config{})

		Convey("Then defaults apply", func() {
			So(recs, ShouldHaveLength, sampledata.DefaultPlants*sampledata.DefaultDays)
		})
	})
}

func TestWriters(t *testing.T) {
	start := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
	recs := sampledata.Generate(sampledata.Config{Plants: 2, Days: 3, Start: start, Seed: 1})
	dec := ingest.NewDecoder()

	Convey("Given generated records", t, func() {
		Convey("When written as CSV", func() {
			var buf bytes.Buffer
			So(sampledata.WriteCSV(&buf, recs), ShouldBeNil)

			Convey("Then the header is the full schema", func() {
				first := strings.SplitN(buf.String(), "\n", 2)[0]
				So(first, ShouldEqual, strings.Join(parser.Headers(), ","))
			})

			Convey("Then decoding reproduces the records", func() {
				table, err := dec.Decode(context.Background(), "sample.csv", buf.Bytes())
				So(err, ShouldBeNil)
				So(table.Rows, ShouldHaveLength, len(recs))
				for i, row := range table.Rows {
					So(parser.Parse(row), ShouldResemble, recs[i])
				}
			})
		})

		Convey("When written as XLSX", func() {
			var buf bytes.Buffer
			So(sampledata.WriteXLSX(&buf, recs), ShouldBeNil)

			Convey("Then decoding reads date cells back to canonical dates", func() {
				table, err := dec.Decode(context.Background(), "sample.xlsx", buf.Bytes())
				So(err, ShouldBeNil)
				So(table.Format, ShouldEqual, ingest.FormatXLSX)
				So(table.Sheet, ShouldEqual, sampledata.SheetName)
				So(table.Rows, ShouldHaveLength, len(recs))
				for i, row := range table.Rows {
					got := parser.Parse(row)
					So(got.Date, ShouldEqual, recs[i].Date)
					So(got.Plant, ShouldEqual, recs[i].Plant)
					So(got.GasBoiler, ShouldAlmostEqual, recs[i].GasBoiler, 1e-9)
				}
			})
		})
	})
}
