package ingest_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/okian/plantmetrics/internal/adapters/ingest"
	"github.com/okian/plantmetrics/internal/domain/parser"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/xuri/excelize/v2"
)

const sampleCSV = "\xEF\xBB\xBFPlant,Date,Gas Boiler,HSD Pumps,Comments\n" +
	"A,01-Oct-25,100,10,ok\n" +
	"solo\n" +
	",,,,\n" +
	"\"B, East\",45931,\"1,200\",,\n"

func workbook(rows ...[]any) []byte {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &r); err != nil {
			panic(err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func TestDetectFormat(t *testing.T) {
	Convey("DetectFormat", t, func() {
		f, err := ingest.DetectFormat("plants.CSV", nil)
		So(err, ShouldBeNil)
		So(f, ShouldEqual, ingest.FormatCSV)

		f, _ = ingest.DetectFormat("plants.xlsx", nil)
		So(f, ShouldEqual, ingest.FormatXLSX)

		f, _ = ingest.DetectFormat("", []byte("PK\x03\x04rest"))
		So(f, ShouldEqual, ingest.FormatXLSX)

		f, _ = ingest.DetectFormat("", []byte("Plant,Date"))
		So(f, ShouldEqual, ingest.FormatCSV)

		_, err = ingest.DetectFormat("plants.pdf", nil)
		So(errors.Is(err, ingest.ErrUnsupportedFormat), ShouldBeTrue)

		_, err = ingest.ParseFormat("ods")
		So(errors.Is(err, ingest.ErrUnsupportedFormat), ShouldBeTrue)
	})
}

func TestDecodeCSV(t *testing.T) {
	ctx := context.Background()

	Convey("Given a CSV payload with messy rows", t, func() {
		table, err := ingest.NewDecoder().Decode(ctx, "plants.csv", []byte(sampleCSV))
		So(err, ShouldBeNil)

		Convey("Then the header is read without the byte order mark", func() {
			So(table.Format, ShouldEqual, ingest.FormatCSV)
			So(table.Header[0], ShouldEqual, "Plant")
			So(table.Report.Unknown, ShouldResemble, []string{"Comments"})
		})

		Convey("And short and blank rows are skipped", func() {
			So(table.RowsRead, ShouldEqual, 4)
			So(table.Skipped, ShouldEqual, 2)
			So(len(table.Rows), ShouldEqual, 2)
		})

		Convey("And quoted cells survive into the parser", func() {
			rec := parser.Parse(table.Rows[1])
			So(rec.Plant, ShouldEqual, "B, East")
			So(rec.Date, ShouldEqual, "01-Oct-25")
			So(rec.GasBoiler, ShouldEqual, 1200)
			So(rec.HSDPumps, ShouldEqual, 0)
		})
	})

	Convey("Given a header-only CSV", t, func() {
		table, err := ingest.NewDecoder().Decode(ctx, "empty.csv", []byte("Plant,Date,Gas Boiler\n"))
		So(err, ShouldBeNil)
		So(table.Rows, ShouldBeEmpty)
	})

	Convey("Given payloads that must be rejected", t, func() {
		d := ingest.NewDecoder(ingest.WithMaxBytes(64))

		_, err := d.Decode(ctx, "x.csv", nil)
		So(errors.Is(err, ingest.ErrNoHeader), ShouldBeTrue)

		_, err = d.Decode(ctx, "x.csv", []byte("foo,bar\n1,2\n"))
		So(errors.Is(err, ingest.ErrUnrecognizedHeader), ShouldBeTrue)

		_, err = d.Decode(ctx, "x.csv", []byte(strings.Repeat("a", 65)))
		So(errors.Is(err, ingest.ErrTooLarge), ShouldBeTrue)
	})

	Convey("Given a cancelled context", t, func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := ingest.NewDecoder().Decode(cctx, "plants.csv", []byte(sampleCSV))
		So(errors.Is(err, context.Canceled), ShouldBeTrue)
	})
}

func TestDecodeXLSX(t *testing.T) {
	ctx := context.Background()

	Convey("Given a workbook with typed cells", t, func() {
		data := workbook(
			[]any{"Plant", "Date", "Gas Boiler", "Oil Produced"},
			[]any{"A", 45901, 100.5, 3},
			[]any{"B", time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC), "n/a", 4},
		)
		table, err := ingest.NewDecoder().Decode(ctx, "plants.xlsx", data)
		So(err, ShouldBeNil)

		Convey("Then the first sheet is read", func() {
			So(table.Format, ShouldEqual, ingest.FormatXLSX)
			So(table.Sheet, ShouldEqual, "Sheet1")
			So(len(table.Rows), ShouldEqual, 2)
		})

		Convey("And date cells arrive as serials and normalise", func() {
			a := parser.Parse(table.Rows[0])
			So(a.Date, ShouldEqual, "01-Sep-25")
			So(a.GasBoiler, ShouldEqual, 100.5)
			So(a.OilProduced, ShouldEqual, 3)

			b := parser.Parse(table.Rows[1])
			So(b.Date, ShouldEqual, "01-Oct-25")
			So(b.GasBoiler, ShouldEqual, 0)
		})
	})

	Convey("Given content sniffing without an extension", t, func() {
		data := workbook([]any{"Plant", "Date"}, []any{"A", "01-Oct-25"})
		table, err := ingest.NewDecoder().Decode(ctx, "", data)
		So(err, ShouldBeNil)
		So(table.Format, ShouldEqual, ingest.FormatXLSX)
	})

	Convey("Given a corrupt workbook", t, func() {
		_, err := ingest.NewDecoder().Decode(ctx, "broken.xlsx", []byte("PK\x03\x04not really a zip"))
		So(errors.Is(err, ingest.ErrCorrupt), ShouldBeTrue)
	})
}
