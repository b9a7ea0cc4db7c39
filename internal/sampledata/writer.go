package sampledata

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/okian/plantmetrics/internal/domain/model"
	"github.com/okian/plantmetrics/internal/domain/parser"
)

// SheetName is the worksheet WriteXLSX fills.
const SheetName = "Plants"

// canonicalLayout matches the normalised date form.
const canonicalLayout = "02-Jan-06"

// WriteCSV writes recs with the full schema header.
func WriteCSV(w io.Writer, recs []model.RawRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(parser.Headers()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	cols := parser.Schema()
	row := make([]string, 0, len(cols)+2)
	for i := range recs {
		row = append(row[:0], recs[i].Plant, recs[i].Date)
		for _, c := range cols {
			row = append(row, strconv.FormatFloat(c.Get(&recs[i]), 'f', -1, 64))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes recs as a single-sheet workbook. Dates in canonical form
// are stored as date cells so readers see spreadsheet serials.
func WriteXLSX(w io.Writer, recs []model.RawRecord) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}
	style, err := f.NewStyle(&excelize.Style{NumFmt: 15}) // d-mmm-yy
	if err != nil {
		return fmt.Errorf("date style: %w", err)
	}

	headers := parser.Headers()
	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	cols := parser.Schema()
	for i := range recs {
		row := make([]any, 0, len(cols)+2)
		row = append(row, recs[i].Plant)
		if t, err := time.Parse(canonicalLayout, recs[i].Date); err == nil {
			row = append(row, t)
		} else {
			row = append(row, recs[i].Date)
		}
		for _, c := range cols {
			row = append(row, c.Get(&recs[i]))
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	if len(recs) > 0 {
		last, err := excelize.CoordinatesToCellName(2, len(recs)+1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(SheetName, "B2", last, style); err != nil {
			return fmt.Errorf("style dates: %w", err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
