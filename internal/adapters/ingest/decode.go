// Package ingest decodes uploaded CSV and XLSX payloads into schema rows.
package ingest

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/okian/plantmetrics/internal/domain/model"
	"github.com/okian/plantmetrics/internal/domain/parser"
	"github.com/xuri/excelize/v2"
)

// ctxCheckEvery sets how many rows are read between cancellation checks.
const ctxCheckEvery = 256

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Table is a decoded payload. Rows hold every data row that survived the
// length check, in file order.
type Table struct {
	Format   Format
	Sheet    string
	Header   []string
	Report   model.HeaderReport
	Rows     []parser.Row
	RowsRead int // data rows seen, excluding the header
	Skipped  int
}

// Decoder turns raw bytes into a Table.
type Decoder struct {
	maxBytes int64
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithMaxBytes rejects payloads larger than n bytes. n <= 0 disables the limit.
func WithMaxBytes(n int64) Option {
	return func(d *Decoder) { d.maxBytes = n }
}

// NewDecoder returns a Decoder.
func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Decode detects the format of data and decodes it.
func (d *Decoder) Decode(ctx context.Context, name string, data []byte) (Table, error) {
	f, err := DetectFormat(name, data)
	if err != nil {
		return Table{}, err
	}
	return d.DecodeFormat(ctx, f, data)
}

// DecodeFormat decodes data as f. The header must match at least one schema
// column; nothing is returned on error.
func (d *Decoder) DecodeFormat(ctx context.Context, f Format, data []byte) (Table, error) {
	if d.maxBytes > 0 && int64(len(data)) > d.maxBytes {
		return Table{}, fmt.Errorf("%w: %d > %d bytes", ErrTooLarge, len(data), d.maxBytes)
	}

	var (
		records [][]string
		sheet   string
		err     error
	)
	switch f {
	case FormatCSV:
		records, err = readCSV(ctx, data)
	case FormatXLSX:
		sheet, records, err = readXLSX(data)
	default:
		return Table{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
	if err != nil {
		return Table{}, err
	}
	if len(records) == 0 {
		return Table{}, ErrNoHeader
	}

	t := Table{Format: f, Sheet: sheet, Header: trimAll(records[0])}
	t.Report = parser.ValidateHeader(t.Header)
	if !t.Report.Recognized() {
		return Table{}, fmt.Errorf("%w: %s", ErrUnrecognizedHeader, strings.Join(t.Header, ", "))
	}

	for i, values := range records[1:] {
		if i%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return Table{}, err
			}
		}
		t.RowsRead++
		if blank(values) {
			t.Skipped++
			continue
		}
		row, ok := parser.RowFromValues(t.Header, values)
		if !ok {
			t.Skipped++
			continue
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func readCSV(ctx context.Context, data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	var out [][]string
	for n := 0; ; n++ {
		if n%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		out = append(out, rec)
	}
}

// readXLSX reads the first sheet with raw cell values, so dates arrive as
// day serials and numbers keep full precision.
func readXLSX(data []byte) (string, [][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", nil, ErrNoHeader
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	// Leading empty rows carry no header.
	for len(rows) > 0 && blank(rows[0]) {
		rows = rows[1:]
	}
	return sheets[0], rows, nil
}

func trimAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.TrimSpace(s)
	}
	return out
}

func blank(values []string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
