package parser

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/okian/plantmetrics/internal/domain/dates"
	"github.com/okian/plantmetrics/internal/domain/model"
)

// Row is a single input row keyed by header label.
type Row map[string]any

// minValues is the shortest delimited row worth parsing.
const minValues = 2

// thousands matches numbers grouped with commas, e.g. "12,345.6". Any other
// comma makes the text unparseable.
var thousands = regexp.MustCompile(`^[+-]?\d{1,3}(,\d{3})+(\.\d+)?$`)

// SafeFloat coerces a cell to a finite float. Numbers pass through, text is
// parsed, and everything else yields 0.
func SafeFloat(v any) float64 {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint:
		f = float64(x)
	case uint32:
		f = float64(x)
	case uint64:
		f = float64(x)
	case string:
		s := strings.TrimSpace(x)
		if strings.Contains(s, ",") {
			if !thousands.MatchString(s) {
				return 0
			}
			s = strings.ReplaceAll(s, ",", "")
		}
		if s == "" {
			return 0
		}
		p, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		f = p
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// Parse maps row onto a RawRecord. It never fails.
func Parse(row Row) model.RawRecord {
	rec := model.RawRecord{
		Plant: plantName(row[HeaderPlant]),
		Date:  model.UnknownDate,
	}
	if d, ok := dates.Normalize(row[HeaderDate]); ok {
		rec.Date = d
	}
	for _, c := range columns {
		c.set(&rec, SafeFloat(row[c.Header]))
	}
	return rec
}

func plantName(v any) string {
	var s string
	switch x := v.(type) {
	case nil:
		return model.UnknownPlant
	case string:
		s = x
	case float64:
		s = strconv.FormatFloat(x, 'f', -1, 64)
	default:
		s = fmt.Sprint(x)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return model.UnknownPlant
	}
	return s
}

// RowFromValues zips a delimited row with its header. The header labels are
// trimmed. Rows with fewer than two values are rejected.
func RowFromValues(header []string, values []string) (Row, bool) {
	if len(values) < minValues {
		return nil, false
	}
	row := make(Row, len(header))
	for i, h := range header {
		if i >= len(values) {
			break
		}
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		row[h] = values[i]
	}
	return row, true
}

// ValidateHeader compares header against the schema once per ingestion.
func ValidateHeader(header []string) model.HeaderReport {
	var rep model.HeaderReport
	seen := make(map[string]struct{}, len(header))
	for _, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		if _, dup := seen[h]; dup {
			continue
		}
		seen[h] = struct{}{}
		if Known(h) {
			rep.Matched = append(rep.Matched, h)
		} else {
			rep.Unknown = append(rep.Unknown, h)
		}
	}
	for _, h := range Headers() {
		if _, ok := seen[h]; !ok {
			rep.Missing = append(rep.Missing, h)
		}
	}
	return rep
}
