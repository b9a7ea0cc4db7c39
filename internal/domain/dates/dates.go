// Package dates normalises the date column of plant records into the
// canonical DD-Mon-YY form and orders those strings chronologically.
package dates

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	// SerialThreshold is the smallest spreadsheet serial accepted as a date.
	// Values at or below it are treated as ordinary numbers.
	SerialThreshold = 30000

	// MaxSerial is the spreadsheet serial of 31-Dec-9999, the last day a
	// spreadsheet can represent.
	MaxSerial = 2958465

	// serialUnixEpoch is the spreadsheet serial of 1970-01-01.
	serialUnixEpoch = 25569

	msPerDay = 86400 * 1000

	// dayShift moves a moment to the middle of its day before the calendar
	// fields are read, so offsets up to 12h never roll the date back.
	dayShift = 12 * time.Hour

	// SentinelKey is the sort key of a string that is not a canonical date.
	SentinelKey int64 = 0
)

var monthAbbr = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

var monthIndex = func() map[string]time.Month {
	m := make(map[string]time.Month, len(monthAbbr))
	for i, abbr := range monthAbbr {
		m[strings.ToLower(abbr)] = time.Month(i + 1)
	}
	return m
}()

// Layouts accepted for text dates, tried in order. Slash layouts are day-first.
var layouts = []string{
	"02-Jan-06",
	"2-Jan-06",
	"02-Jan-2006",
	"2-Jan-2006",
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"02/01/06",
	"2/1/06",
	"2006/01/02",
	"02 Jan 2006",
	"Jan 2, 2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// Normalize converts a date cell into the canonical "DD-Mon-YY" string.
// It reports false when v cannot represent a date: nil, empty text, a zero
// time, or a number too small to be a spreadsheet serial.
func Normalize(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case time.Time:
		return FromTime(x)
	case *time.Time:
		if x == nil {
			return "", false
		}
		return FromTime(*x)
	case string:
		return FromString(x)
	case float64:
		return FromSerial(x)
	case float32:
		return FromSerial(float64(x))
	case int:
		return FromSerial(float64(x))
	case int32:
		return FromSerial(float64(x))
	case int64:
		return FromSerial(float64(x))
	case uint:
		return FromSerial(float64(x))
	case uint32:
		return FromSerial(float64(x))
	case uint64:
		return FromSerial(float64(x))
	default:
		return FromString(fmt.Sprint(v))
	}
}

// FromTime shifts t forward 12 hours and formats the resulting calendar day
// in t's own location.
func FromTime(t time.Time) (string, bool) {
	if t.IsZero() {
		return "", false
	}
	return Format(t.Add(dayShift)), true
}

// FromSerial converts a spreadsheet day serial (days since 1899-12-30).
func FromSerial(serial float64) (string, bool) {
	if math.IsNaN(serial) || math.IsInf(serial, 0) || serial <= SerialThreshold || serial > MaxSerial {
		return "", false
	}
	ms := math.Round((serial-serialUnixEpoch)*msPerDay) + float64(dayShift.Milliseconds())
	return Format(time.UnixMilli(int64(ms)).UTC()), true
}

// FromString normalises text. Numeric text is read as a serial, known
// layouts are reformatted, and any other non-empty text passes through.
func FromString(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return FromSerial(f)
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return FromTime(t)
		}
	}
	return s, true
}

// Format renders the calendar day of t as DD-Mon-YY.
func Format(t time.Time) string {
	y, m, d := t.Date()
	return fmt.Sprintf("%02d-%s-%02d", d, monthAbbr[m-1], y%100)
}

// SortKey parses a canonical date into UTC-midday Unix milliseconds. Two-digit
// years are placed in the 2000s. Anything that is not three dash-separated
// segments with a known month and a day that exists in that month returns
// SentinelKey.
func SortKey(s string) int64 {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 {
		return SentinelKey
	}
	day, err := strconv.Atoi(parts[0])
	if err != nil || day < 1 || day > 31 {
		return SentinelKey
	}
	month, ok := monthIndex[strings.ToLower(parts[1])]
	if !ok {
		return SentinelKey
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil || year < 0 {
		return SentinelKey
	}
	if year < 100 {
		year += 2000
	}
	t := time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
	if t.Day() != day {
		return SentinelKey
	}
	return t.UnixMilli()
}

// Less orders two date strings chronologically.
func Less(a, b string) bool {
	return SortKey(a) < SortKey(b)
}
