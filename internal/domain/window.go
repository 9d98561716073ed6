package domain

import (
	"fmt"
	"time"
)

// KST is Korea Standard Time. KMA timestamps carry no zone and are always KST.
var KST = time.FixedZone("KST", 9*60*60)

// WireLayout is the TM / tm1 / tm2 timestamp layout.
const WireLayout = "200601021504"

// YearMonth is a calendar month.
type YearMonth struct {
	Year  int
	Month time.Month
}

// ParseYearMonth parses "2024-01" (also accepts "202401").
func ParseYearMonth(s string) (YearMonth, error) {
	for _, layout := range []string{"2006-01", "200601"} {
		if t, err := time.Parse(layout, s); err == nil {
			return YearMonth{Year: t.Year(), Month: t.Month()}, nil
		}
	}
	return YearMonth{}, fmt.Errorf("invalid month %q: want YYYY-MM", s)
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// Compact renders YYYYMM, as used in output file names.
func (ym YearMonth) Compact() string {
	return fmt.Sprintf("%04d%02d", ym.Year, int(ym.Month))
}

// Before reports whether ym is strictly earlier than other.
func (ym YearMonth) Before(other YearMonth) bool {
	if ym.Year != other.Year {
		return ym.Year < other.Year
	}
	return ym.Month < other.Month
}

// Next returns the following month.
func (ym YearMonth) Next() YearMonth {
	if ym.Month == time.December {
		return YearMonth{Year: ym.Year + 1, Month: time.January}
	}
	return YearMonth{Year: ym.Year, Month: ym.Month + 1}
}

// MonthsBetween enumerates from..to inclusive in order. It is empty when from
// is after to.
func MonthsBetween(from, to YearMonth) []YearMonth {
	var months []YearMonth
	for m := from; !to.Before(m); m = m.Next() {
		months = append(months, m)
	}
	return months
}

// Window is a closed request interval.
type Window struct {
	Start time.Time
	End   time.Time
}

// MonthWindow returns the request window for ym: the first day at 00:00 to
// the last day at 23:00, KST.
func MonthWindow(ym YearMonth) Window {
	start := time.Date(ym.Year, ym.Month, 1, 0, 0, 0, 0, KST)

	// Day 28 plus 4 days always lands in the next month.
	next := time.Date(ym.Year, ym.Month, 28, 0, 0, 0, 0, KST).AddDate(0, 0, 4)
	first := time.Date(next.Year(), next.Month(), 1, 0, 0, 0, 0, KST)
	last := first.AddDate(0, 0, -1)
	end := time.Date(last.Year(), last.Month(), last.Day(), 23, 0, 0, 0, KST)

	return Window{Start: start, End: end}
}

// FormatWire renders t in KST using [WireLayout].
func FormatWire(t time.Time) string {
	return t.In(KST).Format(WireLayout)
}

// ParseWire parses a TM token as KST.
func ParseWire(s string) (time.Time, error) {
	t, err := time.ParseInLocation(WireLayout, s, KST)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}
