package emulator

import (
	"strconv"
	"strings"
	"time"

	"github.com/twinflow/twinflow/internal/measure"
)

// TimeColumn picks the time column from a header: the first column
// containing "time", equal to "t", or containing "delta"
// (case-insensitive); otherwise the first column. Returns "" for an
// empty header.
func TimeColumn(columns []string) string {
	for _, c := range columns {
		lower := strings.ToLower(c)
		if strings.Contains(lower, "time") || lower == "t" || strings.Contains(lower, "delta") {
			return c
		}
	}
	if len(columns) == 0 {
		return ""
	}
	return columns[0]
}

// TimeValue extracts the time of a measurement in seconds from its
// recognized time column. Returns false when the column is absent or
// not interpretable as a time.
func TimeValue(m *measure.Measurement) (float64, bool) {
	column := TimeColumn(m.Columns())
	if column == "" {
		return 0, false
	}
	v, ok := m.Get(column)
	if !ok {
		return 0, false
	}
	switch x := v.(type) {
	case measure.Int:
		return float64(x), true
	case measure.Float:
		return float64(x), true
	case measure.Str:
		if secs, ok := ParseDaysDelta(string(x)); ok {
			return secs, true
		}
		return measure.AsFloat(x)
	default:
		return 0, false
	}
}

// ParseDaysDelta parses "D days HH:MM:SS.fff" into seconds
// (D·86400 + HH·3600 + MM·60 + SS.fff).
func ParseDaysDelta(s string) (float64, bool) {
	parts := strings.Split(s, " days ")
	if len(parts) != 2 {
		return 0, false
	}
	days, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, false
	}
	clock := strings.Split(strings.TrimSpace(parts[1]), ":")
	if len(clock) != 3 {
		return 0, false
	}
	hours, err := strconv.Atoi(clock[0])
	if err != nil {
		return 0, false
	}
	minutes, err := strconv.Atoi(clock[1])
	if err != nil {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(clock[2], 64)
	if err != nil {
		return 0, false
	}
	return float64(days)*86400 + float64(hours)*3600 + float64(minutes)*60 + seconds, true
}

// Duration is the default duration function between consecutive
// measurements: the absolute difference of the recognized time column
// when both measurements carry one, otherwise the index difference in
// seconds.
func Duration(last, current *measure.Measurement) time.Duration {
	t1, ok1 := TimeValue(last)
	t2, ok2 := TimeValue(current)
	if ok1 && ok2 {
		d := t2 - t1
		if d < 0 {
			d = -d
		}
		return time.Duration(d * float64(time.Second))
	}
	return time.Duration(current.Index()-last.Index()) * time.Second
}
