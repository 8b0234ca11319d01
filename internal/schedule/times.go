// Package schedule computes bookable start times and validates booking
// candidates against salon hours, date exceptions, staff availability,
// recurring breaks and existing appointments. It is a pure function of its
// inputs: no I/O, no clocks, no shared state. Callers fetch the rows and
// pass them in as a Snapshot.
package schedule

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseClock parses "HH:MM" into minutes since midnight. Parsing is strict:
// a malformed value is an error, never a silent 00:00.
func ParseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	if minute < 0 || minute > 59 {
		return 0, fmt.Errorf("minute out of range in %q", s)
	}
	// 24:00 is accepted as a closing time.
	if hour < 0 || hour > 24 || (hour == 24 && minute != 0) {
		return 0, fmt.Errorf("hour out of range in %q", s)
	}
	return hour*60 + minute, nil
}

// FormatClock renders minutes since midnight as zero-padded "HH:MM".
func FormatClock(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// Overlaps reports whether two half-open intervals [startA, endA) and
// [startB, endB) intersect. Touching edges do not overlap.
func Overlaps(startA, endA, startB, endB int) bool {
	return startA < endB && endA > startB
}
