package schedule

import (
	"strings"
	"time"
)

// DaySet is a set of weekday indices, Monday=0 .. Sunday=6.
type DaySet [7]bool

// Contains reports whether the weekday index is in the set.
func (d *DaySet) Contains(weekday int) bool {
	if weekday < 0 || weekday > 6 {
		return false
	}
	return d[weekday]
}

// WeekdayIndex maps a date to the Monday=0..Sunday=6 convention used by all
// schedule rows. time.Weekday is Sunday=0, hence the shift.
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// Polish day abbreviations, plus the diacritic-less alias for środa and the
// long alias for sobota that appear in older salon data.
var dayCodes = map[string]int{
	"pn":  0,
	"wt":  1,
	"śr":  2,
	"sr":  2,
	"czw": 3,
	"pt":  4,
	"so":  5,
	"sob": 5,
	"nd":  6,
}

// ParseDayCodes parses a day-code expression ("Pn", "Pn-Pt", "So,Nd",
// "Czw–So") into a DaySet. Ranges accept both "-" and "–" and wrap across
// the week boundary, so "So-Pn" yields {So, Nd, Pn}. Unknown tokens are
// skipped. An empty expression returns nil, which callers must read as
// "every day", not "no days".
func ParseDayCodes(expr string) *DaySet {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil
	}

	var set DaySet
	for _, token := range strings.Split(expr, ",") {
		token = strings.ToLower(strings.TrimSpace(token))
		if token == "" {
			continue
		}

		sep := ""
		switch {
		case strings.Contains(token, "–"):
			sep = "–"
		case strings.Contains(token, "-"):
			sep = "-"
		}

		if sep == "" {
			if day, ok := dayCodes[token]; ok {
				set[day] = true
			}
			continue
		}

		bounds := strings.SplitN(token, sep, 2)
		from, okFrom := dayCodes[strings.TrimSpace(bounds[0])]
		to, okTo := dayCodes[strings.TrimSpace(bounds[1])]
		if !okFrom || !okTo {
			continue
		}
		for day := from; ; day = (day + 1) % 7 {
			set[day] = true
			if day == to {
				break
			}
		}
	}

	return &set
}
