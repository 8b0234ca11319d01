package schedule

import (
	"sort"

	"salonik/internal/models"
)

// GenerateSlots enumerates bookable start labels inside a window. Anchors
// step from window.Start to window.End inclusive; each anchor is accepted
// only if its buffer-padded interval stays inside the window and clears
// every break window and every padded existing claim. Output is ascending
// zero-padded "HH:MM".
func GenerateSlots(win Window, duration int, buf Buffers, breaks []BreakWindow, claims []BreakWindow, granularity int) []string {
	if duration <= 0 {
		return nil
	}
	if granularity <= 0 {
		granularity = models.DefaultGranularityMinutes
	}

	var labels []string
	for m := win.Start; m <= win.End; m += granularity {
		padStart := m - buf.Before
		padEnd := m + duration + buf.After
		if padStart < win.Start || padEnd > win.End {
			continue
		}
		if anyOverlap(padStart, padEnd, breaks) || anyOverlap(padStart, padEnd, claims) {
			continue
		}
		labels = append(labels, FormatClock(m))
	}
	return labels
}

// AvailableSlots answers "show available times" for one snapshot: resolve
// the effective window, aggregate breaks and buffers, then enumerate. An
// empty result means no bookable time that day; it is not an error.
func AvailableSlots(s *Snapshot, duration, granularity int) []string {
	win, _ := ResolveEffectiveWindow(s)
	if win == nil || salonClosed(s) {
		return nil
	}
	plan := BuildBreakPlan(s.BreakRules)
	return GenerateSlots(
		*win,
		duration,
		plan.Buffers,
		plan.WindowsFor(s.Date),
		claimIntervals(s.Claims, plan.Buffers, 0),
		granularity,
	)
}

// MergeSlots unions label lists from multiple staff candidates into one
// distinct, sorted list. Lexicographic order equals chronological order for
// zero-padded labels.
func MergeSlots(lists ...[]string) []string {
	seen := make(map[string]struct{})
	var merged []string
	for _, list := range lists {
		for _, label := range list {
			if _, ok := seen[label]; ok {
				continue
			}
			seen[label] = struct{}{}
			merged = append(merged, label)
		}
	}
	sort.Strings(merged)
	return merged
}

func anyOverlap(start, end int, windows []BreakWindow) bool {
	for _, w := range windows {
		if Overlaps(start, end, w.Start, w.End) {
			return true
		}
	}
	return false
}
