package schedule

import (
	"strings"
	"time"

	"salonik/internal/models"
)

// Buffers are the aggregated pad minutes applied on each side of every
// appointment. They widen an appointment's footprint for conflict purposes
// but are not themselves blocked intervals.
type Buffers struct {
	Before int
	After  int
}

// BreakWindow is a blocked interval in minutes since midnight.
type BreakWindow struct {
	Start int
	End   int
}

type recurringBreak struct {
	days   *DaySet // nil = every day
	window BreakWindow
}

// BreakPlan is the aggregated view of a salon's break rules: buffer totals
// plus the recurring break windows, resolvable per date.
type BreakPlan struct {
	Buffers Buffers
	breaks  []recurringBreak
}

// BuildBreakPlan aggregates all break rules of a salon. Buffer rules
// accumulate additively into the side given by their Side field, falling
// back to label inference for rows predating that column. Recurring rules
// with unparseable windows are skipped.
func BuildBreakPlan(rules []models.BreakRule) BreakPlan {
	var plan BreakPlan
	for _, rule := range rules {
		switch rule.Kind {
		case models.BreakKindBuffer:
			side := rule.Side
			if side == "" {
				side = InferBufferSide(rule.Label)
			}
			switch side {
			case models.BufferBefore:
				plan.Buffers.Before += rule.Minutes
			case models.BufferAfter:
				plan.Buffers.After += rule.Minutes
			default:
				plan.Buffers.Before += rule.Minutes
				plan.Buffers.After += rule.Minutes
			}
		case models.BreakKindRecurring:
			start, err := ParseClock(rule.Start)
			if err != nil {
				continue
			}
			end, err := ParseClock(rule.End)
			if err != nil {
				continue
			}
			plan.breaks = append(plan.breaks, recurringBreak{
				days:   ParseDayCodes(rule.DayCodes),
				window: BreakWindow{Start: start, End: end},
			})
		}
	}
	return plan
}

// WindowsFor returns the break windows active on the given date.
func (p BreakPlan) WindowsFor(date time.Time) []BreakWindow {
	weekday := WeekdayIndex(date)
	var windows []BreakWindow
	for _, b := range p.breaks {
		if b.days == nil || b.days.Contains(weekday) {
			windows = append(windows, b.window)
		}
	}
	return windows
}

// InferBufferSide classifies a buffer rule by its label: "przed" marks a
// before-buffer, "po" an after-buffer, anything else pads both sides. Kept
// only for rows without an explicit side; new rows carry one.
func InferBufferSide(label string) string {
	l := strings.ToLower(label)
	if strings.Contains(l, "przed") {
		return models.BufferBefore
	}
	if strings.Contains(l, "po") {
		return models.BufferAfter
	}
	return models.BufferBoth
}
