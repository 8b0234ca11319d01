package schedule

import (
	"time"

	"salonik/internal/models"
)

// Claim is an existing appointment's time footprint, used only for conflict
// detection. Claims arrive filtered to the relevant salon/staff/date;
// status filtering and self-exclusion happen here.
type Claim struct {
	AppointmentID   int64
	Time            string
	DurationMinutes int
	Status          string
}

// Snapshot is everything the engine needs for one (salon, staff?, date)
// question, pre-fetched by the caller. The engine never reads storage.
type Snapshot struct {
	Date            time.Time
	SalonHours      []models.WeeklyHours
	SalonExceptions []models.DateException
	StaffID         *int64
	StaffHours      []models.WeeklyHours
	StaffExceptions []models.DateException
	BreakRules      []models.BreakRule
	Claims          []Claim
}

// staffConfigured reports whether the staff member has any availability
// rows or exceptions of their own. Only then does the staff schedule
// override the salon's.
func (s *Snapshot) staffConfigured() bool {
	return s.StaffID != nil && (len(s.StaffHours) > 0 || len(s.StaffExceptions) > 0)
}

// claimIntervals expands active claims into padded conflict intervals,
// skipping excludeID (0 excludes nothing) and rows with unparseable times.
// A claim is padded exactly like a candidate: before-buffer on the start
// side, after-buffer past its duration.
func claimIntervals(claims []Claim, buf Buffers, excludeID int64) []BreakWindow {
	var intervals []BreakWindow
	for _, c := range claims {
		if excludeID != 0 && c.AppointmentID == excludeID {
			continue
		}
		if !models.IsActiveStatus(c.Status) {
			continue
		}
		start, err := ParseClock(c.Time)
		if err != nil || c.DurationMinutes <= 0 {
			continue
		}
		intervals = append(intervals, BreakWindow{
			Start: start - buf.Before,
			End:   start + c.DurationMinutes + buf.After,
		})
	}
	return intervals
}
