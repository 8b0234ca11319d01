package schedule

import (
	"time"

	"salonik/internal/models"
)

// Window is the minute-of-day interval during which bookings may begin.
type Window struct {
	Start int
	End   int
}

// ResolveWindow determines the effective open window for one owner on one
// date. Precedence: a closed (or, for staff, all-day absence) exception
// wins outright; an exception with an explicit window replaces the weekly
// template; otherwise the weekly row for that weekday applies. Returns nil
// when the owner is unavailable. Rows with unparseable times resolve to
// nil rather than a bogus midnight window.
func ResolveWindow(date time.Time, ownerKind string, weekly []models.WeeklyHours, exceptions []models.DateException) *Window {
	dateStr := date.Format("2006-01-02")

	for _, exc := range exceptions {
		if exc.Date != dateStr {
			continue
		}
		if exc.Closed {
			return nil
		}
		if !exc.HasWindow() {
			if ownerKind == models.OwnerStaff {
				// staff exception without a window = absent all day
				return nil
			}
			break
		}
		return parseWindow(exc.Start, exc.End)
	}

	weekday := WeekdayIndex(date)
	for _, wh := range weekly {
		if wh.Weekday != weekday {
			continue
		}
		if !wh.Active || wh.Open == "" || wh.Close == "" {
			return nil
		}
		return parseWindow(wh.Open, wh.Close)
	}
	return nil
}

// ResolveEffectiveWindow composes the salon and staff schedules for a
// snapshot. When the staff member has any schedule of their own it is used
// exclusively: a nil staff window means unavailable even if the salon is
// open. The second return value reports whether staff data drove the
// result, which decides between STAFF_UNAVAILABLE and SLOT_UNAVAILABLE.
func ResolveEffectiveWindow(s *Snapshot) (*Window, bool) {
	if s.staffConfigured() {
		return ResolveWindow(s.Date, models.OwnerStaff, s.StaffHours, s.StaffExceptions), true
	}
	return ResolveWindow(s.Date, models.OwnerSalon, s.SalonHours, s.SalonExceptions), false
}

// salonClosed reports an explicit salon closure exception for the date.
func salonClosed(s *Snapshot) bool {
	dateStr := s.Date.Format("2006-01-02")
	for _, exc := range s.SalonExceptions {
		if exc.Date == dateStr && exc.Closed {
			return true
		}
	}
	return false
}

func parseWindow(open, close string) *Window {
	start, err := ParseClock(open)
	if err != nil {
		return nil
	}
	end, err := ParseClock(close)
	if err != nil {
		return nil
	}
	return &Window{Start: start, End: end}
}
