package schedule

// Reason classifies why a booking candidate was rejected. Reasons are
// values, not errors: expected unavailability never surfaces as an error.
type Reason string

const (
	ReasonSalonClosed      Reason = "SALON_CLOSED"
	ReasonStaffUnavailable Reason = "STAFF_UNAVAILABLE"
	ReasonSlotUnavailable  Reason = "SLOT_UNAVAILABLE"
	ReasonBreakOverlap     Reason = "BREAK_OVERLAP"
	ReasonStaffBusy        Reason = "STAFF_BUSY"
	ReasonInvalidInput     Reason = "INVALID_INPUT"
)

// Result is the validator's structured accept/reject decision.
type Result struct {
	OK     bool   `json:"ok"`
	Reason Reason `json:"reason,omitempty"`
}

func accept() Result         { return Result{OK: true} }
func reject(r Reason) Result { return Result{Reason: r} }

// Request is one booking candidate: a start label and a service duration.
// ExcludeAppointmentID makes reschedules ignore their own claim (0 excludes
// nothing).
type Request struct {
	Time                 string
	DurationMinutes      int
	ExcludeAppointmentID int64
}

// Validate decides whether one candidate is bookable against the snapshot.
// It applies the exact arithmetic of GenerateSlots; any label that
// generator emits must pass here, and vice versa.
func Validate(s *Snapshot, req Request) Result {
	start, err := ParseClock(req.Time)
	if err != nil || req.DurationMinutes <= 0 {
		return reject(ReasonInvalidInput)
	}

	if salonClosed(s) {
		return reject(ReasonSalonClosed)
	}

	win, staffDrove := ResolveEffectiveWindow(s)
	if win == nil {
		if staffDrove {
			return reject(ReasonStaffUnavailable)
		}
		return reject(ReasonSlotUnavailable)
	}

	plan := BuildBreakPlan(s.BreakRules)
	padStart := start - plan.Buffers.Before
	padEnd := start + req.DurationMinutes + plan.Buffers.After
	if padStart < win.Start || padEnd > win.End {
		return reject(ReasonSlotUnavailable)
	}

	if anyOverlap(padStart, padEnd, plan.WindowsFor(s.Date)) {
		return reject(ReasonBreakOverlap)
	}

	if s.StaffID != nil {
		busy := claimIntervals(s.Claims, plan.Buffers, req.ExcludeAppointmentID)
		if anyOverlap(padStart, padEnd, busy) {
			return reject(ReasonStaffBusy)
		}
	}

	return accept()
}
