package models

import "time"

// Owner kinds for schedule rows. Weekly hours and date exceptions exist both
// at the salon level and per staff member.
const (
	OwnerSalon = "salon"
	OwnerStaff = "staff"
)

// Break rule kinds.
const (
	BreakKindRecurring = "recurring_break"
	BreakKindBuffer    = "buffer"
)

// Buffer sides. Empty side means "infer from label" (legacy rows created
// before the side column existed).
const (
	BufferBefore = "before"
	BufferAfter  = "after"
	BufferBoth   = "both"
)

// WeeklyHours is one row of a recurring weekly template: owner is open
// between Open and Close on the given weekday (0=Monday..6=Sunday).
// Open/Close are "HH:MM" and meaningless when Active is false.
type WeeklyHours struct {
	ID        int64  `json:"id"`
	OwnerKind string `json:"owner_kind"`
	OwnerID   int64  `json:"owner_id"`
	Weekday   int    `json:"weekday"`
	Active    bool   `json:"active"`
	Open      string `json:"open"`
	Close     string `json:"close"`
}

// DateException overrides the weekly template for a single calendar date.
// Closed wins over everything; otherwise Start/End (when both set) replace
// the weekly window. A staff exception with neither is an all-day absence.
type DateException struct {
	ID        int64  `json:"id"`
	OwnerKind string `json:"owner_kind"`
	OwnerID   int64  `json:"owner_id"`
	Date      string `json:"date"` // YYYY-MM-DD
	Closed    bool   `json:"closed"`
	Start     string `json:"start,omitempty"`
	End       string `json:"end,omitempty"`
}

// HasWindow reports whether the exception carries an explicit override window.
func (e DateException) HasWindow() bool {
	return e.Start != "" && e.End != ""
}

// BreakRule is either a recurring break window or a buffer. Recurring breaks
// use DayCodes/Start/End; buffers use Minutes/Side (Label kept for display
// and for side inference on legacy rows).
type BreakRule struct {
	ID       int64  `json:"id"`
	SalonID  int64  `json:"salon_id"`
	Kind     string `json:"kind"`
	DayCodes string `json:"day_codes,omitempty"`
	Start    string `json:"start,omitempty"`
	End      string `json:"end,omitempty"`
	Minutes  int    `json:"minutes,omitempty"`
	Label    string `json:"label,omitempty"`
	Side     string `json:"side,omitempty"`
}

type Salon struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Staff struct {
	ID        int64     `json:"id"`
	SalonID   int64     `json:"salon_id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Service struct {
	ID              int64  `json:"id"`
	SalonID         int64  `json:"salon_id"`
	Name            string `json:"name"`
	DurationMinutes int    `json:"duration_minutes"`
	PriceGrosze     int64  `json:"price_grosze"`
	IsActive        bool   `json:"is_active"`
}
