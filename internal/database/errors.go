package database

import "errors"

var (
	// ErrSlotTaken is returned when the guarded insert loses the race for a
	// (staff, date, time) slot to a concurrent booking.
	ErrSlotTaken = errors.New("slot already taken")

	// ErrConcurrentModification is returned when an optimistic version check
	// fails on update.
	ErrConcurrentModification = errors.New("appointment was modified concurrently")

	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrPastDate is returned on booking attempts for a date in the past.
	ErrPastDate = errors.New("date is in the past")

	// ErrDateTooFar is returned when the booking horizon is exceeded.
	ErrDateTooFar = errors.New("date is beyond the booking horizon")
)
