package schedule

import (
	"testing"

	"salonik/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSlotsNoConstraints(t *testing.T) {
	win := Window{Start: 540, End: 1020} // 09:00-17:00
	labels := GenerateSlots(win, 30, Buffers{}, nil, nil, 30)

	// anchors 09:00..16:30: 16:30+30 = 17:00 still fits, 17:00+30 does not
	require.Len(t, labels, 16)
	assert.Equal(t, "09:00", labels[0])
	assert.Equal(t, "16:30", labels[15])
}

func TestGenerateSlotsBufferBoundaries(t *testing.T) {
	// salon 09:00-17:00, 10 min before-buffer, 5 min after-buffer, 30 min
	// service, 30 min grid. Valid anchors satisfy m-10 >= 540 and
	// m+30+5 <= 1020, i.e. 550 <= m <= 985: first grid anchor 09:30,
	// last 16:00.
	win := Window{Start: 540, End: 1020}
	buf := Buffers{Before: 10, After: 5}
	labels := GenerateSlots(win, 30, buf, nil, nil, 30)

	require.NotEmpty(t, labels)
	assert.Equal(t, "09:30", labels[0])
	assert.Equal(t, "16:00", labels[len(labels)-1])
	assert.NotContains(t, labels, "09:00")
	assert.NotContains(t, labels, "16:30")
}

func TestGenerateSlotsBreakExclusion(t *testing.T) {
	win := Window{Start: 540, End: 1020}
	breaks := []BreakWindow{{Start: 780, End: 840}} // 13:00-14:00

	labels := GenerateSlots(win, 30, Buffers{}, breaks, nil, 30)
	assert.Contains(t, labels, "12:30") // ends exactly at 13:00, touching is not an overlap
	assert.NotContains(t, labels, "13:00")
	assert.NotContains(t, labels, "13:30")
	assert.Contains(t, labels, "14:00")
}

func TestGenerateSlotsClaimExclusion(t *testing.T) {
	win := Window{Start: 540, End: 1020}
	// existing appointment 10:00-11:00, padded symmetrically with buffers
	buf := Buffers{Before: 10, After: 10}
	claims := []BreakWindow{{Start: 600 - buf.Before, End: 660 + buf.After}}

	labels := GenerateSlots(win, 30, buf, nil, claims, 30)
	assert.NotContains(t, labels, "10:00")
	assert.NotContains(t, labels, "10:30")
	// 09:30 candidate pads to [09:20, 10:10] which clips the claim's 09:50 start
	assert.NotContains(t, labels, "09:30")
	assert.Contains(t, labels, "11:30")
}

func TestAvailableSlotsStaffNeverPastTheirClose(t *testing.T) {
	staffID := int64(3)
	snap := &Snapshot{
		Date:       wednesday,
		SalonHours: salonWeek("09:00", "20:00"),
		StaffID:    &staffID,
		StaffHours: []models.WeeklyHours{
			{OwnerKind: models.OwnerStaff, OwnerID: 3, Weekday: 2, Active: true, Open: "09:00", Close: "13:00"},
		},
	}

	labels := AvailableSlots(snap, 30, 30)
	require.NotEmpty(t, labels)
	for _, label := range labels {
		m, err := ParseClock(label)
		require.NoError(t, err)
		assert.Less(t, m, 780, "slot %s starts at or after the staff close", label)
	}
}

func TestAvailableSlotsSalonClosureBlocksConfiguredStaff(t *testing.T) {
	staffID := int64(3)
	snap := &Snapshot{
		Date: wednesday,
		SalonExceptions: []models.DateException{
			{OwnerKind: models.OwnerSalon, Date: "2025-06-04", Closed: true},
		},
		StaffID: &staffID,
		StaffHours: []models.WeeklyHours{
			{OwnerKind: models.OwnerStaff, OwnerID: 3, Weekday: 2, Active: true, Open: "09:00", Close: "17:00"},
		},
	}

	assert.Empty(t, AvailableSlots(snap, 30, 30))
}

func TestAvailableSlotsIdempotent(t *testing.T) {
	snap := &Snapshot{
		Date:       wednesday,
		SalonHours: salonWeek("09:00", "17:00"),
		BreakRules: []models.BreakRule{
			{Kind: models.BreakKindRecurring, DayCodes: "Pn-Pt", Start: "13:00", End: "14:00"},
			{Kind: models.BreakKindBuffer, Minutes: 10, Label: "Bufor przed wizytą"},
		},
		Claims: []Claim{
			{AppointmentID: 1, Time: "10:00", DurationMinutes: 60, Status: models.StatusConfirmed},
		},
	}

	first := AvailableSlots(snap, 45, 30)
	second := AvailableSlots(snap, 45, 30)
	assert.Equal(t, first, second)
}

func TestAvailableSlotsDefaultGranularity(t *testing.T) {
	snap := &Snapshot{Date: wednesday, SalonHours: salonWeek("09:00", "11:00")}
	assert.Equal(t, []string{"09:00", "09:30", "10:00", "10:30"}, AvailableSlots(snap, 30, 0))
}

func TestMergeSlots(t *testing.T) {
	merged := MergeSlots(
		[]string{"10:00", "11:00"},
		[]string{"09:30", "10:00"},
		nil,
	)
	assert.Equal(t, []string{"09:30", "10:00", "11:00"}, merged)
}

func TestClaimIntervalsFiltering(t *testing.T) {
	buf := Buffers{Before: 5, After: 5}
	claims := []Claim{
		{AppointmentID: 1, Time: "10:00", DurationMinutes: 30, Status: models.StatusConfirmed},
		{AppointmentID: 2, Time: "11:00", DurationMinutes: 30, Status: models.StatusCancelled},
		{AppointmentID: 3, Time: "12:00", DurationMinutes: 30, Status: models.StatusNoShow},
		{AppointmentID: 4, Time: "oops", DurationMinutes: 30, Status: models.StatusPending},
		{AppointmentID: 5, Time: "13:00", DurationMinutes: 30, Status: models.StatusPending},
	}

	intervals := claimIntervals(claims, buf, 5)
	require.Len(t, intervals, 1)
	assert.Equal(t, BreakWindow{Start: 595, End: 635}, intervals[0])
}
