package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"salonik/internal/config"
	"salonik/internal/database"
	"salonik/internal/export"
	"salonik/internal/models"
	"salonik/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *database.DB {
	logger := zerolog.New(io.Discard)
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// seedSalon готовит салон с мастером и услугой, открытый каждый день 09:00-17:00
func seedSalon(t *testing.T, db *database.DB) (salonID, staffID, serviceID int64) {
	ctx := context.Background()

	salon := &models.Salon{Name: "Salonik Piękna", Phone: "+48 555 100 200", IsActive: true}
	require.NoError(t, db.CreateSalon(ctx, salon))

	staff := &models.Staff{SalonID: salon.ID, Name: "Anna Kowalska", Role: "fryzjerka", IsActive: true}
	require.NoError(t, db.CreateStaff(ctx, staff))

	svc := &models.Service{SalonID: salon.ID, Name: "Strzyżenie", DurationMinutes: 60, IsActive: true}
	require.NoError(t, db.CreateService(ctx, svc))

	for wd := 0; wd < 7; wd++ {
		require.NoError(t, db.SetWeeklyHours(ctx, &models.WeeklyHours{
			OwnerKind: models.OwnerSalon, OwnerID: salon.ID, Weekday: wd,
			Active: true, Open: "09:00", Close: "17:00",
		}))
	}

	return salon.ID, staff.ID, svc.ID
}

func newTestServer(t *testing.T, db *database.DB, cfg config.APIConfig) *httptest.Server {
	logger := zerolog.New(io.Discard)
	bookingCfg := config.BookingConfig{GranularityMinutes: 30, MaxBookingDays: 90}
	svc := service.NewBookingService(db, nil, nil, bookingCfg, &logger)
	exporter := export.NewExporter(t.TempDir(), &logger)
	server := NewHTTPServer(cfg, svc, exporter, &logger)
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func futureDate(days int) string {
	return time.Now().AddDate(0, 0, days).Format("2006-01-02")
}

func TestSlotsEndpoint(t *testing.T) {
	db := newTestDB(t)
	salonID, staffID, serviceID := seedSalon(t, db)
	ts := newTestServer(t, db, config.APIConfig{})

	url := fmt.Sprintf("%s/api/v1/slots?salon_id=%d&staff_id=%d&service_id=%d&date=%s",
		ts.URL, salonID, staffID, serviceID, futureDate(7))
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Date  string   `json:"date"`
		Slots []string `json:"slots"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "09:00", body.Slots[0])
	assert.Equal(t, "16:00", body.Slots[len(body.Slots)-1])
}

func TestSlotsEndpointValidation(t *testing.T) {
	db := newTestDB(t)
	ts := newTestServer(t, db, config.APIConfig{})

	cases := []struct {
		name string
		url  string
	}{
		{"missing salon_id", "/api/v1/slots?service_id=1&date=2025-12-01"},
		{"missing service_id", "/api/v1/slots?salon_id=1&date=2025-12-01"},
		{"bad date", "/api/v1/slots?salon_id=1&service_id=1&date=01.12.2025"},
		{"bad staff_id", "/api/v1/slots?salon_id=1&service_id=1&date=2025-12-01&staff_id=abc"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.Get(ts.URL + tc.url)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestCreateAppointmentEndpoint(t *testing.T) {
	db := newTestDB(t)
	salonID, staffID, serviceID := seedSalon(t, db)
	ts := newTestServer(t, db, config.APIConfig{})

	payload := map[string]any{
		"salon_id":     salonID,
		"staff_id":     staffID,
		"service_id":   serviceID,
		"client_name":  "Ola Nowak",
		"client_phone": "+48123456789",
		"date":         futureDate(7),
		"time":         "10:00",
	}
	raw, _ := json.Marshal(payload)

	resp, err := http.Post(ts.URL+"/api/v1/appointments", "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var appt models.Appointment
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&appt))
	assert.NotZero(t, appt.ID)
	assert.NotEmpty(t, appt.Code)
	assert.Equal(t, models.StatusPending, appt.Status)
	assert.Equal(t, 60, appt.DurationMinutes)

	// повторная бронь того же слота отклоняется
	resp2, err := http.Post(ts.URL+"/api/v1/appointments", "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusConflict, resp2.StatusCode)

	var conflictBody struct {
		Reason string `json:"reason"`
	}
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&conflictBody))
	assert.Equal(t, "STAFF_BUSY", conflictBody.Reason)
}

func TestAppointmentLifecycle(t *testing.T) {
	db := newTestDB(t)
	salonID, staffID, serviceID := seedSalon(t, db)
	ts := newTestServer(t, db, config.APIConfig{})

	payload := map[string]any{
		"salon_id":     salonID,
		"staff_id":     staffID,
		"service_id":   serviceID,
		"client_name":  "Ola Nowak",
		"client_phone": "+48123456789",
		"date":         futureDate(7),
		"time":         "10:00",
	}
	raw, _ := json.Marshal(payload)
	resp, err := http.Post(ts.URL+"/api/v1/appointments", "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	var appt models.Appointment
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&appt))
	resp.Body.Close()

	// lookup by public code
	resp, err = http.Get(ts.URL + "/api/v1/appointments/" + appt.Code)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	confirm, _ := json.Marshal(map[string]any{"version": appt.Version})
	resp, err = http.Post(fmt.Sprintf("%s/api/v1/appointments/%d/confirm", ts.URL, appt.ID), "application/json", bytes.NewReader(confirm))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// stale version is a conflict
	resp, err = http.Post(fmt.Sprintf("%s/api/v1/appointments/%d/cancel", ts.URL, appt.ID), "application/json", bytes.NewReader(confirm))
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	cancel, _ := json.Marshal(map[string]any{"version": appt.Version + 1})
	resp, err = http.Post(fmt.Sprintf("%s/api/v1/appointments/%d/cancel", ts.URL, appt.ID), "application/json", bytes.NewReader(cancel))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// после отмены слот снова свободен
	resp, err = http.Post(ts.URL+"/api/v1/appointments", "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
}

func TestRescheduleEndpoint(t *testing.T) {
	db := newTestDB(t)
	salonID, staffID, serviceID := seedSalon(t, db)
	ts := newTestServer(t, db, config.APIConfig{})

	payload := map[string]any{
		"salon_id":     salonID,
		"staff_id":     staffID,
		"service_id":   serviceID,
		"client_name":  "Ola Nowak",
		"client_phone": "+48123456789",
		"date":         futureDate(7),
		"time":         "10:00",
	}
	raw, _ := json.Marshal(payload)
	resp, err := http.Post(ts.URL+"/api/v1/appointments", "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	var appt models.Appointment
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&appt))
	resp.Body.Close()

	move, _ := json.Marshal(map[string]any{
		"version":  appt.Version,
		"date":     futureDate(8),
		"time":     "11:00",
		"staff_id": staffID,
	})
	resp, err = http.Post(fmt.Sprintf("%s/api/v1/appointments/%d/reschedule", ts.URL, appt.ID), "application/json", bytes.NewReader(move))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	moved, err := db.GetAppointment(context.Background(), appt.ID)
	require.NoError(t, err)
	assert.Equal(t, futureDate(8), moved.Date)
	assert.Equal(t, "11:00", moved.Time)
}

func TestValidateEndpoint(t *testing.T) {
	db := newTestDB(t)
	salonID, staffID, serviceID := seedSalon(t, db)
	_ = serviceID
	ts := newTestServer(t, db, config.APIConfig{})

	check := func(timeLabel string) (bool, string) {
		raw, _ := json.Marshal(map[string]any{
			"salon_id":         salonID,
			"staff_id":         staffID,
			"date":             futureDate(7),
			"time":             timeLabel,
			"duration_minutes": 60,
		})
		resp, err := http.Post(ts.URL+"/api/v1/validate", "application/json", bytes.NewReader(raw))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			OK     bool   `json:"ok"`
			Reason string `json:"reason"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		return body.OK, body.Reason
	}

	ok, _ := check("10:00")
	assert.True(t, ok)

	ok, reason := check("16:30")
	assert.False(t, ok)
	assert.Equal(t, "SLOT_UNAVAILABLE", reason)

	ok, reason = check("25:00")
	assert.False(t, ok)
	assert.Equal(t, "INVALID_INPUT", reason)
}

func TestGetUnknownAppointment(t *testing.T) {
	db := newTestDB(t)
	seedSalon(t, db)
	ts := newTestServer(t, db, config.APIConfig{})

	resp, err := http.Get(ts.URL + "/api/v1/appointments/nie-ma-takiego-kodu")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestExportEndpoint(t *testing.T) {
	db := newTestDB(t)
	salonID, staffID, serviceID := seedSalon(t, db)
	ts := newTestServer(t, db, config.APIConfig{})

	payload := map[string]any{
		"salon_id":     salonID,
		"staff_id":     staffID,
		"service_id":   serviceID,
		"client_name":  "Ola Nowak",
		"client_phone": "+48123456789",
		"date":         futureDate(7),
		"time":         "10:00",
	}
	raw, _ := json.Marshal(payload)
	resp, err := http.Post(ts.URL+"/api/v1/appointments", "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	resp.Body.Close()

	url := fmt.Sprintf("%s/api/v1/schedule/export?salon_id=%d&date=%s", ts.URL, salonID, futureDate(7))
	resp, err = http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "spreadsheetml")

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
