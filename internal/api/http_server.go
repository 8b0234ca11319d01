package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"salonik/internal/config"
	"salonik/internal/export"
	"salonik/internal/metrics"
	"salonik/internal/models"
	"salonik/internal/service"

	"github.com/rs/zerolog"
)

// HTTPServer exposes the booking API: slot queries, appointment lifecycle
// and the day-schedule export.
type HTTPServer struct {
	cfg      config.APIConfig
	svc      *service.BookingService
	exporter *export.Exporter
	server   *http.Server
	auth     *HTTPAuth
	logger   *zerolog.Logger
}

func NewHTTPServer(cfg config.APIConfig, svc *service.BookingService, exporter *export.Exporter, logger *zerolog.Logger) *HTTPServer {
	mux := http.NewServeMux()
	srv := &HTTPServer{cfg: cfg, svc: svc, exporter: exporter, logger: logger}
	srv.auth = NewHTTPAuth(cfg)

	mux.HandleFunc("/api/v1/slots", srv.handleSlots)
	mux.HandleFunc("/api/v1/validate", srv.handleValidate)
	mux.HandleFunc("/api/v1/appointments", srv.handleAppointments)
	mux.HandleFunc("/api/v1/appointments/", srv.handleAppointmentByPath)
	mux.HandleFunc("/api/v1/schedule/export", srv.handleExport)

	handler := srv.loggingMiddleware(srv.auth.Wrap(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the full middleware chain, for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) handleSlots(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("slots")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	q := r.URL.Query()
	salonID, err := strconv.ParseInt(q.Get("salon_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "salon_id is required")
		return
	}
	serviceID, err := strconv.ParseInt(q.Get("service_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "service_id is required")
		return
	}
	date, err := time.Parse("2006-01-02", strings.TrimSpace(q.Get("date")))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
		return
	}

	var staffID *int64
	if raw := strings.TrimSpace(q.Get("staff_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid staff_id")
			return
		}
		staffID = &id
	}

	labels, err := s.svc.GetAvailableSlots(r.Context(), salonID, staffID, serviceID, date)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if labels == nil {
		labels = []string{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"date":  date.Format("2006-01-02"),
		"slots": labels,
	})
}

func (s *HTTPServer) handleValidate(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("validate")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	type request struct {
		SalonID         int64  `json:"salon_id"`
		StaffID         *int64 `json:"staff_id"`
		Date            string `json:"date"`
		Time            string `json:"time"`
		DurationMinutes int    `json:"duration_minutes"`
	}
	var body request
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	date, err := time.Parse("2006-01-02", body.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
		return
	}

	res, err := s.svc.ValidateAppointment(r.Context(), body.SalonID, body.StaffID, date, body.Time, body.DurationMinutes, 0)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	resp := map[string]any{"ok": res.OK}
	if !res.OK {
		resp["reason"] = string(res.Reason)
		resp["message"] = reasonMessage(res.Reason)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *HTTPServer) handleAppointments(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("appointments")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	type request struct {
		SalonID     int64  `json:"salon_id"`
		StaffID     *int64 `json:"staff_id"`
		ServiceID   int64  `json:"service_id"`
		ClientName  string `json:"client_name"`
		ClientPhone string `json:"client_phone"`
		Date        string `json:"date"`
		Time        string `json:"time"`
		Comment     string `json:"comment"`
	}
	var body request
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.ClientName == "" || body.ClientPhone == "" {
		writeError(w, http.StatusBadRequest, "client_name and client_phone are required")
		return
	}

	appt := &models.Appointment{
		SalonID:     body.SalonID,
		StaffID:     body.StaffID,
		ServiceID:   body.ServiceID,
		ClientName:  body.ClientName,
		ClientPhone: body.ClientPhone,
		Date:        body.Date,
		Time:        body.Time,
		Comment:     body.Comment,
	}

	if err := s.svc.CreateAppointment(r.Context(), appt); err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, appt)
}

// handleAppointmentByPath routes /api/v1/appointments/{code} lookups and
// /api/v1/appointments/{id}/{action} lifecycle transitions.
func (s *HTTPServer) handleAppointmentByPath(w http.ResponseWriter, r *http.Request) {
	const prefix = "/api/v1/appointments/"
	rest := strings.TrimPrefix(r.URL.Path, prefix)
	parts := strings.Split(strings.Trim(rest, "/"), "/")

	switch {
	case len(parts) == 1 && parts[0] != "":
		s.handleGetByCode(w, r, parts[0])
	case len(parts) == 2:
		s.handleAction(w, r, parts[0], parts[1])
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *HTTPServer) handleGetByCode(w http.ResponseWriter, r *http.Request, code string) {
	metrics.IncHTTP("appointment_get")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	appt, err := s.svc.GetAppointmentByCode(r.Context(), code)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

func (s *HTTPServer) handleAction(w http.ResponseWriter, r *http.Request, rawID, action string) {
	metrics.IncHTTP("appointment_" + action)
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid appointment id")
		return
	}

	if action == "reschedule" {
		s.handleReschedule(w, r, id)
		return
	}

	type request struct {
		Version int64 `json:"version"`
	}
	var body request
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	switch action {
	case "confirm":
		err = s.svc.ConfirmAppointment(r.Context(), id, body.Version)
	case "cancel":
		err = s.svc.CancelAppointment(r.Context(), id, body.Version)
	case "complete":
		err = s.svc.CompleteAppointment(r.Context(), id, body.Version)
	case "no-show":
		err = s.svc.MarkNoShow(r.Context(), id, body.Version)
	default:
		writeError(w, http.StatusNotFound, "unknown action")
		return
	}

	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleReschedule(w http.ResponseWriter, r *http.Request, id int64) {
	type request struct {
		Version int64  `json:"version"`
		Date    string `json:"date"`
		Time    string `json:"time"`
		StaffID *int64 `json:"staff_id"`
	}
	var body request
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.Date == "" || body.Time == "" {
		writeError(w, http.StatusBadRequest, "date and time are required")
		return
	}

	if err := s.svc.RescheduleAppointment(r.Context(), id, body.Version, body.Date, body.Time, body.StaffID); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("export")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.exporter == nil {
		writeError(w, http.StatusServiceUnavailable, "export is not configured")
		return
	}

	q := r.URL.Query()
	salonID, err := strconv.ParseInt(q.Get("salon_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "salon_id is required")
		return
	}
	dateStr := strings.TrimSpace(q.Get("date"))
	if _, err := time.Parse("2006-01-02", dateStr); err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
		return
	}

	staff, appointments, err := s.svc.GetDaySchedule(r.Context(), salonID, dateStr)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	filePath, err := s.exporter.DaySchedule(dateStr, staff, appointments)
	if err != nil {
		s.logger.Error().Err(err).Msg("day schedule export error")
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=grafik_%s.xlsx", dateStr))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	http.ServeFile(w, r, filePath)
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
