package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"salonik/internal/config"
	"salonik/internal/database"
	"salonik/internal/domain"
	"salonik/internal/events"
	"salonik/internal/metrics"
	"salonik/internal/models"
	"salonik/internal/repository"
	"salonik/internal/schedule"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ConflictError carries the engine's rejection reason up to the API layer.
type ConflictError struct {
	Reason schedule.Reason
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("booking rejected: %s", e.Reason)
}

type BookingService struct {
	repo     domain.Repository
	cache    domain.SlotCache
	eventBus domain.EventPublisher
	cfg      config.BookingConfig
	logger   *zerolog.Logger
}

func NewBookingService(repo domain.Repository, cache domain.SlotCache, eventBus domain.EventPublisher, cfg config.BookingConfig, logger *zerolog.Logger) *BookingService {
	if cfg.MaxBookingDays <= 0 {
		cfg.MaxBookingDays = models.DefaultMaxBookingDays
	}
	if cfg.GranularityMinutes <= 0 {
		cfg.GranularityMinutes = models.DefaultGranularityMinutes
	}
	return &BookingService{
		repo:     repo,
		cache:    cache,
		eventBus: eventBus,
		cfg:      cfg,
		logger:   logger,
	}
}

func (s *BookingService) ValidateBookingDate(date time.Time) error {
	// Проверяем, что дата не в прошлом
	if date.Before(time.Now().AddDate(0, 0, -1)) {
		return database.ErrPastDate
	}

	// Проверяем максимальную дату
	maxDate := time.Now().AddDate(0, 0, s.cfg.MaxBookingDays)
	if date.After(maxDate) {
		return database.ErrDateTooFar
	}

	return nil
}

// GetAvailableSlots answers the availability question for one date. With a
// staff id it returns that specialist's slots; without one it returns the
// union across all active staff of the salon.
func (s *BookingService) GetAvailableSlots(ctx context.Context, salonID int64, staffID *int64, serviceID int64, date time.Time) ([]string, error) {
	svc, err := s.repo.GetService(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	dateStr := date.Format("2006-01-02")
	key := repository.SlotKey(salonID, dateStr, staffID, svc.DurationMinutes)
	if s.cache != nil {
		labels, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("slot cache get error")
		} else if ok {
			metrics.IncCache("hit")
			return labels, nil
		}
		metrics.IncCache("miss")
	}

	metrics.IncSlotQuery()
	labels, err := s.computeSlots(ctx, salonID, staffID, date, svc.DurationMinutes)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, labels); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("slot cache set error")
		}
	}
	return labels, nil
}

func (s *BookingService) computeSlots(ctx context.Context, salonID int64, staffID *int64, date time.Time, duration int) ([]string, error) {
	if staffID != nil {
		snap, err := s.repo.LoadSnapshot(ctx, salonID, staffID, date)
		if err != nil {
			return nil, err
		}
		return schedule.AvailableSlots(snap, duration, s.cfg.GranularityMinutes), nil
	}

	// любой специалист: объединение по всем активным мастерам
	staff, err := s.repo.GetActiveStaff(ctx, salonID)
	if err != nil {
		return nil, err
	}
	lists := make([][]string, 0, len(staff))
	for _, st := range staff {
		id := st.ID
		snap, err := s.repo.LoadSnapshot(ctx, salonID, &id, date)
		if err != nil {
			return nil, err
		}
		lists = append(lists, schedule.AvailableSlots(snap, duration, s.cfg.GranularityMinutes))
	}
	return schedule.MergeSlots(lists...), nil
}

// ValidateAppointment runs the conflict engine for a concrete request without
// booking anything.
func (s *BookingService) ValidateAppointment(ctx context.Context, salonID int64, staffID *int64, date time.Time, timeLabel string, duration int, excludeID int64) (schedule.Result, error) {
	snap, err := s.repo.LoadSnapshot(ctx, salonID, staffID, date)
	if err != nil {
		return schedule.Result{}, err
	}
	res := schedule.Validate(snap, schedule.Request{
		Time:                 timeLabel,
		DurationMinutes:      duration,
		ExcludeAppointmentID: excludeID,
	})
	if res.OK {
		metrics.IncValidation("ok")
	} else {
		metrics.IncValidation(string(res.Reason))
	}
	return res, nil
}

// CreateAppointment validates and books in two phases: engine check first,
// then a guarded insert so the database resolves write races.
func (s *BookingService) CreateAppointment(ctx context.Context, appt *models.Appointment) error {
	date, err := time.Parse("2006-01-02", appt.Date)
	if err != nil {
		return &ConflictError{Reason: schedule.ReasonInvalidInput}
	}
	if err := s.ValidateBookingDate(date); err != nil {
		return err
	}

	svc, err := s.repo.GetService(ctx, appt.ServiceID)
	if err != nil {
		return err
	}
	appt.ServiceName = svc.Name
	appt.DurationMinutes = svc.DurationMinutes

	res, err := s.ValidateAppointment(ctx, appt.SalonID, appt.StaffID, date, appt.Time, appt.DurationMinutes, 0)
	if err != nil {
		return err
	}
	if !res.OK {
		return &ConflictError{Reason: res.Reason}
	}

	appt.Code = uuid.NewString()
	appt.Status = models.StatusPending

	if err := s.repo.CreateAppointment(ctx, appt); err != nil {
		if errors.Is(err, database.ErrSlotTaken) {
			// вставка проиграла гонку: перепроверяем по свежему снимку,
			// чтобы вернуть точную причину
			res, verr := s.ValidateAppointment(ctx, appt.SalonID, appt.StaffID, date, appt.Time, appt.DurationMinutes, 0)
			if verr == nil && !res.OK {
				return &ConflictError{Reason: res.Reason}
			}
			return &ConflictError{Reason: schedule.ReasonSlotUnavailable}
		}
		return err
	}

	s.publishEvent(events.EventAppointmentCreated, appt, "client")
	s.invalidateSlots(ctx, appt.SalonID, appt.Date)

	return nil
}

// RescheduleAppointment moves an appointment to a new date, time and
// optionally a new specialist. The appointment's own claim is excluded from
// the conflict check so moving within its current slot is legal.
func (s *BookingService) RescheduleAppointment(ctx context.Context, id, version int64, newDate, newTime string, staffID *int64) error {
	appt, err := s.repo.GetAppointment(ctx, id)
	if err != nil {
		return err
	}

	date, err := time.Parse("2006-01-02", newDate)
	if err != nil {
		return &ConflictError{Reason: schedule.ReasonInvalidInput}
	}
	if err := s.ValidateBookingDate(date); err != nil {
		return err
	}

	res, err := s.ValidateAppointment(ctx, appt.SalonID, staffID, date, newTime, appt.DurationMinutes, id)
	if err != nil {
		return err
	}
	if !res.OK {
		return &ConflictError{Reason: res.Reason}
	}

	oldDate := appt.Date
	if err := s.repo.RescheduleAppointment(ctx, id, version, newDate, newTime, staffID); err != nil {
		if errors.Is(err, database.ErrSlotTaken) {
			return &ConflictError{Reason: schedule.ReasonSlotUnavailable}
		}
		return err
	}

	updated, err := s.repo.GetAppointment(ctx, id)
	if err == nil {
		s.publishEvent(events.EventAppointmentRescheduled, updated, "client")
	}
	s.invalidateSlots(ctx, appt.SalonID, oldDate)
	if newDate != oldDate {
		s.invalidateSlots(ctx, appt.SalonID, newDate)
	}

	return nil
}

func (s *BookingService) ConfirmAppointment(ctx context.Context, id, version int64) error {
	return s.transition(ctx, id, version, models.StatusConfirmed, events.EventAppointmentConfirmed)
}

func (s *BookingService) CancelAppointment(ctx context.Context, id, version int64) error {
	return s.transition(ctx, id, version, models.StatusCancelled, events.EventAppointmentCancelled)
}

func (s *BookingService) CompleteAppointment(ctx context.Context, id, version int64) error {
	return s.transition(ctx, id, version, models.StatusCompleted, events.EventAppointmentCompleted)
}

func (s *BookingService) MarkNoShow(ctx context.Context, id, version int64) error {
	return s.transition(ctx, id, version, models.StatusNoShow, events.EventAppointmentNoShow)
}

func (s *BookingService) transition(ctx context.Context, id, version int64, status, eventType string) error {
	if err := s.repo.UpdateAppointmentStatusWithVersion(ctx, id, version, status); err != nil {
		return err
	}

	appt, err := s.repo.GetAppointment(ctx, id)
	if err == nil {
		s.publishEvent(eventType, appt, "salon")
		// отмена и неявка освобождают слот
		if status == models.StatusCancelled || status == models.StatusNoShow {
			s.invalidateSlots(ctx, appt.SalonID, appt.Date)
		}
	}

	return nil
}

func (s *BookingService) GetAppointment(ctx context.Context, id int64) (*models.Appointment, error) {
	return s.repo.GetAppointment(ctx, id)
}

func (s *BookingService) GetAppointmentByCode(ctx context.Context, code string) (*models.Appointment, error) {
	return s.repo.GetAppointmentByCode(ctx, code)
}

func (s *BookingService) GetDaySchedule(ctx context.Context, salonID int64, date string) ([]*models.Staff, []*models.Appointment, error) {
	staff, err := s.repo.GetActiveStaff(ctx, salonID)
	if err != nil {
		return nil, nil, err
	}
	appointments, err := s.repo.GetAppointmentsForDate(ctx, salonID, date)
	if err != nil {
		return nil, nil, err
	}
	return staff, appointments, nil
}

func (s *BookingService) publishEvent(eventType string, appt *models.Appointment, changedBy string) {
	if s.eventBus == nil {
		return
	}

	payload := events.AppointmentEventPayload{
		AppointmentID: appt.ID,
		Code:          appt.Code,
		SalonID:       appt.SalonID,
		StaffID:       appt.StaffID,
		ServiceName:   appt.ServiceName,
		ClientName:    appt.ClientName,
		ClientPhone:   appt.ClientPhone,
		Date:          appt.Date,
		Time:          appt.Time,
		Status:        appt.Status,
		ChangedBy:     changedBy,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("appointment_id", appt.ID).Msg("publish event error")
	}
}

func (s *BookingService) invalidateSlots(ctx context.Context, salonID int64, date string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateDate(ctx, salonID, date); err != nil {
		s.logger.Warn().Err(err).Int64("salon_id", salonID).Str("date", date).Msg("slot cache invalidate error")
	}
}
