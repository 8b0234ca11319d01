package domain

import (
	"context"
	"time"

	"salonik/internal/models"
	"salonik/internal/schedule"
)

type Repository interface {
	LoadSnapshot(ctx context.Context, salonID int64, staffID *int64, date time.Time) (*schedule.Snapshot, error)
	GetActiveStaff(ctx context.Context, salonID int64) ([]*models.Staff, error)
	GetService(ctx context.Context, id int64) (*models.Service, error)

	CreateAppointment(ctx context.Context, appt *models.Appointment) error
	GetAppointment(ctx context.Context, id int64) (*models.Appointment, error)
	GetAppointmentByCode(ctx context.Context, code string) (*models.Appointment, error)
	UpdateAppointmentStatusWithVersion(ctx context.Context, id, version int64, status string) error
	RescheduleAppointment(ctx context.Context, id, version int64, date, timeLabel string, staffID *int64) error
	GetAppointmentsForDate(ctx context.Context, salonID int64, date string) ([]*models.Appointment, error)

	SetWeeklyHours(ctx context.Context, wh *models.WeeklyHours) error
	SetDateException(ctx context.Context, exc *models.DateException) error
	CreateBreakRule(ctx context.Context, rule *models.BreakRule) error
}

// SlotCache holds generated slot label lists for a short TTL. A miss is
// (nil, false, nil); errors are infrastructure failures, not misses.
type SlotCache interface {
	Get(ctx context.Context, key string) ([]string, bool, error)
	Set(ctx context.Context, key string, labels []string) error
	InvalidateDate(ctx context.Context, salonID int64, date string) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// NotificationSender delivers one client notification. Delivery transports
// (SMS, email) live outside this service.
type NotificationSender interface {
	Send(ctx context.Context, phone, message string) error
}
