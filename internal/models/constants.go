package models

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusNoShow    = "no_show"
)

// ActiveStatuses are the appointment statuses that occupy time on the
// schedule. Cancelled and no-show rows stay in the table but never conflict.
var ActiveStatuses = []string{StatusPending, StatusConfirmed, StatusCompleted}

// IsActiveStatus reports whether an appointment in this status claims its slot.
func IsActiveStatus(status string) bool {
	return status != StatusCancelled && status != StatusNoShow
}

const (
	// DefaultGranularityMinutes шаг сетки слотов по умолчанию
	DefaultGranularityMinutes = 30

	// DefaultMaxBookingDays максимальный горизонт бронирования
	DefaultMaxBookingDays = 90

	// DefaultSlotCacheTTL время жизни кэша слотов в секундах
	DefaultSlotCacheTTL = 60

	// ReminderQueueSize размер очереди напоминаний
	ReminderQueueSize = 1000

	// RateLimitRPS значения по умолчанию для ограничения частоты запросов API
	RateLimitRPS   = 10
	RateLimitBurst = 20
)
