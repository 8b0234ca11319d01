package models

import "time"

type Appointment struct {
	ID              int64     `json:"id"`
	Code            string    `json:"code"` // public reference, uuid
	SalonID         int64     `json:"salon_id"`
	StaffID         *int64    `json:"staff_id,omitempty"`
	ServiceID       int64     `json:"service_id"`
	ServiceName     string    `json:"service_name"`
	ClientName      string    `json:"client_name"`
	ClientPhone     string    `json:"client_phone"`
	Date            string    `json:"date"` // YYYY-MM-DD
	Time            string    `json:"time"` // HH:MM
	DurationMinutes int       `json:"duration_minutes"`
	Status          string    `json:"status"` // pending, confirmed, completed, cancelled, no_show
	Comment         string    `json:"comment,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	Version         int64     `json:"version"`
}
