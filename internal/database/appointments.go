package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"salonik/internal/models"

	sqlite3 "github.com/mattn/go-sqlite3"
)

const appointmentColumns = `id, code, salon_id, staff_id, service_id, service_name,
    client_name, client_phone, date, time, duration_minutes, status, comment,
    created_at, updated_at, version`

// CreateAppointment inserts the appointment row. The partial unique index on
// (staff_id, date, time) over active statuses closes the validate-then-insert
// race: the loser gets ErrSlotTaken and the caller re-validates.
func (db *DB) CreateAppointment(ctx context.Context, appt *models.Appointment) error {
	now := time.Now()
	res, err := db.db.ExecContext(ctx,
		`INSERT INTO appointments (
            code, salon_id, staff_id, service_id, service_name,
            client_name, client_phone, date, time, duration_minutes,
            status, comment, created_at, updated_at, version
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		appt.Code, appt.SalonID, appt.StaffID, appt.ServiceID, appt.ServiceName,
		appt.ClientName, appt.ClientPhone, appt.Date, appt.Time, appt.DurationMinutes,
		appt.Status, appt.Comment, now, now, 1)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrSlotTaken
		}
		return fmt.Errorf("failed to create appointment: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	appt.ID = id
	appt.CreatedAt = now
	appt.UpdatedAt = now
	appt.Version = 1
	return nil
}

func (db *DB) GetAppointment(ctx context.Context, id int64) (*models.Appointment, error) {
	row := db.db.QueryRowContext(ctx,
		`SELECT `+appointmentColumns+` FROM appointments WHERE id = ?`, id)
	return scanAppointment(row)
}

func (db *DB) GetAppointmentByCode(ctx context.Context, code string) (*models.Appointment, error) {
	row := db.db.QueryRowContext(ctx,
		`SELECT `+appointmentColumns+` FROM appointments WHERE code = ?`, code)
	return scanAppointment(row)
}

// UpdateAppointmentStatusWithVersion flips the status under an optimistic
// version check.
func (db *DB) UpdateAppointmentStatusWithVersion(ctx context.Context, id, version int64, status string) error {
	res, err := db.db.ExecContext(ctx,
		`UPDATE appointments
         SET status = ?, updated_at = ?, version = version + 1
         WHERE id = ? AND version = ?`,
		status, time.Now(), id, version)
	if err != nil {
		return fmt.Errorf("failed to update appointment status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrConcurrentModification
	}
	return nil
}

// RescheduleAppointment moves an appointment to a new (date, time, staff)
// under the version check. The claim index guards the new slot the same way
// it guards inserts.
func (db *DB) RescheduleAppointment(ctx context.Context, id, version int64, date, timeLabel string, staffID *int64) error {
	res, err := db.db.ExecContext(ctx,
		`UPDATE appointments
         SET date = ?, time = ?, staff_id = ?, updated_at = ?, version = version + 1
         WHERE id = ? AND version = ?`,
		date, timeLabel, staffID, time.Now(), id, version)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrSlotTaken
		}
		return fmt.Errorf("failed to reschedule appointment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrConcurrentModification
	}
	return nil
}

// GetAppointmentsForDate lists a salon's appointments on one date, every
// status included; used by the operator panel and exports.
func (db *DB) GetAppointmentsForDate(ctx context.Context, salonID int64, date string) ([]*models.Appointment, error) {
	rows, err := db.db.QueryContext(ctx,
		`SELECT `+appointmentColumns+` FROM appointments
         WHERE salon_id = ? AND date = ? ORDER BY time, id`, salonID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointments: %w", err)
	}
	defer rows.Close()

	var appointments []*models.Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appointments = append(appointments, appt)
	}
	return appointments, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAppointment(row rowScanner) (*models.Appointment, error) {
	var appt models.Appointment
	var staffID sql.NullInt64
	var comment sql.NullString
	err := row.Scan(
		&appt.ID, &appt.Code, &appt.SalonID, &staffID, &appt.ServiceID, &appt.ServiceName,
		&appt.ClientName, &appt.ClientPhone, &appt.Date, &appt.Time, &appt.DurationMinutes,
		&appt.Status, &comment, &appt.CreatedAt, &appt.UpdatedAt, &appt.Version,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan appointment: %w", err)
	}
	if staffID.Valid {
		appt.StaffID = &staffID.Int64
	}
	appt.Comment = comment.String
	return &appt, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
