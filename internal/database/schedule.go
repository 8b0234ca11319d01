package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"salonik/internal/models"
	"salonik/internal/schedule"
)

func (db *DB) CreateSalon(ctx context.Context, salon *models.Salon) error {
	res, err := db.db.ExecContext(ctx,
		`INSERT INTO salons (name, phone, is_active) VALUES (?, ?, ?)`,
		salon.Name, salon.Phone, salon.IsActive)
	if err != nil {
		return fmt.Errorf("failed to create salon: %w", err)
	}
	salon.ID, err = res.LastInsertId()
	return err
}

func (db *DB) CreateStaff(ctx context.Context, staff *models.Staff) error {
	res, err := db.db.ExecContext(ctx,
		`INSERT INTO staff (salon_id, name, role, is_active) VALUES (?, ?, ?, ?)`,
		staff.SalonID, staff.Name, staff.Role, staff.IsActive)
	if err != nil {
		return fmt.Errorf("failed to create staff: %w", err)
	}
	staff.ID, err = res.LastInsertId()
	return err
}

func (db *DB) CreateService(ctx context.Context, service *models.Service) error {
	res, err := db.db.ExecContext(ctx,
		`INSERT INTO services (salon_id, name, duration_minutes, price_grosze, is_active)
         VALUES (?, ?, ?, ?, ?)`,
		service.SalonID, service.Name, service.DurationMinutes, service.PriceGrosze, service.IsActive)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	service.ID, err = res.LastInsertId()
	return err
}

func (db *DB) GetService(ctx context.Context, id int64) (*models.Service, error) {
	var s models.Service
	err := db.db.QueryRowContext(ctx,
		`SELECT id, salon_id, name, duration_minutes, price_grosze, is_active
         FROM services WHERE id = ?`, id).
		Scan(&s.ID, &s.SalonID, &s.Name, &s.DurationMinutes, &s.PriceGrosze, &s.IsActive)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	return &s, nil
}

func (db *DB) GetActiveStaff(ctx context.Context, salonID int64) ([]*models.Staff, error) {
	rows, err := db.db.QueryContext(ctx,
		`SELECT id, salon_id, name, role, is_active, created_at, updated_at
         FROM staff WHERE salon_id = ? AND is_active = 1 ORDER BY id`, salonID)
	if err != nil {
		return nil, fmt.Errorf("failed to get staff: %w", err)
	}
	defer rows.Close()

	var staff []*models.Staff
	for rows.Next() {
		var s models.Staff
		if err := rows.Scan(&s.ID, &s.SalonID, &s.Name, &s.Role, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		staff = append(staff, &s)
	}
	return staff, rows.Err()
}

// SetWeeklyHours replaces one weekday row of an owner's weekly template.
func (db *DB) SetWeeklyHours(ctx context.Context, wh *models.WeeklyHours) error {
	_, err := db.db.ExecContext(ctx,
		`INSERT INTO weekly_hours (owner_kind, owner_id, weekday, active, open, close)
         VALUES (?, ?, ?, ?, ?, ?)
         ON CONFLICT(owner_kind, owner_id, weekday)
         DO UPDATE SET active = excluded.active, open = excluded.open, close = excluded.close`,
		wh.OwnerKind, wh.OwnerID, wh.Weekday, wh.Active, wh.Open, wh.Close)
	if err != nil {
		return fmt.Errorf("failed to set weekly hours: %w", err)
	}
	return nil
}

// SetDateException replaces an owner's exception for one date.
func (db *DB) SetDateException(ctx context.Context, exc *models.DateException) error {
	_, err := db.db.ExecContext(ctx,
		`INSERT INTO date_exceptions (owner_kind, owner_id, date, closed, start_time, end_time)
         VALUES (?, ?, ?, ?, ?, ?)
         ON CONFLICT(owner_kind, owner_id, date)
         DO UPDATE SET closed = excluded.closed, start_time = excluded.start_time, end_time = excluded.end_time`,
		exc.OwnerKind, exc.OwnerID, exc.Date, exc.Closed, exc.Start, exc.End)
	if err != nil {
		return fmt.Errorf("failed to set date exception: %w", err)
	}
	return nil
}

func (db *DB) CreateBreakRule(ctx context.Context, rule *models.BreakRule) error {
	if rule.Kind == models.BreakKindBuffer && rule.Side == "" {
		rule.Side = schedule.InferBufferSide(rule.Label)
	}
	res, err := db.db.ExecContext(ctx,
		`INSERT INTO break_rules (salon_id, kind, day_codes, start_time, end_time, minutes, label, side)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rule.SalonID, rule.Kind, rule.DayCodes, rule.Start, rule.End, rule.Minutes, rule.Label, rule.Side)
	if err != nil {
		return fmt.Errorf("failed to create break rule: %w", err)
	}
	rule.ID, err = res.LastInsertId()
	return err
}

func (db *DB) getWeeklyHours(ctx context.Context, ownerKind string, ownerID int64) ([]models.WeeklyHours, error) {
	rows, err := db.db.QueryContext(ctx,
		`SELECT id, owner_kind, owner_id, weekday, active, open, close
         FROM weekly_hours WHERE owner_kind = ? AND owner_id = ? ORDER BY weekday`,
		ownerKind, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get weekly hours: %w", err)
	}
	defer rows.Close()

	var hours []models.WeeklyHours
	for rows.Next() {
		var wh models.WeeklyHours
		var open, close sql.NullString
		if err := rows.Scan(&wh.ID, &wh.OwnerKind, &wh.OwnerID, &wh.Weekday, &wh.Active, &open, &close); err != nil {
			return nil, err
		}
		wh.Open, wh.Close = open.String, close.String
		hours = append(hours, wh)
	}
	return hours, rows.Err()
}

func (db *DB) getDateExceptions(ctx context.Context, ownerKind string, ownerID int64, date string) ([]models.DateException, error) {
	rows, err := db.db.QueryContext(ctx,
		`SELECT id, owner_kind, owner_id, date, closed, start_time, end_time
         FROM date_exceptions WHERE owner_kind = ? AND owner_id = ? AND date = ?`,
		ownerKind, ownerID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to get date exceptions: %w", err)
	}
	defer rows.Close()

	var exceptions []models.DateException
	for rows.Next() {
		var exc models.DateException
		var start, end sql.NullString
		if err := rows.Scan(&exc.ID, &exc.OwnerKind, &exc.OwnerID, &exc.Date, &exc.Closed, &start, &end); err != nil {
			return nil, err
		}
		exc.Start, exc.End = start.String, end.String
		exceptions = append(exceptions, exc)
	}
	return exceptions, rows.Err()
}

func (db *DB) getBreakRules(ctx context.Context, salonID int64) ([]models.BreakRule, error) {
	rows, err := db.db.QueryContext(ctx,
		`SELECT id, salon_id, kind, day_codes, start_time, end_time, minutes, label, side
         FROM break_rules WHERE salon_id = ? ORDER BY id`, salonID)
	if err != nil {
		return nil, fmt.Errorf("failed to get break rules: %w", err)
	}
	defer rows.Close()

	var rules []models.BreakRule
	for rows.Next() {
		var r models.BreakRule
		var start, end sql.NullString
		if err := rows.Scan(&r.ID, &r.SalonID, &r.Kind, &r.DayCodes, &start, &end, &r.Minutes, &r.Label, &r.Side); err != nil {
			return nil, err
		}
		r.Start, r.End = start.String, end.String
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

// LoadSnapshot fetches everything the availability engine needs for one
// (salon, staff?, date) question. Claims are loaded only when a staff
// filter is given; terminal statuses are filtered out here and again by
// the engine.
func (db *DB) LoadSnapshot(ctx context.Context, salonID int64, staffID *int64, date time.Time) (*schedule.Snapshot, error) {
	dateStr := date.Format("2006-01-02")

	snap := &schedule.Snapshot{Date: date, StaffID: staffID}

	var err error
	if snap.SalonHours, err = db.getWeeklyHours(ctx, models.OwnerSalon, salonID); err != nil {
		return nil, err
	}
	if snap.SalonExceptions, err = db.getDateExceptions(ctx, models.OwnerSalon, salonID, dateStr); err != nil {
		return nil, err
	}
	if snap.BreakRules, err = db.getBreakRules(ctx, salonID); err != nil {
		return nil, err
	}

	if staffID != nil {
		if snap.StaffHours, err = db.getWeeklyHours(ctx, models.OwnerStaff, *staffID); err != nil {
			return nil, err
		}
		if snap.StaffExceptions, err = db.getDateExceptions(ctx, models.OwnerStaff, *staffID, dateStr); err != nil {
			return nil, err
		}
		if snap.Claims, err = db.getClaims(ctx, *staffID, dateStr); err != nil {
			return nil, err
		}
	}

	return snap, nil
}

func (db *DB) getClaims(ctx context.Context, staffID int64, date string) ([]schedule.Claim, error) {
	rows, err := db.db.QueryContext(ctx,
		`SELECT id, time, duration_minutes, status
         FROM appointments
         WHERE staff_id = ? AND date = ? AND status NOT IN (?, ?)`,
		staffID, date, models.StatusCancelled, models.StatusNoShow)
	if err != nil {
		return nil, fmt.Errorf("failed to get claims: %w", err)
	}
	defer rows.Close()

	var claims []schedule.Claim
	for rows.Next() {
		var c schedule.Claim
		if err := rows.Scan(&c.AppointmentID, &c.Time, &c.DurationMinutes, &c.Status); err != nil {
			return nil, err
		}
		claims = append(claims, c)
	}
	return claims, rows.Err()
}
