package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"salonik/internal/schedule"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

type DB struct {
	db     *sql.DB
	logger *zerolog.Logger
}

func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	d := &DB{db: db, logger: logger}

	if err := d.backfillBufferSides(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to backfill buffer sides: %w", err)
	}

	logger.Info().Str("path", path).Msg("database initialized")
	return d, nil
}

func (db *DB) Close() error {
	return db.db.Close()
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS salons (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL,
            phone TEXT,
            is_active BOOLEAN NOT NULL DEFAULT 1,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS staff (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            salon_id INTEGER NOT NULL,
            name TEXT NOT NULL,
            role TEXT,
            is_active BOOLEAN NOT NULL DEFAULT 1,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS services (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            salon_id INTEGER NOT NULL,
            name TEXT NOT NULL,
            duration_minutes INTEGER NOT NULL,
            price_grosze INTEGER NOT NULL DEFAULT 0,
            is_active BOOLEAN NOT NULL DEFAULT 1
        )`,
		// Недельные шаблоны: одна строка на (владелец, день недели)
		`CREATE TABLE IF NOT EXISTS weekly_hours (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            owner_kind TEXT NOT NULL,
            owner_id INTEGER NOT NULL,
            weekday INTEGER NOT NULL,
            active BOOLEAN NOT NULL DEFAULT 1,
            open TEXT,
            close TEXT,
            UNIQUE(owner_kind, owner_id, weekday)
        )`,
		`CREATE TABLE IF NOT EXISTS date_exceptions (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            owner_kind TEXT NOT NULL,
            owner_id INTEGER NOT NULL,
            date TEXT NOT NULL,
            closed BOOLEAN NOT NULL DEFAULT 0,
            start_time TEXT,
            end_time TEXT,
            UNIQUE(owner_kind, owner_id, date)
        )`,
		`CREATE TABLE IF NOT EXISTS break_rules (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            salon_id INTEGER NOT NULL,
            kind TEXT NOT NULL,
            day_codes TEXT NOT NULL DEFAULT '',
            start_time TEXT,
            end_time TEXT,
            minutes INTEGER NOT NULL DEFAULT 0,
            label TEXT NOT NULL DEFAULT '',
            side TEXT NOT NULL DEFAULT ''
        )`,
		`CREATE TABLE IF NOT EXISTS appointments (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            code TEXT UNIQUE NOT NULL,
            salon_id INTEGER NOT NULL,
            staff_id INTEGER,
            service_id INTEGER NOT NULL,
            service_name TEXT NOT NULL,
            client_name TEXT NOT NULL,
            client_phone TEXT NOT NULL,
            date TEXT NOT NULL,
            time TEXT NOT NULL,
            duration_minutes INTEGER NOT NULL,
            status TEXT NOT NULL DEFAULT 'pending',
            comment TEXT,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            version INTEGER NOT NULL DEFAULT 1
        )`,

		`CREATE INDEX IF NOT EXISTS idx_appointments_salon_date ON appointments(salon_id, date)`,
		`CREATE INDEX IF NOT EXISTS idx_appointments_staff_date ON appointments(staff_id, date)`,
		`CREATE INDEX IF NOT EXISTS idx_appointments_status ON appointments(status)`,
		`CREATE INDEX IF NOT EXISTS idx_weekly_hours_owner ON weekly_hours(owner_kind, owner_id)`,
		`CREATE INDEX IF NOT EXISTS idx_date_exceptions_owner ON date_exceptions(owner_kind, owner_id, date)`,
		`CREATE INDEX IF NOT EXISTS idx_break_rules_salon ON break_rules(salon_id)`,

		// Страховка от двойного бронирования: validate-then-insert не
		// атомарен, гонку закрывает этот индекс
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_appointments_claim
            ON appointments(staff_id, date, time)
            WHERE status NOT IN ('cancelled', 'no_show') AND staff_id IS NOT NULL`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

// backfillBufferSides is a one-time inference for buffer rows created before
// the side column existed: the side is derived from the label once, at
// startup, so runtime classification never depends on label sniffing for
// migrated data.
func (db *DB) backfillBufferSides(ctx context.Context) error {
	rows, err := db.db.QueryContext(ctx,
		`SELECT id, label FROM break_rules WHERE kind = 'buffer' AND side = ''`)
	if err != nil {
		return err
	}
	defer rows.Close()

	type pending struct {
		id    int64
		label string
	}
	var updates []pending
	for rows.Next() {
		var p pending
		if err := rows.Scan(&p.id, &p.label); err != nil {
			return err
		}
		updates = append(updates, p)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, p := range updates {
		side := schedule.InferBufferSide(p.label)
		if _, err := db.db.ExecContext(ctx,
			`UPDATE break_rules SET side = ? WHERE id = ?`, side, p.id); err != nil {
			return err
		}
		db.logger.Debug().Int64("rule_id", p.id).Str("side", side).Msg("backfilled buffer side")
	}
	return nil
}
