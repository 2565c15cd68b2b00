package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// migrations is the ordered schema history. Entries are append-only; each
// version is applied at most once, tracked in schema_migrations.
var migrations = []struct {
	version int
	name    string
	stmts   []string
}{
	{
		version: 1,
		name:    "directory",
		stmts: []string{
			`CREATE TABLE students (
				id TEXT PRIMARY KEY,
				code TEXT NOT NULL UNIQUE,
				name TEXT NOT NULL,
				email TEXT NOT NULL,
				department TEXT NOT NULL,
				group_id TEXT NOT NULL DEFAULT '',
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE TABLE examiners (
				id TEXT PRIMARY KEY,
				code TEXT NOT NULL UNIQUE,
				name TEXT NOT NULL,
				email TEXT NOT NULL,
				department TEXT NOT NULL,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE TABLE venues (
				id TEXT PRIMARY KEY,
				code TEXT NOT NULL UNIQUE,
				name TEXT NOT NULL,
				capacity INTEGER NOT NULL DEFAULT 0,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE TABLE modules (
				id TEXT PRIMARY KEY,
				code TEXT NOT NULL UNIQUE,
				title TEXT NOT NULL,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
		},
	},
	{
		version: 2,
		name:    "sequences",
		stmts: []string{
			`CREATE TABLE sequences (
				name TEXT PRIMARY KEY,
				value INTEGER NOT NULL DEFAULT 0
			)`,
		},
	},
	{
		version: 3,
		name:    "groups",
		stmts: []string{
			`CREATE TABLE student_groups (
				id TEXT PRIMARY KEY,
				code TEXT NOT NULL UNIQUE,
				department TEXT NOT NULL,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
		},
	},
	{
		version: 4,
		name:    "presentations",
		stmts: []string{
			`CREATE TABLE presentations (
				id TEXT PRIMARY KEY,
				title TEXT NOT NULL,
				department TEXT NOT NULL,
				date TEXT NOT NULL,
				start_min INTEGER NOT NULL,
				end_min INTEGER NOT NULL,
				duration_min INTEGER NOT NULL,
				venue_id TEXT NOT NULL REFERENCES venues(id),
				num_examiners INTEGER NOT NULL,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL,
				CHECK (start_min < end_min)
			)`,
			`CREATE INDEX idx_presentations_date ON presentations(date)`,
			`CREATE TABLE presentation_examiners (
				presentation_id TEXT NOT NULL REFERENCES presentations(id) ON DELETE CASCADE,
				examiner_id TEXT NOT NULL REFERENCES examiners(id),
				PRIMARY KEY (presentation_id, examiner_id)
			)`,
			`CREATE TABLE presentation_students (
				presentation_id TEXT NOT NULL REFERENCES presentations(id) ON DELETE CASCADE,
				student_id TEXT NOT NULL REFERENCES students(id),
				PRIMARY KEY (presentation_id, student_id)
			)`,
		},
	},
	{
		version: 5,
		name:    "timetables",
		stmts: []string{
			`CREATE TABLE timetables (
				id TEXT PRIMARY KEY,
				group_id TEXT NOT NULL UNIQUE REFERENCES student_groups(id),
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE TABLE timetable_lectures (
				timetable_id TEXT NOT NULL REFERENCES timetables(id) ON DELETE CASCADE,
				day TEXT NOT NULL,
				start_min INTEGER NOT NULL,
				end_min INTEGER NOT NULL,
				module_id TEXT NOT NULL REFERENCES modules(id),
				lecturer_id TEXT NOT NULL REFERENCES examiners(id),
				venue_id TEXT NOT NULL REFERENCES venues(id),
				CHECK (start_min < end_min)
			)`,
			`CREATE INDEX idx_timetable_lectures_day ON timetable_lectures(day)`,
		},
	},
	{
		version: 6,
		name:    "reschedule_requests",
		stmts: []string{
			`CREATE TABLE reschedule_requests (
				id TEXT PRIMARY KEY,
				presentation_id TEXT NOT NULL REFERENCES presentations(id),
				requested_by TEXT NOT NULL,
				requested_role TEXT NOT NULL,
				requestor_email TEXT NOT NULL DEFAULT '',
				date TEXT NOT NULL,
				start_min INTEGER NOT NULL,
				end_min INTEGER NOT NULL,
				venue_id TEXT NOT NULL REFERENCES venues(id),
				reason TEXT NOT NULL,
				status TEXT NOT NULL,
				created_at TEXT NOT NULL,
				decided_at TEXT
			)`,
			`CREATE INDEX idx_reschedule_requests_status ON reschedule_requests(status)`,
		},
	},
	{
		version: 7,
		name:    "users_sessions",
		stmts: []string{
			`CREATE TABLE users (
				id TEXT PRIMARY KEY,
				email TEXT NOT NULL UNIQUE,
				display_name TEXT NOT NULL,
				role TEXT NOT NULL,
				is_admin INTEGER NOT NULL DEFAULT 0,
				password_hash TEXT NOT NULL,
				disabled INTEGER NOT NULL DEFAULT 0,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE TABLE sessions (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL REFERENCES users(id),
				token TEXT NOT NULL UNIQUE,
				expires_at TEXT NOT NULL,
				created_at TEXT NOT NULL,
				revoked_at TEXT
			)`,
		},
	},
}

// Migrate brings the schema up to date, applying any versions not yet
// recorded in schema_migrations. Each version runs in its own transaction.
func Migrate(ctx context.Context, pool *ConnectionPool) error {
	if _, err := pool.DB().ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	for _, migration := range migrations {
		var exists int
		err := pool.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations WHERE version = ?", migration.version).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check migration %d: %w", migration.version, err)
		}
		if exists > 0 {
			continue
		}

		err = pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			for _, stmt := range migration.stmts {
				if _, err := tx.Exec(stmt); err != nil {
					return fmt.Errorf("migration %d (%s): %w", migration.version, migration.name, err)
				}
			}
			_, err := tx.Exec("INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, datetime('now'))",
				migration.version, migration.name)
			return err
		})
		if err != nil {
			return err
		}
	}

	return nil
}
