package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/campus-scheduler/internal/application"
	"github.com/example/campus-scheduler/internal/scheduler"
)

// TimetableRepository implements application.TimetableRepository using SQLite.
// A timetable row carries the document identity; its lectures live in
// timetable_lectures and are replaced wholesale on update.
type TimetableRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewTimetableRepository creates a new SQLite timetable repository.
func NewTimetableRepository(pool *ConnectionPool) *TimetableRepository {
	return &TimetableRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateTimetable inserts a timetable and its lectures.
func (r *TimetableRepository) CreateTimetable(ctx context.Context, timetable application.Timetable) (application.Timetable, error) {
	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		_, err := r.helper.ExecTx(tx,
			"INSERT INTO timetables (id, group_id, created_at, updated_at) VALUES (?, ?, ?, ?)",
			timetable.ID, timetable.GroupID,
			timetable.CreatedAt.UTC().Format(time.RFC3339), timetable.UpdatedAt.UTC().Format(time.RFC3339))
		if err != nil {
			return r.mapper.MapError(err)
		}
		return r.insertLectures(tx, timetable)
	})
	if err != nil {
		return application.Timetable{}, mapRepoError(err)
	}
	return timetable, nil
}

// UpdateTimetable replaces a timetable's group binding and full lecture set.
func (r *TimetableRepository) UpdateTimetable(ctx context.Context, timetable application.Timetable) (application.Timetable, error) {
	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := r.helper.ExecTx(tx,
			"UPDATE timetables SET group_id = ?, updated_at = ? WHERE id = ?",
			timetable.GroupID, timetable.UpdatedAt.UTC().Format(time.RFC3339), timetable.ID)
		if err != nil {
			return r.mapper.MapError(err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if affected == 0 {
			return application.ErrNotFound
		}

		if _, err := r.helper.ExecTx(tx, "DELETE FROM timetable_lectures WHERE timetable_id = ?", timetable.ID); err != nil {
			return r.mapper.MapError(err)
		}
		return r.insertLectures(tx, timetable)
	})
	if err != nil {
		return application.Timetable{}, mapRepoError(err)
	}
	return timetable, nil
}

// GetTimetable fetches a timetable by internal identifier.
func (r *TimetableRepository) GetTimetable(ctx context.Context, id string) (application.Timetable, error) {
	return r.get(ctx, "id = ?", id)
}

// GetTimetableByGroup fetches the timetable of one student group.
func (r *TimetableRepository) GetTimetableByGroup(ctx context.Context, groupID string) (application.Timetable, error) {
	return r.get(ctx, "group_id = ?", groupID)
}

func (r *TimetableRepository) get(ctx context.Context, where string, arg string) (application.Timetable, error) {
	var timetable application.Timetable
	var createdAt, updatedAt string
	err := r.helper.QueryRow(ctx, "SELECT id, group_id, created_at, updated_at FROM timetables WHERE "+where, arg).
		Scan(&timetable.ID, &timetable.GroupID, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return application.Timetable{}, application.ErrNotFound
		}
		return application.Timetable{}, mapRepoError(r.mapper.MapError(err))
	}
	if timetable.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return application.Timetable{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if timetable.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return application.Timetable{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	if timetable.Week, err = r.loadWeek(ctx, timetable.ID); err != nil {
		return application.Timetable{}, err
	}
	return timetable, nil
}

// ListTimetableEntries flattens every stored timetable into per-lecture rows.
func (r *TimetableRepository) ListTimetableEntries(ctx context.Context) ([]scheduler.TimetableEntry, error) {
	rows, err := r.helper.Query(ctx,
		`SELECT l.timetable_id, t.group_id, l.day, l.start_min, l.end_min, l.lecturer_id, l.venue_id
		 FROM timetable_lectures l
		 JOIN timetables t ON t.id = l.timetable_id
		 ORDER BY l.timetable_id, l.day, l.start_min`)
	if err != nil {
		return nil, mapRepoError(r.mapper.MapError(err))
	}
	defer rows.Close()

	var entries []scheduler.TimetableEntry
	for rows.Next() {
		var entry scheduler.TimetableEntry
		if err := rows.Scan(&entry.TimetableID, &entry.GroupID, &entry.Day, &entry.Interval.Start, &entry.Interval.End, &entry.LecturerID, &entry.VenueID); err != nil {
			return nil, mapRepoError(r.mapper.MapError(err))
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, mapRepoError(r.mapper.MapError(err))
	}
	return entries, nil
}

// CountLecturesForLecturers counts timetable lecture rows per lecturer.
// Lecturers with no rows are absent from the result.
func (r *TimetableRepository) CountLecturesForLecturers(ctx context.Context, lecturerIDs []string) (map[string]int, error) {
	counts := make(map[string]int, len(lecturerIDs))
	if len(lecturerIDs) == 0 {
		return counts, nil
	}

	placeholders := make([]string, len(lecturerIDs))
	args := make([]interface{}, len(lecturerIDs))
	for i, id := range lecturerIDs {
		placeholders[i] = "?"
		args[i] = id
	}

	rows, err := r.helper.Query(ctx,
		"SELECT lecturer_id, COUNT(*) FROM timetable_lectures WHERE lecturer_id IN ("+strings.Join(placeholders, ",")+") GROUP BY lecturer_id",
		args...)
	if err != nil {
		return nil, mapRepoError(r.mapper.MapError(err))
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var count int
		if err := rows.Scan(&id, &count); err != nil {
			return nil, mapRepoError(r.mapper.MapError(err))
		}
		counts[id] = count
	}
	if err := rows.Err(); err != nil {
		return nil, mapRepoError(r.mapper.MapError(err))
	}
	return counts, nil
}

func (r *TimetableRepository) insertLectures(tx *sql.Tx, timetable application.Timetable) error {
	for _, day := range timetable.Week {
		for _, lecture := range day.Lectures {
			if _, err := r.helper.ExecTx(tx,
				`INSERT INTO timetable_lectures (timetable_id, day, start_min, end_min, module_id, lecturer_id, venue_id)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				timetable.ID, day.Day, lecture.Start, lecture.End, lecture.ModuleID, lecture.LecturerID, lecture.VenueID); err != nil {
				return r.mapper.MapError(err)
			}
		}
	}
	return nil
}

func (r *TimetableRepository) loadWeek(ctx context.Context, timetableID string) ([]application.TimetableDay, error) {
	rows, err := r.helper.Query(ctx,
		`SELECT day, start_min, end_min, module_id, lecturer_id, venue_id
		 FROM timetable_lectures WHERE timetable_id = ? ORDER BY day, start_min`,
		timetableID)
	if err != nil {
		return nil, mapRepoError(r.mapper.MapError(err))
	}
	defer rows.Close()

	byDay := make(map[string][]application.TimetableLecture)
	for rows.Next() {
		var day string
		var lecture application.TimetableLecture
		if err := rows.Scan(&day, &lecture.Start, &lecture.End, &lecture.ModuleID, &lecture.LecturerID, &lecture.VenueID); err != nil {
			return nil, mapRepoError(r.mapper.MapError(err))
		}
		byDay[day] = append(byDay[day], lecture)
	}
	if err := rows.Err(); err != nil {
		return nil, mapRepoError(r.mapper.MapError(err))
	}

	var week []application.TimetableDay
	for _, day := range scheduler.WeekDays {
		if lectures, ok := byDay[day]; ok {
			week = append(week, application.TimetableDay{Day: day, Lectures: lectures})
		}
	}
	return week, nil
}
