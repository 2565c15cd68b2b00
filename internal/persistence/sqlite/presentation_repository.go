package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/campus-scheduler/internal/application"
)

// PresentationRepository implements application.PresentationRepository using
// SQLite. Examiner and student sets live in link tables and are written in
// the same transaction as the presentation row.
type PresentationRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewPresentationRepository creates a new SQLite presentation repository.
func NewPresentationRepository(pool *ConnectionPool) *PresentationRepository {
	return &PresentationRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreatePresentation inserts a presentation with its examiner and student sets.
func (r *PresentationRepository) CreatePresentation(ctx context.Context, presentation application.Presentation) (application.Presentation, error) {
	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		_, err := r.helper.ExecTx(tx,
			`INSERT INTO presentations (id, title, department, date, start_min, end_min, duration_min, venue_id, num_examiners, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			presentation.ID, presentation.Title, presentation.Department, presentation.Date,
			presentation.Start, presentation.End, presentation.DurationMin,
			presentation.VenueID, presentation.NumExaminers,
			presentation.CreatedAt.UTC().Format(time.RFC3339), presentation.UpdatedAt.UTC().Format(time.RFC3339))
		if err != nil {
			return r.mapper.MapError(err)
		}

		for _, examinerID := range presentation.ExaminerIDs {
			if _, err := r.helper.ExecTx(tx,
				"INSERT INTO presentation_examiners (presentation_id, examiner_id) VALUES (?, ?)",
				presentation.ID, examinerID); err != nil {
				return r.mapper.MapError(err)
			}
		}
		for _, studentID := range presentation.StudentIDs {
			if _, err := r.helper.ExecTx(tx,
				"INSERT INTO presentation_students (presentation_id, student_id) VALUES (?, ?)",
				presentation.ID, studentID); err != nil {
				return r.mapper.MapError(err)
			}
		}
		return nil
	})
	if err != nil {
		return application.Presentation{}, mapRepoError(err)
	}
	return presentation, nil
}

const presentationColumns = `SELECT id, title, department, date, start_min, end_min, duration_min, venue_id, num_examiners, created_at, updated_at FROM presentations`

// GetPresentation fetches one presentation by internal identifier.
func (r *PresentationRepository) GetPresentation(ctx context.Context, id string) (application.Presentation, error) {
	presentation, err := r.scanPresentation(r.helper.QueryRow(ctx, presentationColumns+" WHERE id = ?", id))
	if err != nil {
		return application.Presentation{}, err
	}
	if err := r.loadParticipants(ctx, &presentation); err != nil {
		return application.Presentation{}, err
	}
	return presentation, nil
}

// UpdatePresentationSlot moves a presentation to a new date, time and venue.
func (r *PresentationRepository) UpdatePresentationSlot(ctx context.Context, id, date string, start, end int, venueID string, updatedAt time.Time) (application.Presentation, error) {
	result, err := r.helper.Exec(ctx,
		`UPDATE presentations SET date = ?, start_min = ?, end_min = ?, duration_min = ?, venue_id = ?, updated_at = ? WHERE id = ?`,
		date, start, end, end-start, venueID, updatedAt.UTC().Format(time.RFC3339), id)
	if err != nil {
		return application.Presentation{}, mapRepoError(r.mapper.MapError(err))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return application.Presentation{}, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return application.Presentation{}, application.ErrNotFound
	}
	return r.GetPresentation(ctx, id)
}

// ListPresentations lists every presentation ordered by date then start time.
func (r *PresentationRepository) ListPresentations(ctx context.Context) ([]application.Presentation, error) {
	return r.list(ctx, presentationColumns+" ORDER BY date ASC, start_min ASC, id ASC")
}

// ListPresentationsByDate lists the presentations of one calendar day.
func (r *PresentationRepository) ListPresentationsByDate(ctx context.Context, date string) ([]application.Presentation, error) {
	return r.list(ctx, presentationColumns+" WHERE date = ? ORDER BY start_min ASC, id ASC", date)
}

// ListPresentationsBetween lists presentations within an inclusive date range.
func (r *PresentationRepository) ListPresentationsBetween(ctx context.Context, from, to string) ([]application.Presentation, error) {
	return r.list(ctx, presentationColumns+" WHERE date >= ? AND date <= ? ORDER BY date ASC, start_min ASC, id ASC", from, to)
}

func (r *PresentationRepository) list(ctx context.Context, query string, args ...interface{}) ([]application.Presentation, error) {
	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, mapRepoError(r.mapper.MapError(err))
	}
	defer rows.Close()

	var presentations []application.Presentation
	for rows.Next() {
		var presentation application.Presentation
		var createdAt, updatedAt string
		if err := rows.Scan(
			&presentation.ID, &presentation.Title, &presentation.Department, &presentation.Date,
			&presentation.Start, &presentation.End, &presentation.DurationMin,
			&presentation.VenueID, &presentation.NumExaminers,
			&createdAt, &updatedAt,
		); err != nil {
			return nil, mapRepoError(r.mapper.MapError(err))
		}
		if presentation.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		if presentation.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
			return nil, fmt.Errorf("failed to parse updated_at: %w", err)
		}
		presentations = append(presentations, presentation)
	}
	if err := rows.Err(); err != nil {
		return nil, mapRepoError(r.mapper.MapError(err))
	}

	for i := range presentations {
		if err := r.loadParticipants(ctx, &presentations[i]); err != nil {
			return nil, err
		}
	}
	return presentations, nil
}

func (r *PresentationRepository) scanPresentation(row *sql.Row) (application.Presentation, error) {
	var presentation application.Presentation
	var createdAt, updatedAt string
	err := row.Scan(
		&presentation.ID, &presentation.Title, &presentation.Department, &presentation.Date,
		&presentation.Start, &presentation.End, &presentation.DurationMin,
		&presentation.VenueID, &presentation.NumExaminers,
		&createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return application.Presentation{}, application.ErrNotFound
		}
		return application.Presentation{}, mapRepoError(r.mapper.MapError(err))
	}
	if presentation.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return application.Presentation{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if presentation.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return application.Presentation{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return presentation, nil
}

func (r *PresentationRepository) loadParticipants(ctx context.Context, presentation *application.Presentation) error {
	examiners, err := r.loadLinks(ctx,
		"SELECT examiner_id FROM presentation_examiners WHERE presentation_id = ? ORDER BY examiner_id ASC",
		presentation.ID)
	if err != nil {
		return err
	}
	students, err := r.loadLinks(ctx,
		"SELECT student_id FROM presentation_students WHERE presentation_id = ? ORDER BY student_id ASC",
		presentation.ID)
	if err != nil {
		return err
	}
	presentation.ExaminerIDs = examiners
	presentation.StudentIDs = students
	return nil
}

func (r *PresentationRepository) loadLinks(ctx context.Context, query, presentationID string) ([]string, error) {
	rows, err := r.helper.Query(ctx, query, presentationID)
	if err != nil {
		return nil, mapRepoError(r.mapper.MapError(err))
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, mapRepoError(r.mapper.MapError(err))
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, mapRepoError(r.mapper.MapError(err))
	}
	return ids, nil
}
