package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/campus-scheduler/internal/application"
)

// DirectoryRepository implements application.DirectoryRepository using SQLite.
type DirectoryRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewDirectoryRepository creates a new SQLite directory repository.
func NewDirectoryRepository(pool *ConnectionPool) *DirectoryRepository {
	return &DirectoryRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateStudent inserts a student record.
func (r *DirectoryRepository) CreateStudent(ctx context.Context, student application.Student) (application.Student, error) {
	_, err := r.helper.Exec(ctx,
		`INSERT INTO students (id, code, name, email, department, group_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		student.ID, student.Code, student.Name, student.Email, student.Department, student.GroupID,
		student.CreatedAt.UTC().Format(time.RFC3339), student.UpdatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return application.Student{}, mapRepoError(r.mapper.MapError(err))
	}
	return student, nil
}

// GetStudent fetches a student by internal identifier.
func (r *DirectoryRepository) GetStudent(ctx context.Context, id string) (application.Student, error) {
	return r.scanStudent(r.helper.QueryRow(ctx, studentColumns+" WHERE id = ?", id))
}

// GetStudentByCode fetches a student by friendly code.
func (r *DirectoryRepository) GetStudentByCode(ctx context.Context, code string) (application.Student, error) {
	return r.scanStudent(r.helper.QueryRow(ctx, studentColumns+" WHERE code = ?", code))
}

const studentColumns = "SELECT id, code, name, email, department, group_id, created_at, updated_at FROM students"

func (r *DirectoryRepository) scanStudent(row *sql.Row) (application.Student, error) {
	var student application.Student
	var createdAt, updatedAt string
	err := row.Scan(&student.ID, &student.Code, &student.Name, &student.Email, &student.Department, &student.GroupID, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return application.Student{}, application.ErrNotFound
		}
		return application.Student{}, mapRepoError(r.mapper.MapError(err))
	}
	if student.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return application.Student{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if student.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return application.Student{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return student, nil
}

// CreateExaminer inserts an examiner record.
func (r *DirectoryRepository) CreateExaminer(ctx context.Context, examiner application.Examiner) (application.Examiner, error) {
	_, err := r.helper.Exec(ctx,
		`INSERT INTO examiners (id, code, name, email, department, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		examiner.ID, examiner.Code, examiner.Name, examiner.Email, examiner.Department,
		examiner.CreatedAt.UTC().Format(time.RFC3339), examiner.UpdatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return application.Examiner{}, mapRepoError(r.mapper.MapError(err))
	}
	return examiner, nil
}

const examinerColumns = "SELECT id, code, name, email, department, created_at, updated_at FROM examiners"

// GetExaminer fetches an examiner by internal identifier.
func (r *DirectoryRepository) GetExaminer(ctx context.Context, id string) (application.Examiner, error) {
	return r.scanExaminer(r.helper.QueryRow(ctx, examinerColumns+" WHERE id = ?", id))
}

// GetExaminerByCode fetches an examiner by friendly code.
func (r *DirectoryRepository) GetExaminerByCode(ctx context.Context, code string) (application.Examiner, error) {
	return r.scanExaminer(r.helper.QueryRow(ctx, examinerColumns+" WHERE code = ?", code))
}

// ListExaminersByDepartment lists a department's examiners in code order.
func (r *DirectoryRepository) ListExaminersByDepartment(ctx context.Context, department string) ([]application.Examiner, error) {
	rows, err := r.helper.Query(ctx, examinerColumns+" WHERE department = ? ORDER BY code ASC", department)
	if err != nil {
		return nil, mapRepoError(r.mapper.MapError(err))
	}
	defer rows.Close()

	var examiners []application.Examiner
	for rows.Next() {
		var examiner application.Examiner
		var createdAt, updatedAt string
		if err := rows.Scan(&examiner.ID, &examiner.Code, &examiner.Name, &examiner.Email, &examiner.Department, &createdAt, &updatedAt); err != nil {
			return nil, mapRepoError(r.mapper.MapError(err))
		}
		if examiner.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		if examiner.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
			return nil, fmt.Errorf("failed to parse updated_at: %w", err)
		}
		examiners = append(examiners, examiner)
	}
	if err := rows.Err(); err != nil {
		return nil, mapRepoError(r.mapper.MapError(err))
	}
	return examiners, nil
}

func (r *DirectoryRepository) scanExaminer(row *sql.Row) (application.Examiner, error) {
	var examiner application.Examiner
	var createdAt, updatedAt string
	err := row.Scan(&examiner.ID, &examiner.Code, &examiner.Name, &examiner.Email, &examiner.Department, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return application.Examiner{}, application.ErrNotFound
		}
		return application.Examiner{}, mapRepoError(r.mapper.MapError(err))
	}
	if examiner.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return application.Examiner{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if examiner.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return application.Examiner{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return examiner, nil
}

// CreateVenue inserts a venue record.
func (r *DirectoryRepository) CreateVenue(ctx context.Context, venue application.Venue) (application.Venue, error) {
	_, err := r.helper.Exec(ctx,
		`INSERT INTO venues (id, code, name, capacity, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		venue.ID, venue.Code, venue.Name, venue.Capacity,
		venue.CreatedAt.UTC().Format(time.RFC3339), venue.UpdatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return application.Venue{}, mapRepoError(r.mapper.MapError(err))
	}
	return venue, nil
}

const venueColumns = "SELECT id, code, name, capacity, created_at, updated_at FROM venues"

// GetVenue fetches a venue by internal identifier.
func (r *DirectoryRepository) GetVenue(ctx context.Context, id string) (application.Venue, error) {
	return r.scanVenue(r.helper.QueryRow(ctx, venueColumns+" WHERE id = ?", id))
}

// GetVenueByCode fetches a venue by friendly code.
func (r *DirectoryRepository) GetVenueByCode(ctx context.Context, code string) (application.Venue, error) {
	return r.scanVenue(r.helper.QueryRow(ctx, venueColumns+" WHERE code = ?", code))
}

// ListVenues lists every venue in code order.
func (r *DirectoryRepository) ListVenues(ctx context.Context) ([]application.Venue, error) {
	rows, err := r.helper.Query(ctx, venueColumns+" ORDER BY code ASC")
	if err != nil {
		return nil, mapRepoError(r.mapper.MapError(err))
	}
	defer rows.Close()

	var venues []application.Venue
	for rows.Next() {
		var venue application.Venue
		var createdAt, updatedAt string
		if err := rows.Scan(&venue.ID, &venue.Code, &venue.Name, &venue.Capacity, &createdAt, &updatedAt); err != nil {
			return nil, mapRepoError(r.mapper.MapError(err))
		}
		if venue.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		if venue.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
			return nil, fmt.Errorf("failed to parse updated_at: %w", err)
		}
		venues = append(venues, venue)
	}
	if err := rows.Err(); err != nil {
		return nil, mapRepoError(r.mapper.MapError(err))
	}
	return venues, nil
}

func (r *DirectoryRepository) scanVenue(row *sql.Row) (application.Venue, error) {
	var venue application.Venue
	var createdAt, updatedAt string
	err := row.Scan(&venue.ID, &venue.Code, &venue.Name, &venue.Capacity, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return application.Venue{}, application.ErrNotFound
		}
		return application.Venue{}, mapRepoError(r.mapper.MapError(err))
	}
	if venue.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return application.Venue{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if venue.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return application.Venue{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return venue, nil
}

// CreateModule inserts a module record.
func (r *DirectoryRepository) CreateModule(ctx context.Context, module application.Module) (application.Module, error) {
	_, err := r.helper.Exec(ctx,
		`INSERT INTO modules (id, code, title, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		module.ID, module.Code, module.Title,
		module.CreatedAt.UTC().Format(time.RFC3339), module.UpdatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return application.Module{}, mapRepoError(r.mapper.MapError(err))
	}
	return module, nil
}

// GetModuleByCode fetches a module by its caller-supplied code.
func (r *DirectoryRepository) GetModuleByCode(ctx context.Context, code string) (application.Module, error) {
	var module application.Module
	var createdAt, updatedAt string
	err := r.helper.QueryRow(ctx, "SELECT id, code, title, created_at, updated_at FROM modules WHERE code = ?", code).
		Scan(&module.ID, &module.Code, &module.Title, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return application.Module{}, application.ErrNotFound
		}
		return application.Module{}, mapRepoError(r.mapper.MapError(err))
	}
	if module.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return application.Module{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if module.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return application.Module{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return module, nil
}
