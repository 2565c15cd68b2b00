package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/campus-scheduler/internal/application"
)

// GroupRepository implements application.GroupRepository using SQLite. Group
// membership is recorded on the student rows themselves.
type GroupRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewGroupRepository creates a new SQLite group repository.
func NewGroupRepository(pool *ConnectionPool) *GroupRepository {
	return &GroupRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateGroup inserts a group record.
func (r *GroupRepository) CreateGroup(ctx context.Context, group application.StudentGroup) (application.StudentGroup, error) {
	_, err := r.helper.Exec(ctx,
		"INSERT INTO student_groups (id, code, department, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		group.ID, group.Code, group.Department,
		group.CreatedAt.UTC().Format(time.RFC3339), group.UpdatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return application.StudentGroup{}, mapRepoError(r.mapper.MapError(err))
	}
	return group, nil
}

// GetGroup fetches a group by internal identifier.
func (r *GroupRepository) GetGroup(ctx context.Context, id string) (application.StudentGroup, error) {
	return r.get(ctx, "id = ?", id)
}

// GetGroupByCode fetches a group by friendly code.
func (r *GroupRepository) GetGroupByCode(ctx context.Context, code string) (application.StudentGroup, error) {
	return r.get(ctx, "code = ?", code)
}

func (r *GroupRepository) get(ctx context.Context, where, arg string) (application.StudentGroup, error) {
	var group application.StudentGroup
	var createdAt, updatedAt string
	err := r.helper.QueryRow(ctx, "SELECT id, code, department, created_at, updated_at FROM student_groups WHERE "+where, arg).
		Scan(&group.ID, &group.Code, &group.Department, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return application.StudentGroup{}, application.ErrNotFound
		}
		return application.StudentGroup{}, mapRepoError(r.mapper.MapError(err))
	}
	if group.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return application.StudentGroup{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if group.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return application.StudentGroup{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	if group.StudentIDs, err = r.memberIDs(ctx, group.ID); err != nil {
		return application.StudentGroup{}, err
	}
	return group, nil
}

// ListGroups lists every group in code order.
func (r *GroupRepository) ListGroups(ctx context.Context) ([]application.StudentGroup, error) {
	rows, err := r.helper.Query(ctx, "SELECT id, code, department, created_at, updated_at FROM student_groups ORDER BY code ASC")
	if err != nil {
		return nil, mapRepoError(r.mapper.MapError(err))
	}
	defer rows.Close()

	var groups []application.StudentGroup
	for rows.Next() {
		var group application.StudentGroup
		var createdAt, updatedAt string
		if err := rows.Scan(&group.ID, &group.Code, &group.Department, &createdAt, &updatedAt); err != nil {
			return nil, mapRepoError(r.mapper.MapError(err))
		}
		if group.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		if group.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
			return nil, fmt.Errorf("failed to parse updated_at: %w", err)
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, mapRepoError(r.mapper.MapError(err))
	}

	for i := range groups {
		if groups[i].StudentIDs, err = r.memberIDs(ctx, groups[i].ID); err != nil {
			return nil, err
		}
	}
	return groups, nil
}

// AssignStudents binds students to a group. Assignment is all-or-nothing and
// refuses to steal a student from another group.
func (r *GroupRepository) AssignStudents(ctx context.Context, groupID string, studentIDs []string) error {
	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		for _, studentID := range studentIDs {
			result, err := r.helper.ExecTx(tx,
				"UPDATE students SET group_id = ? WHERE id = ? AND (group_id = '' OR group_id = ?)",
				groupID, studentID, groupID)
			if err != nil {
				return r.mapper.MapError(err)
			}
			affected, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to get rows affected: %w", err)
			}
			if affected == 0 {
				return application.ErrAlreadyExists
			}
		}
		return nil
	})
	return mapRepoError(err)
}

func (r *GroupRepository) memberIDs(ctx context.Context, groupID string) ([]string, error) {
	rows, err := r.helper.Query(ctx, "SELECT id FROM students WHERE group_id = ? ORDER BY code ASC", groupID)
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
