package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/campus-scheduler/internal/application"
)

// RescheduleRepository implements application.RescheduleRepository using SQLite.
type RescheduleRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewRescheduleRepository creates a new SQLite reschedule repository.
func NewRescheduleRepository(pool *ConnectionPool) *RescheduleRepository {
	return &RescheduleRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateRequest inserts a reschedule request.
func (r *RescheduleRepository) CreateRequest(ctx context.Context, request application.RescheduleRequest) (application.RescheduleRequest, error) {
	_, err := r.helper.Exec(ctx,
		`INSERT INTO reschedule_requests (id, presentation_id, requested_by, requested_role, requestor_email, date, start_min, end_min, venue_id, reason, status, created_at, decided_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)`,
		request.ID, request.PresentationID, request.RequestedByID, string(request.RequestedRole), request.RequestorEmail,
		request.Date, request.Start, request.End, request.VenueID, request.Reason, string(request.Status),
		request.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return application.RescheduleRequest{}, mapRepoError(r.mapper.MapError(err))
	}
	return request, nil
}

const requestColumns = `SELECT id, presentation_id, requested_by, requested_role, requestor_email, date, start_min, end_min, venue_id, reason, status, created_at, decided_at FROM reschedule_requests`

// GetRequest fetches one reschedule request.
func (r *RescheduleRepository) GetRequest(ctx context.Context, id string) (application.RescheduleRequest, error) {
	return r.scanRequest(r.helper.QueryRow(ctx, requestColumns+" WHERE id = ?", id))
}

// ListRequestsByStatus lists requests in a given state, oldest first.
func (r *RescheduleRepository) ListRequestsByStatus(ctx context.Context, status application.RescheduleStatus) ([]application.RescheduleRequest, error) {
	rows, err := r.helper.Query(ctx, requestColumns+" WHERE status = ? ORDER BY created_at ASC, id ASC", string(status))
	if err != nil {
		return nil, mapRepoError(r.mapper.MapError(err))
	}
	defer rows.Close()

	var requests []application.RescheduleRequest
	for rows.Next() {
		request, err := r.scanRequestRows(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}
	if err := rows.Err(); err != nil {
		return nil, mapRepoError(r.mapper.MapError(err))
	}
	return requests, nil
}

// UpdateRequestStatus transitions a request and stamps the decision time.
func (r *RescheduleRepository) UpdateRequestStatus(ctx context.Context, id string, status application.RescheduleStatus, decidedAt time.Time) (application.RescheduleRequest, error) {
	result, err := r.helper.Exec(ctx,
		"UPDATE reschedule_requests SET status = ?, decided_at = ? WHERE id = ?",
		string(status), decidedAt.UTC().Format(time.RFC3339), id)
	if err != nil {
		return application.RescheduleRequest{}, mapRepoError(r.mapper.MapError(err))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return application.RescheduleRequest{}, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return application.RescheduleRequest{}, application.ErrNotFound
	}
	return r.GetRequest(ctx, id)
}

// DeleteRejectedBefore removes rejected requests decided before cutoff and
// reports how many rows went away.
func (r *RescheduleRepository) DeleteRejectedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.helper.Exec(ctx,
		"DELETE FROM reschedule_requests WHERE status = ? AND decided_at IS NOT NULL AND decided_at < ?",
		string(application.RescheduleRejected), cutoff.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, mapRepoError(r.mapper.MapError(err))
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return deleted, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *RescheduleRepository) scanRequest(row *sql.Row) (application.RescheduleRequest, error) {
	request, err := r.scanRequestFrom(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return application.RescheduleRequest{}, application.ErrNotFound
		}
		return application.RescheduleRequest{}, err
	}
	return request, nil
}

func (r *RescheduleRepository) scanRequestRows(rows *sql.Rows) (application.RescheduleRequest, error) {
	return r.scanRequestFrom(rows)
}

func (r *RescheduleRepository) scanRequestFrom(scanner rowScanner) (application.RescheduleRequest, error) {
	var request application.RescheduleRequest
	var role, status, createdAt string
	var decidedAt sql.NullString

	err := scanner.Scan(
		&request.ID, &request.PresentationID, &request.RequestedByID, &role, &request.RequestorEmail,
		&request.Date, &request.Start, &request.End, &request.VenueID, &request.Reason, &status,
		&createdAt, &decidedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return application.RescheduleRequest{}, err
		}
		return application.RescheduleRequest{}, mapRepoError(r.mapper.MapError(err))
	}

	request.RequestedRole = application.Role(role)
	request.Status = application.RescheduleStatus(status)
	if request.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return application.RescheduleRequest{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if decidedAt.Valid {
		decided, err := time.Parse(time.RFC3339, decidedAt.String)
		if err != nil {
			return application.RescheduleRequest{}, fmt.Errorf("failed to parse decided_at: %w", err)
		}
		request.DecidedAt = &decided
	}
	return request, nil
}
