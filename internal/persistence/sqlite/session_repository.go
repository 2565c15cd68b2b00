package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/campus-scheduler/internal/application"
)

// SessionRepository implements application.SessionRepository using SQLite.
type SessionRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewSessionRepository creates a new SQLite session repository.
func NewSessionRepository(pool *ConnectionPool) *SessionRepository {
	return &SessionRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateSession inserts an issued session.
func (r *SessionRepository) CreateSession(ctx context.Context, session application.Session) (application.Session, error) {
	_, err := r.helper.Exec(ctx,
		`INSERT INTO sessions (id, user_id, token, expires_at, created_at, revoked_at)
		 VALUES (?, ?, ?, ?, ?, NULL)`,
		session.ID, session.UserID, session.Token,
		session.ExpiresAt.UTC().Format(time.RFC3339), session.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return application.Session{}, mapRepoError(r.mapper.MapError(err))
	}
	return session, nil
}

// GetSession fetches a session by its token.
func (r *SessionRepository) GetSession(ctx context.Context, token string) (application.Session, error) {
	var session application.Session
	var expiresAt, createdAt string
	var revokedAt sql.NullString

	err := r.helper.QueryRow(ctx,
		"SELECT id, user_id, token, expires_at, created_at, revoked_at FROM sessions WHERE token = ?", token).
		Scan(&session.ID, &session.UserID, &session.Token, &expiresAt, &createdAt, &revokedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return application.Session{}, application.ErrNotFound
		}
		return application.Session{}, mapRepoError(r.mapper.MapError(err))
	}

	if session.ExpiresAt, err = time.Parse(time.RFC3339, expiresAt); err != nil {
		return application.Session{}, fmt.Errorf("failed to parse expires_at: %w", err)
	}
	if session.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return application.Session{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if revokedAt.Valid {
		revoked, err := time.Parse(time.RFC3339, revokedAt.String)
		if err != nil {
			return application.Session{}, fmt.Errorf("failed to parse revoked_at: %w", err)
		}
		session.RevokedAt = &revoked
	}
	return session, nil
}

// RevokeSession stamps the revocation time on a session.
func (r *SessionRepository) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (application.Session, error) {
	result, err := r.helper.Exec(ctx,
		"UPDATE sessions SET revoked_at = ? WHERE token = ?",
		revokedAt.UTC().Format(time.RFC3339), token)
	if err != nil {
		return application.Session{}, mapRepoError(r.mapper.MapError(err))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return application.Session{}, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return application.Session{}, application.ErrNotFound
	}
	return r.GetSession(ctx, token)
}

// DeleteExpiredSessions removes sessions past their expiry.
func (r *SessionRepository) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	_, err := r.helper.Exec(ctx,
		"DELETE FROM sessions WHERE expires_at <= ?",
		reference.UTC().Format(time.RFC3339))
	if err != nil {
		return mapRepoError(r.mapper.MapError(err))
	}
	return nil
}
