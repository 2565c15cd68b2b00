package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/campus-scheduler/internal/application"
)

// UserRepository implements application.CredentialStore using SQLite.
type UserRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewUserRepository creates a new SQLite user repository.
func NewUserRepository(pool *ConnectionPool) *UserRepository {
	return &UserRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateUser inserts an account with its password hash.
func (r *UserRepository) CreateUser(ctx context.Context, creds application.UserCredentials) (application.User, error) {
	user := creds.User
	_, err := r.helper.Exec(ctx,
		`INSERT INTO users (id, email, display_name, role, is_admin, password_hash, disabled, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, strings.ToLower(user.Email), user.DisplayName, string(user.Role),
		boolToInt(user.IsAdmin), creds.PasswordHash, boolToInt(creds.Disabled),
		user.CreatedAt.UTC().Format(time.RFC3339), user.UpdatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return application.User{}, mapRepoError(r.mapper.MapError(err))
	}
	return user, nil
}

// GetUser fetches an account by internal identifier.
func (r *UserRepository) GetUser(ctx context.Context, id string) (application.User, error) {
	creds, err := r.scanCredentials(r.helper.QueryRow(ctx, userColumns+" WHERE id = ?", id))
	if err != nil {
		return application.User{}, err
	}
	return creds.User, nil
}

// GetUserCredentialsByEmail fetches an account with its password hash.
func (r *UserRepository) GetUserCredentialsByEmail(ctx context.Context, email string) (application.UserCredentials, error) {
	return r.scanCredentials(r.helper.QueryRow(ctx, userColumns+" WHERE email = ?", strings.ToLower(email)))
}

const userColumns = "SELECT id, email, display_name, role, is_admin, password_hash, disabled, created_at, updated_at FROM users"

func (r *UserRepository) scanCredentials(row *sql.Row) (application.UserCredentials, error) {
	var creds application.UserCredentials
	var role, createdAt, updatedAt string
	var isAdmin, disabled int

	err := row.Scan(
		&creds.User.ID, &creds.User.Email, &creds.User.DisplayName, &role,
		&isAdmin, &creds.PasswordHash, &disabled,
		&createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return application.UserCredentials{}, application.ErrNotFound
		}
		return application.UserCredentials{}, mapRepoError(r.mapper.MapError(err))
	}

	creds.User.Role = application.Role(role)
	creds.User.IsAdmin = isAdmin != 0
	creds.Disabled = disabled != 0
	if creds.User.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return application.UserCredentials{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if creds.User.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return application.UserCredentials{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return creds, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
