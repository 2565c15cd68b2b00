package sqlite

import (
	"context"
	"fmt"
)

// SequenceRepository implements application.SequenceSource using a counter
// table. The upsert-and-return runs as a single statement, so concurrent
// callers never draw the same value.
type SequenceRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewSequenceRepository creates a new SQLite sequence repository.
func NewSequenceRepository(pool *ConnectionPool) *SequenceRepository {
	return &SequenceRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// Next increments and returns the named counter.
func (r *SequenceRepository) Next(ctx context.Context, name string) (int64, error) {
	if name == "" {
		return 0, fmt.Errorf("sequence name is required")
	}

	var value int64
	err := r.helper.QueryRow(ctx,
		`INSERT INTO sequences (name, value) VALUES (?, 1)
		 ON CONFLICT(name) DO UPDATE SET value = value + 1
		 RETURNING value`,
		name).Scan(&value)
	if err != nil {
		return 0, mapRepoError(r.mapper.MapError(err))
	}
	return value, nil
}
