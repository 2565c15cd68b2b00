// Package persistence defines the storage-neutral sentinel errors the sqlite
// repositories translate driver failures into. The application layer maps
// these onto its own error taxonomy and never sees driver codes.
package persistence

import "errors"

var (
	// ErrNotFound signals the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate signals a unique constraint rejected the write.
	ErrDuplicate = errors.New("persistence: duplicate record")
	// ErrForeignKeyViolation signals a referenced record is missing.
	ErrForeignKeyViolation = errors.New("persistence: foreign key violation")
	// ErrConstraintViolation signals a check constraint rejected the write.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
)
