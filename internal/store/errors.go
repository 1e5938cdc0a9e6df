package store

import (
	"errors"
	"fmt"
)

// ErrDatabaseURLNotSet is raised on the first remote operation when no
// connection string is configured. It is a configuration problem, not an I/O
// failure, and is never retried.
var ErrDatabaseURLNotSet = errors.New("DATABASE_URL is not set")

// ErrNotFound is returned when an update references an id that does not
// exist. Deletes never return it; they are idempotent.
var ErrNotFound = errors.New("record not found")

// ErrDuplicateRecord rejects a second dispatch record for the same route and
// day. The message is shown to the end user verbatim.
var ErrDuplicateRecord = errors.New("a record for this route already exists for the selected date")

// StorageError wraps an underlying I/O or query failure with the operation
// and entity kind it occurred on.
type StorageError struct {
	Op     string
	Entity string
	Err    error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("store: %s %s: %v", e.Op, e.Entity, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageErr(op, entity string, err error) error {
	return &StorageError{Op: op, Entity: entity, Err: err}
}
