package store

import (
	"errors"
	"fmt"
)

var (
	// ErrWriteFailed matches every *WriteError.
	ErrWriteFailed = errors.New("write failed")
	// ErrNotFound is returned by lookups that matched no row.
	ErrNotFound = errors.New("record not found")
)

// WriteError reports an insert or delete that failed or affected no rows.
type WriteError struct {
	Op    string
	Table string
	Err   error
}

func (e *WriteError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s: no rows affected", e.Op, e.Table)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Table, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

func (e *WriteError) Is(target error) bool { return target == ErrWriteFailed }
