package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/containerd/errdefs"
)

// ErrDuplicate is returned when an insert collides with an existing record.
var ErrDuplicate = errdefs.ErrAlreadyExists

// IsSQLiteBusyError checks if the error is a SQLITE_BUSY error.
// This occurs when the database is locked by another connection.
func IsSQLiteBusyError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "SQLITE_BUSY")
}

// IsSQLiteLockedError checks if the error is a "database is locked" error.
func IsSQLiteLockedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "database is locked")
}

// IsSQLiteUniqueError checks if the error is a UNIQUE constraint violation.
func IsSQLiteUniqueError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "SQLITE_CONSTRAINT_UNIQUE")
}

// classify wraps a raw driver error into an errdefs class so callers can branch
// on IsConflict/IsBusy without knowing about SQLite.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case IsSQLiteUniqueError(err):
		return fmt.Errorf("%s: %w: %w", op, ErrDuplicate, err)
	case IsSQLiteBusyError(err) || IsSQLiteLockedError(err):
		return fmt.Errorf("%s: %w: %w", op, errdefs.ErrUnavailable, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// IsConflict reports whether err signals a duplicate record.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicate) || errdefs.IsAlreadyExists(err)
}

// IsBusy reports whether err signals a transient lock on the database.
func IsBusy(err error) bool {
	return errdefs.IsUnavailable(err)
}
