package repository

import (
	"errors"
	"fmt"
)

// Sentinel kinds for storage errors.
var (
	// ErrStorageAccess covers a missing document, permissions, disk and network failures.
	ErrStorageAccess = errors.New("storage access failed")
	// ErrMalformed means the document is not a JSON array of books.
	ErrMalformed = errors.New("malformed storage document")
	// ErrNotFound is reported together with ErrStorageAccess when the document does not exist.
	ErrNotFound = errors.New("storage document not found")
)

func accessError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorageAccess, err)
}

func notFoundError(op, where string) error {
	return fmt.Errorf("%s: %w: %w: %s", op, ErrStorageAccess, ErrNotFound, where)
}

func malformedError(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Kind classifies a storage error for metrics labels.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMalformed):
		return "malformed"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrStorageAccess):
		return "access"
	default:
		return "other"
	}
}
