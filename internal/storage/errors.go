package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/commonplaces/placecore/internal/apperr"
)

// Sentinel errors a backend's SQL layer can return before the caller
// classifies them into an apperr.Kind. Mirrors the teacher's
// internal/storage/sqlite/errors.go (ErrNotFound/ErrConflict) idiom.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// WrapDBError converts sql.ErrNoRows to ErrNotFound and tags the
// result with op, mirroring wrapDBError in the teacher's sqlite
// backend.
func WrapDBError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// ToAppErr classifies a backend-level error (ErrNotFound/ErrConflict or
// otherwise) into an apperr.Kind for the caller.
func ToAppErr(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return apperr.Wrap(apperr.NotFound, op, err)
	case errors.Is(err, ErrConflict):
		return apperr.Wrap(apperr.AlreadyExists, op, err)
	default:
		return apperr.Wrap(apperr.Other, op, err)
	}
}
