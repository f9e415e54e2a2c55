package service

import (
	"errors"

	"github.com/pointward/rewards-backend/internal/repository"
)

var ErrNotFound = errors.New("not_found")

// ErrInvalidState is returned when settlement is attempted on a completion
// record that is not in_progress: never started, already completed, or won
// by a concurrent attempt. Not retryable.
var ErrInvalidState = errors.New("invalid_state")

// ErrConflict means the atomic apply lost to concurrent writes and rolled
// back completely; the caller may retry the whole settlement.
var ErrConflict = errors.New("transaction_conflict")

var ErrUnavailable = errors.New("storage_unavailable")

var ErrForbidden = errors.New("forbidden")

func mapStoreError(err error) error {
	switch {
	case errors.Is(err, repository.ErrConflict):
		return ErrConflict
	case errors.Is(err, repository.ErrUnavailable):
		return ErrUnavailable
	default:
		return err
	}
}
