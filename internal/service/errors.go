package service

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrBlankInput marks a create or update whose required text was empty or
	// whitespace. Nothing is written; callers may treat it as a no-op.
	ErrBlankInput = errors.New("blank input")
	// ErrNotFound means the target does not exist or belongs to someone else.
	ErrNotFound = errors.New("not found")
	// ErrUnauthenticated means no user could be resolved for the request.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrInvalidRange rejects a week that is not 7 consecutive ascending days.
	ErrInvalidRange = errors.New("invalid range")

	ErrTaskCreationFailed = errors.New("task creation failed")
	ErrCreationFailed     = errors.New("creation failed")
	ErrUpdateFailed       = errors.New("update failed")
	ErrDeletionFailed     = errors.New("deletion failed")
	ErrCompletionFailed   = errors.New("failed to complete routine")
)

// storageFailure logs a failed write and returns the coarse domain error with
// the cause still reachable through errors.Is/As.
func storageFailure(log *zap.Logger, kind error, msg string, cause error, fields ...zap.Field) error {
	if errors.Is(cause, gorm.ErrRecordNotFound) {
		return missing(kind)
	}
	log.Error(msg, append(fields, zap.Error(cause))...)
	return fmt.Errorf("%w: %w", kind, cause)
}

// missing reports a write that matched no row owned by the caller.
func missing(kind error) error {
	if kind == nil {
		return ErrNotFound
	}
	return fmt.Errorf("%w: %w", kind, ErrNotFound)
}

// lookupFailure translates a read error into ErrNotFound when no row matched.
func lookupFailure(what string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", what, err)
}
