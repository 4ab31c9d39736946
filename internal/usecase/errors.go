package usecase

import (
	"errors"
	"fmt"
	"strings"

	"cinema-showtime/pkg/utils"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrSeatConflict        = errors.New("seat conflict")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrNotFound            = errors.New("not found")
)

// ValidationError carries per-field messages. errors.Is matches ErrValidation.
type ValidationError struct {
	Fields map[string]string
}

func newValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", utils.FormatValidationErrors(e.Fields))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// SeatConflictError names the seats that were already held. errors.Is
// matches ErrSeatConflict.
type SeatConflictError struct {
	Seats []string
}

func (e *SeatConflictError) Error() string {
	return fmt.Sprintf("seat conflict: %s already held", strings.Join(e.Seats, ", "))
}

func (e *SeatConflictError) Is(target error) bool {
	return target == ErrSeatConflict
}

func validateRequest(req any) error {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
