package repository

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrShowNotFound = errors.New("show not found")
	ErrSeatsTaken   = errors.New("seats already taken")
)

// SeatsTakenError lists the requested seats that another booking holds.
type SeatsTakenError struct {
	Seats []string
}

func (e *SeatsTakenError) Error() string {
	return fmt.Sprintf("seats already taken: %s", strings.Join(e.Seats, ", "))
}

func (e *SeatsTakenError) Unwrap() error {
	return ErrSeatsTaken
}
