package utils

import (
	"strconv"
	"strings"
)

// SeatLayout describes the auditorium grid: one letter per row, seats
// numbered from 1 within a row.
type SeatLayout struct {
	Rows   string
	PerRow int
}

func NewSeatLayout(cfg BookingConfig) SeatLayout {
	rows := strings.ToUpper(cfg.SeatRows)
	if rows == "" {
		rows = "ABCDEFGHIJ"
	}
	perRow := cfg.SeatsPerRow
	if perRow <= 0 {
		perRow = 9
	}
	return SeatLayout{Rows: rows, PerRow: perRow}
}

// Contains reports whether seat (e.g. "C7") exists in the layout.
func (l SeatLayout) Contains(seat string) bool {
	if len(seat) < 2 {
		return false
	}
	if !strings.ContainsRune(l.Rows, rune(seat[0])) {
		return false
	}
	n, err := strconv.Atoi(seat[1:])
	if err != nil {
		return false
	}
	return n >= 1 && n <= l.PerRow
}
