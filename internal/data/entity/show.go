package entity

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Show is one screening. OccupiedSeats maps seat id to the id of the
// booking holding it.
type Show struct {
	ID            uuid.UUID         `db:"id"`
	MovieID       string            `db:"movie_id"`
	TheaterID     uuid.UUID         `db:"theater_id"`
	StartsAt      time.Time         `db:"starts_at"`
	Price         float64           `db:"price"`
	OccupiedSeats map[string]string `db:"occupied_seats"`
	Timestamps
}

func (s *Show) HasStarted(now time.Time) bool {
	return !now.Before(s.StartsAt)
}

// SeatIDs returns the occupied seat ids in a stable order.
func (s *Show) SeatIDs() []string {
	seats := make([]string, 0, len(s.OccupiedSeats))
	for seat := range s.OccupiedSeats {
		seats = append(seats, seat)
	}
	sort.Strings(seats)
	return seats
}
