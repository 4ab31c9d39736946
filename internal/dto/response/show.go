package response

import (
	"time"

	"cinema-showtime/internal/data/entity"
)

type SkippedMovie struct {
	MovieID string `json:"movie_id"`
	Reason  string `json:"reason"`
}

type BulkShowResult struct {
	Created       int            `json:"created"`
	SkippedMovies int            `json:"skipped_movies"`
	Skipped       []SkippedMovie `json:"skipped,omitempty"`
}

type ShowResponse struct {
	ID        string    `json:"id"`
	MovieID   string    `json:"movie_id"`
	TheaterID string    `json:"theater_id"`
	StartsAt  time.Time `json:"starts_at"`
	Price     float64   `json:"price"`
}

type ShowSeatsResponse struct {
	ShowID        string    `json:"show_id"`
	StartsAt      time.Time `json:"starts_at"`
	Price         float64   `json:"price"`
	OccupiedSeats []string  `json:"occupied_seats"`
}

func ShowToResponse(show *entity.Show) ShowResponse {
	return ShowResponse{
		ID:        show.ID.String(),
		MovieID:   show.MovieID,
		TheaterID: show.TheaterID.String(),
		StartsAt:  show.StartsAt,
		Price:     show.Price,
	}
}

func ShowToSeatsResponse(show *entity.Show) ShowSeatsResponse {
	return ShowSeatsResponse{
		ShowID:        show.ID.String(),
		StartsAt:      show.StartsAt,
		Price:         show.Price,
		OccupiedSeats: show.SeatIDs(),
	}
}
