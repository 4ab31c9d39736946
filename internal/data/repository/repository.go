package repository

import (
	"time"

	"cinema-showtime/pkg/database"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Repository struct {
	Movie      MovieRepository
	MovieCache MovieCache
	Theater    TheaterRepository
	Show       ShowRepository
	Ledger     LedgerRepository
	Booking    BookingRepository
}

func NewRepository(db database.PgxIface, rdb *redis.Client, cacheTTL time.Duration, log *zap.Logger) *Repository {
	return &Repository{
		Movie:      NewMovieRepository(db, log),
		MovieCache: NewMovieCache(rdb, cacheTTL, log),
		Theater:    NewTheaterRepository(db, log),
		Show:       NewShowRepository(db, log),
		Ledger:     NewLedgerRepository(db, log),
		Booking:    NewBookingRepository(db, log),
	}
}
