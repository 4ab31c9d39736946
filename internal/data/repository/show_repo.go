package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cinema-showtime/internal/data/entity"
	"cinema-showtime/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ShowRepository interface {
	Create(ctx context.Context, show *entity.Show) error
	// CreateBatch inserts all shows in one transaction.
	CreateBatch(ctx context.Context, shows []*entity.Show) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Show, error)
	FindStartingBetween(ctx context.Context, from, to time.Time) ([]*entity.Show, error)
}

type showRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewShowRepository(db database.PgxIface, log *zap.Logger) ShowRepository {
	return &showRepository{
		db:  db,
		log: log.With(zap.String("repository", "show")),
	}
}

func scanShow(row pgx.Row) (*entity.Show, error) {
	var show entity.Show
	var seats []byte
	err := row.Scan(
		&show.ID,
		&show.MovieID,
		&show.TheaterID,
		&show.StartsAt,
		&show.Price,
		&seats,
		&show.CreatedAt,
		&show.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	show.OccupiedSeats = map[string]string{}
	if len(seats) > 0 {
		if err := json.Unmarshal(seats, &show.OccupiedSeats); err != nil {
			return nil, fmt.Errorf("decode occupied seats of show %s: %w", show.ID, err)
		}
	}
	return &show, nil
}

// Create inserts a show with an empty seat ledger.
func (r *showRepository) Create(ctx context.Context, show *entity.Show) error {
	query := `
		INSERT INTO shows (id, movie_id, theater_id, starts_at, price, occupied_seats, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, '{}'::jsonb, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		show.ID,
		show.MovieID,
		show.TheaterID,
		show.StartsAt,
		show.Price,
		show.CreatedAt,
		show.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create show",
			zap.Error(err),
			zap.String("movie_id", show.MovieID),
			zap.String("theater_id", show.TheaterID.String()),
			zap.Time("starts_at", show.StartsAt),
		)
		return fmt.Errorf("create show for movie %s theater %s: %w",
			show.MovieID, show.TheaterID.String(), err)
	}

	return nil
}

func (r *showRepository) CreateBatch(ctx context.Context, shows []*entity.Show) (err error) {
	if len(shows) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin show batch tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	columns := []string{"id", "movie_id", "theater_id", "starts_at", "price", "created_at", "updated_at"}
	copied, err := tx.CopyFrom(ctx, pgx.Identifier{"shows"}, columns,
		pgx.CopyFromSlice(len(shows), func(i int) ([]any, error) {
			s := shows[i]
			return []any{s.ID, s.MovieID, s.TheaterID, s.StartsAt, s.Price, s.CreatedAt, s.UpdatedAt}, nil
		}),
	)
	if err != nil {
		r.log.Error("Failed to copy shows",
			zap.Error(err),
			zap.String("movie_id", shows[0].MovieID),
			zap.Int("count", len(shows)),
		)
		return fmt.Errorf("copy %d shows: %w", len(shows), err)
	}
	if copied != int64(len(shows)) {
		err = fmt.Errorf("copied %d of %d shows", copied, len(shows))
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit show batch tx: %w", err)
	}
	return nil
}

func (r *showRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Show, error) {
	query := `
		SELECT id, movie_id, theater_id, starts_at, price, occupied_seats, created_at, updated_at
		FROM shows
		WHERE id = $1
	`

	show, err := scanShow(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find show by ID",
			zap.Error(err),
			zap.String("show_id", id.String()),
		)
		return nil, fmt.Errorf("find show by ID %s: %w", id.String(), err)
	}

	return show, nil
}

func (r *showRepository) FindStartingBetween(ctx context.Context, from, to time.Time) ([]*entity.Show, error) {
	query := `
		SELECT id, movie_id, theater_id, starts_at, price, occupied_seats, created_at, updated_at
		FROM shows
		WHERE starts_at >= $1 AND starts_at < $2
		ORDER BY starts_at
	`

	rows, err := r.db.Query(ctx, query, from, to)
	if err != nil {
		r.log.Error("Failed to find shows by start window",
			zap.Error(err),
			zap.Time("from", from),
			zap.Time("to", to),
		)
		return nil, fmt.Errorf("find shows starting between %s and %s: %w",
			from.Format(time.RFC3339), to.Format(time.RFC3339), err)
	}
	defer rows.Close()

	var shows []*entity.Show
	for rows.Next() {
		show, err := scanShow(rows)
		if err != nil {
			r.log.Error("Failed to scan show row", zap.Error(err))
			return nil, fmt.Errorf("scan show row: %w", err)
		}
		shows = append(shows, show)
	}

	return shows, rows.Err()
}
