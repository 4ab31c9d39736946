package repository

import (
	"context"
	"errors"
	"fmt"

	"cinema-showtime/internal/data/entity"
	"cinema-showtime/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type TheaterRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Theater, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Theater, error)
}

type theaterRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewTheaterRepository(db database.PgxIface, log *zap.Logger) TheaterRepository {
	return &theaterRepository{
		db:  db,
		log: log.With(zap.String("repository", "theater")),
	}
}

const theaterColumns = `id, code, name, image_url, screen_count, street, city, state, zipcode,
		       longitude, latitude, created_at, updated_at`

func scanTheater(row pgx.Row) (*entity.Theater, error) {
	var t entity.Theater
	err := row.Scan(
		&t.ID,
		&t.Code,
		&t.Name,
		&t.ImageURL,
		&t.ScreenCount,
		&t.Street,
		&t.City,
		&t.State,
		&t.Zipcode,
		&t.Location.Longitude,
		&t.Location.Latitude,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *theaterRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Theater, error) {
	query := `SELECT ` + theaterColumns + ` FROM theaters WHERE id = $1`

	theater, err := scanTheater(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find theater by ID",
			zap.Error(err),
			zap.String("theater_id", id.String()),
		)
		return nil, fmt.Errorf("find theater by ID %s: %w", id.String(), err)
	}

	return theater, nil
}

// FindByIDs returns the theaters that exist among ids; missing ids are
// simply absent from the result.
func (r *theaterRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Theater, error) {
	query := `SELECT ` + theaterColumns + ` FROM theaters WHERE id = ANY($1) ORDER BY name`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		r.log.Error("Failed to find theaters by IDs", zap.Error(err), zap.Int("count", len(ids)))
		return nil, fmt.Errorf("find theaters by IDs: %w", err)
	}
	defer rows.Close()

	var theaters []*entity.Theater
	for rows.Next() {
		theater, err := scanTheater(rows)
		if err != nil {
			r.log.Error("Failed to scan theater row", zap.Error(err))
			return nil, fmt.Errorf("scan theater row: %w", err)
		}
		theaters = append(theaters, theater)
	}

	return theaters, rows.Err()
}
