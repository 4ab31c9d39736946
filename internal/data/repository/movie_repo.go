package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"cinema-showtime/internal/data/entity"
	"cinema-showtime/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type MovieRepository interface {
	FindByID(ctx context.Context, id string) (*entity.Movie, error)
	// Insert stores the movie unless a row with the same id exists and
	// reports whether this call created it.
	Insert(ctx context.Context, movie *entity.Movie) (bool, error)
}

type movieRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewMovieRepository(db database.PgxIface, log *zap.Logger) MovieRepository {
	return &movieRepository{
		db:  db,
		log: log.With(zap.String("repository", "movie")),
	}
}

func (r *movieRepository) FindByID(ctx context.Context, id string) (*entity.Movie, error) {
	query := `
		SELECT id, title, overview, poster_path, backdrop_path, genres, casts,
		       release_date, original_language, tagline, vote_average, runtime,
		       created_at, updated_at
		FROM movies
		WHERE id = $1
	`

	var movie entity.Movie
	var poster, backdrop, lang, tagline *string
	var casts []byte
	err := r.db.QueryRow(ctx, query, id).Scan(
		&movie.ID,
		&movie.Title,
		&movie.Overview,
		&poster,
		&backdrop,
		&movie.Genres,
		&casts,
		&movie.ReleaseDate,
		&lang,
		&tagline,
		&movie.Rating,
		&movie.Runtime,
		&movie.CreatedAt,
		&movie.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find movie by ID",
			zap.Error(err),
			zap.String("movie_id", id),
		)
		return nil, fmt.Errorf("find movie by ID %s: %w", id, err)
	}

	if len(casts) > 0 {
		if err := json.Unmarshal(casts, &movie.Casts); err != nil {
			return nil, fmt.Errorf("decode casts of movie %s: %w", id, err)
		}
	}
	movie.PosterPath = deref(poster)
	movie.BackdropPath = deref(backdrop)
	movie.OriginalLanguage = deref(lang)
	movie.Tagline = deref(tagline)

	return &movie, nil
}

func (r *movieRepository) Insert(ctx context.Context, movie *entity.Movie) (bool, error) {
	query := `
		INSERT INTO movies (id, title, overview, poster_path, backdrop_path, genres, casts,
		                    release_date, original_language, tagline, vote_average, runtime,
		                    created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO NOTHING
	`

	casts, err := json.Marshal(movie.Casts)
	if err != nil {
		return false, fmt.Errorf("encode casts of movie %s: %w", movie.ID, err)
	}
	genres := movie.Genres
	if genres == nil {
		genres = []string{}
	}

	tag, err := r.db.Exec(ctx, query,
		movie.ID,
		movie.Title,
		movie.Overview,
		nullable(movie.PosterPath),
		nullable(movie.BackdropPath),
		genres,
		string(casts),
		movie.ReleaseDate,
		nullable(movie.OriginalLanguage),
		nullable(movie.Tagline),
		movie.Rating,
		movie.Runtime,
		movie.CreatedAt,
		movie.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to insert movie",
			zap.Error(err),
			zap.String("movie_id", movie.ID),
			zap.String("title", movie.Title),
		)
		return false, fmt.Errorf("insert movie %s: %w", movie.ID, err)
	}

	return tag.RowsAffected() == 1, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
