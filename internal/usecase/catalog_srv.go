package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cinema-showtime/internal/data/entity"
	"cinema-showtime/internal/data/repository"
	"cinema-showtime/pkg/tmdb"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// catalogLoadTimeout bounds one shared load, detached from any single caller.
const catalogLoadTimeout = 30 * time.Second

type CatalogService interface {
	// EnsureMovie returns the cached movie, fetching and persisting it on
	// first reference. Upstream failures leave nothing behind.
	EnsureMovie(ctx context.Context, movieID string) (*entity.Movie, error)
}

type catalogService struct {
	movies repository.MovieRepository
	cache  repository.MovieCache
	source MovieSource
	group  singleflight.Group
	log    *zap.Logger
	now    func() time.Time
}

func NewCatalogService(repo *repository.Repository, source MovieSource, log *zap.Logger) CatalogService {
	return &catalogService{
		movies: repo.Movie,
		cache:  repo.MovieCache,
		source: source,
		log:    log.With(zap.String("service", "catalog")),
		now:    time.Now,
	}
}

func (s *catalogService) EnsureMovie(ctx context.Context, movieID string) (*entity.Movie, error) {
	movieID = strings.TrimSpace(movieID)
	if movieID == "" {
		return nil, newValidationError("movie_id", "This field is required")
	}

	if s.cache != nil {
		movie, err := s.cache.Get(ctx, movieID)
		if err != nil {
			s.log.Warn("Catalog cache read failed", zap.String("movie_id", movieID), zap.Error(err))
		}
		if movie != nil {
			return movie, nil
		}
	}

	// The load outlives the caller that started it; other callers may be
	// waiting on the same result.
	ch := s.group.DoChan(movieID, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), catalogLoadTimeout)
		defer cancel()
		return s.load(loadCtx, movieID)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			s.log.Debug("Catalog load shared", zap.String("movie_id", movieID))
		}
		return res.Val.(*entity.Movie), nil
	}
}

// load reads through Postgres and falls back to the external source.
func (s *catalogService) load(ctx context.Context, movieID string) (*entity.Movie, error) {
	movie, err := s.movies.FindByID(ctx, movieID)
	if err != nil {
		return nil, fmt.Errorf("load movie %s: %w", movieID, err)
	}
	if movie != nil {
		s.warm(ctx, movie)
		return movie, nil
	}

	fetched, err := s.source.FetchMovie(ctx, movieID)
	if err != nil {
		s.log.Warn("Movie source unavailable", zap.String("movie_id", movieID), zap.Error(err))
		return nil, fmt.Errorf("%w: movie %s: %v", ErrUpstreamUnavailable, movieID, err)
	}
	// The source may canonicalise the id; the cache key stays the requested one.
	fetched.ID = movieID
	now := s.now()
	fetched.CreatedAt = now
	fetched.UpdatedAt = now

	inserted, err := s.movies.Insert(ctx, fetched)
	if err != nil {
		return nil, fmt.Errorf("persist movie %s: %w", movieID, err)
	}

	if !inserted {
		// Another instance stored it first; serve the stored record.
		stored, err := s.movies.FindByID(ctx, movieID)
		if err != nil {
			return nil, fmt.Errorf("reload movie %s: %w", movieID, err)
		}
		if stored != nil {
			fetched = stored
		}
	} else {
		s.log.Info("Movie cached",
			zap.String("movie_id", movieID),
			zap.String("title", fetched.Title),
			zap.Float64("rating", fetched.Rating),
		)
	}

	s.warm(ctx, fetched)
	return fetched, nil
}

func (s *catalogService) warm(ctx context.Context, movie *entity.Movie) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, movie); err != nil {
		s.log.Warn("Catalog cache write failed", zap.String("movie_id", movie.ID), zap.Error(err))
	}
}

// tmdbSource adapts the TMDB client to MovieSource.
type tmdbSource struct {
	client *tmdb.Client
}

func NewTMDBSource(client *tmdb.Client) MovieSource {
	return &tmdbSource{client: client}
}

func (t *tmdbSource) FetchMovie(ctx context.Context, id string) (*entity.Movie, error) {
	m, err := t.client.FetchMovie(ctx, id)
	if err != nil {
		return nil, err
	}
	return movieFromTMDB(m), nil
}

func movieFromTMDB(m *tmdb.Movie) *entity.Movie {
	genres := make([]string, 0, len(m.Genres))
	for _, g := range m.Genres {
		genres = append(genres, g.Name)
	}

	casts := make([]entity.CastMember, 0, len(m.Cast))
	for _, c := range m.Cast {
		casts = append(casts, entity.CastMember{Name: c.Name, ProfilePath: c.ProfilePath})
	}

	var release *time.Time
	if d, err := time.Parse("2006-01-02", m.ReleaseDate); err == nil {
		release = &d
	}

	return &entity.Movie{
		ID:               m.ID,
		Title:            m.Title,
		Overview:         m.Overview,
		PosterPath:       m.PosterPath,
		BackdropPath:     m.BackdropPath,
		Genres:           genres,
		Casts:            casts,
		ReleaseDate:      release,
		OriginalLanguage: m.OriginalLanguage,
		Tagline:          m.Tagline,
		Rating:           m.Rating,
		Runtime:          m.Runtime,
	}
}
