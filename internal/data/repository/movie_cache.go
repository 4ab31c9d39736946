package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cinema-showtime/internal/data/entity"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// MovieCache is the hot read path in front of MovieRepository.
type MovieCache interface {
	// Get returns nil, nil on a miss.
	Get(ctx context.Context, id string) (*entity.Movie, error)
	Set(ctx context.Context, movie *entity.Movie) error
}

type redisMovieCache struct {
	rdb *redis.Client
	ttl time.Duration
	log *zap.Logger
}

func NewMovieCache(rdb *redis.Client, ttl time.Duration, log *zap.Logger) MovieCache {
	return &redisMovieCache{
		rdb: rdb,
		ttl: ttl,
		log: log.With(zap.String("repository", "movie_cache")),
	}
}

func movieCacheKey(id string) string {
	return "catalog:movie:" + id
}

func (c *redisMovieCache) Get(ctx context.Context, id string) (*entity.Movie, error) {
	raw, err := c.rdb.Get(ctx, movieCacheKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cached movie %s: %w", id, err)
	}

	var movie entity.Movie
	if err := json.Unmarshal(raw, &movie); err != nil {
		// A bad entry is treated as a miss and overwritten on the next Set.
		c.log.Warn("Dropping undecodable cache entry", zap.String("movie_id", id), zap.Error(err))
		return nil, nil
	}
	return &movie, nil
}

func (c *redisMovieCache) Set(ctx context.Context, movie *entity.Movie) error {
	raw, err := json.Marshal(movie)
	if err != nil {
		return fmt.Errorf("encode movie %s: %w", movie.ID, err)
	}
	if err := c.rdb.Set(ctx, movieCacheKey(movie.ID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache movie %s: %w", movie.ID, err)
	}
	return nil
}
