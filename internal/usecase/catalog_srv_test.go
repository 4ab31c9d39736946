package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"cinema-showtime/internal/data/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogService_EnsureMovie(t *testing.T) {
	ctx := context.Background()

	t.Run("fetches once then serves from cache", func(t *testing.T) {
		store := newMemStore()
		source := &fakeSource{}
		svc := NewCatalogService(newTestRepo(store), source, nopLogger())

		first, err := svc.EnsureMovie(ctx, "550")
		require.NoError(t, err)
		second, err := svc.EnsureMovie(ctx, "550")
		require.NoError(t, err)

		assert.Equal(t, "Movie 550", first.Title)
		assert.Equal(t, first.Title, second.Title)
		assert.Equal(t, 7.5, second.Rating)
		assert.EqualValues(t, 1, source.calls.Load())
		assert.Equal(t, 1, store.movieInserts)
	})

	t.Run("reads through the database before the source", func(t *testing.T) {
		store := newMemStore()
		repo := newTestRepo(store)
		_, err := repo.Movie.Insert(ctx, &entityMovie550)
		require.NoError(t, err)

		source := &fakeSource{}
		svc := NewCatalogService(repo, source, nopLogger())

		movie, err := svc.EnsureMovie(ctx, "550")
		require.NoError(t, err)
		assert.Equal(t, "Fight Club", movie.Title)
		assert.EqualValues(t, 0, source.calls.Load())
	})

	t.Run("upstream failure persists nothing", func(t *testing.T) {
		store := newMemStore()
		source := &fakeSource{failOn: map[string]bool{"404": true}}
		svc := NewCatalogService(newTestRepo(store), source, nopLogger())

		movie, err := svc.EnsureMovie(ctx, "404")

		assert.Nil(t, movie)
		assert.ErrorIs(t, err, ErrUpstreamUnavailable)
		assert.Empty(t, store.movies)
	})

	t.Run("blank id is a validation error", func(t *testing.T) {
		svc := NewCatalogService(newTestRepo(newMemStore()), &fakeSource{}, nopLogger())

		_, err := svc.EnsureMovie(ctx, "  ")

		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestCatalogService_ConcurrentEnsureStoresOneRecord(t *testing.T) {
	store := newMemStore()
	source := &fakeSource{delay: 20 * time.Millisecond}

	// Two services over one store stand in for two server instances.
	services := []CatalogService{
		NewCatalogService(newTestRepo(store), source, nopLogger()),
		NewCatalogService(newTestRepo(store), source, nopLogger()),
	}

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(svc CatalogService) {
			defer wg.Done()
			movie, err := svc.EnsureMovie(context.Background(), "550")
			if err == nil && movie.ID != "550" {
				err = assert.AnError
			}
			errs <- err
		}(services[i%2])
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, 1, store.movieInserts)
	assert.Len(t, store.movies, 1)
	assert.LessOrEqual(t, source.calls.Load(), int32(2))
}

var entityMovie550 = entity.Movie{ID: "550", Title: "Fight Club", Rating: 8.4}

func TestCatalogService_CallerLeavingDoesNotFailSharedLoad(t *testing.T) {
	store := newMemStore()
	source := &fakeSource{delay: 200 * time.Millisecond}
	svc := NewCatalogService(newTestRepo(store), source, nopLogger())

	leaving, cancel := context.WithCancel(context.Background())
	leftErr := make(chan error, 1)
	go func() {
		_, err := svc.EnsureMovie(leaving, "550")
		leftErr <- err
	}()

	time.Sleep(20 * time.Millisecond)
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	movie, err := svc.EnsureMovie(context.Background(), "550")

	require.NoError(t, err)
	assert.Equal(t, "Movie 550", movie.Title)
	assert.ErrorIs(t, <-leftErr, context.Canceled)
	assert.EqualValues(t, 1, source.calls.Load())
	assert.Equal(t, 1, store.movieInserts)
}
