package tmdb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cinema-showtime/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(utils.CatalogConfig{BaseURL: srv.URL + "/", APIKey: "v3key", Timeout: time.Second})
}

func TestClient_FetchMovie(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/movie/550", r.URL.Path)
		assert.Equal(t, "credits", r.URL.Query().Get("append_to_response"))
		assert.Equal(t, "v3key", r.URL.Query().Get("api_key"))
		assert.Empty(t, r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": 550,
			"title": "Fight Club",
			"overview": "An insomniac office worker...",
			"poster_path": "/poster.jpg",
			"genres": [{"id": 18, "name": "Drama"}],
			"release_date": "1999-10-15",
			"original_language": "en",
			"vote_average": [{"$numberDouble": "8.4"}],
			"runtime": 139,
			"credits": {"cast": [{"name": "Edward Norton", "profile_path": "/norton.jpg"}]}
		}`))
	})

	movie, err := client.FetchMovie(context.Background(), "550")
	require.NoError(t, err)
	assert.Equal(t, "550", movie.ID)
	assert.Equal(t, "Fight Club", movie.Title)
	assert.InDelta(t, 8.4, movie.Rating, 0.0001)
	assert.Equal(t, 139, movie.Runtime)
	require.Len(t, movie.Genres, 1)
	assert.Equal(t, "Drama", movie.Genres[0].Name)
	require.Len(t, movie.Cast, 1)
	assert.Equal(t, "Edward Norton", movie.Cast[0].Name)
}

func TestClient_FetchMovie_Non2xx(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status_message":"not found"}`, http.StatusNotFound)
	})

	_, err := client.FetchMovie(context.Background(), "1")
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.Code)
}

func TestClient_FetchMovie_MalformedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"title": "Broken", "vote_average": "n/a"}`))
	})

	_, err := client.FetchMovie(context.Background(), "2")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestClient_FetchMovie_MissingTitle(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": 3}`))
	})

	_, err := client.FetchMovie(context.Background(), "3")
	assert.ErrorIs(t, err, ErrMalformed)
}
