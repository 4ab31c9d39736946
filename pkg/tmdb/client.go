// Package tmdb fetches movie details from The Movie Database API.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cinema-showtime/pkg/utils"
)

// ErrMalformed is returned when the upstream body cannot be decoded.
var ErrMalformed = errors.New("malformed movie payload")

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type CastMember struct {
	Name        string `json:"name"`
	ProfilePath string `json:"profile_path"`
}

// Movie is the normalized movie-details payload.
type Movie struct {
	ID               string
	Title            string
	Overview         string
	PosterPath       string
	BackdropPath     string
	Genres           []Genre
	Cast             []CastMember
	ReleaseDate      string
	OriginalLanguage string
	Tagline          string
	Rating           float64
	Runtime          int
}

type movieDetails struct {
	ID               json.Number     `json:"id"`
	Title            string          `json:"title"`
	Overview         string          `json:"overview"`
	PosterPath       string          `json:"poster_path"`
	BackdropPath     string          `json:"backdrop_path"`
	Genres           []Genre         `json:"genres"`
	ReleaseDate      string          `json:"release_date"`
	OriginalLanguage string          `json:"original_language"`
	Tagline          string          `json:"tagline"`
	VoteAverage      json.RawMessage `json:"vote_average"`
	Runtime          int             `json:"runtime"`
	Credits          struct {
		Cast []CastMember `json:"cast"`
	} `json:"credits"`
}

// StatusError carries a non-2xx upstream response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("tmdb responded %d: %s", e.Code, e.Body)
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(cfg utils.CatalogConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// maxCast bounds how many cast members are kept per movie.
const maxCast = 12

// FetchMovie calls GET /movie/{id} with credits appended.
func (c *Client) FetchMovie(ctx context.Context, id string) (*Movie, error) {
	query := url.Values{}
	query.Set("append_to_response", "credits")
	if c.apiKey != "" {
		query.Set("api_key", c.apiKey)
	}
	endpoint := fmt.Sprintf("%s/movie/%s?%s", c.baseURL, url.PathEscape(id), query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build tmdb request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch movie %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{Code: resp.StatusCode, Body: string(snippet)}
	}

	var raw movieDetails
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if raw.Title == "" {
		return nil, fmt.Errorf("%w: movie %s has no title", ErrMalformed, id)
	}

	rating, err := NormalizeRating(raw.VoteAverage)
	if err != nil {
		return nil, err
	}

	cast := raw.Credits.Cast
	if len(cast) > maxCast {
		cast = cast[:maxCast]
	}

	movieID := raw.ID.String()
	if movieID == "" {
		movieID = id
	}

	return &Movie{
		ID:               movieID,
		Title:            raw.Title,
		Overview:         raw.Overview,
		PosterPath:       raw.PosterPath,
		BackdropPath:     raw.BackdropPath,
		Genres:           raw.Genres,
		Cast:             cast,
		ReleaseDate:      raw.ReleaseDate,
		OriginalLanguage: raw.OriginalLanguage,
		Tagline:          raw.Tagline,
		Rating:           rating,
		Runtime:          raw.Runtime,
	}, nil
}
