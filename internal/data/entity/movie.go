package entity

import (
	"time"
)

type CastMember struct {
	Name        string `json:"name"`
	ProfilePath string `json:"profile_path,omitempty"`
}

// Movie is catalog metadata cached from the external source. The ID is the
// source's identifier, not one we generate.
type Movie struct {
	ID               string       `db:"id" json:"id"`
	Title            string       `db:"title" json:"title"`
	Overview         string       `db:"overview" json:"overview"`
	PosterPath       string       `db:"poster_path" json:"poster_path,omitempty"`
	BackdropPath     string       `db:"backdrop_path" json:"backdrop_path,omitempty"`
	Genres           []string     `db:"genres" json:"genres"`
	Casts            []CastMember `db:"casts" json:"casts"`
	ReleaseDate      *time.Time   `db:"release_date" json:"release_date,omitempty"`
	OriginalLanguage string       `db:"original_language" json:"original_language,omitempty"`
	Tagline          string       `db:"tagline" json:"tagline,omitempty"`
	Rating           float64      `db:"vote_average" json:"vote_average"`
	Runtime          int          `db:"runtime" json:"runtime"`
	Timestamps
}
