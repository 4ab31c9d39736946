package entity

import (
	"github.com/google/uuid"
)

type Address struct {
	Street  string `db:"street"`
	City    string `db:"city"`
	State   string `db:"state"`
	Zipcode string `db:"zipcode"`
}

type GeoPoint struct {
	Longitude *float64 `db:"longitude"`
	Latitude  *float64 `db:"latitude"`
}

type Theater struct {
	ID          uuid.UUID `db:"id"`
	Code        string    `db:"code"`
	Name        string    `db:"name"`
	ImageURL    *string   `db:"image_url"`
	ScreenCount int       `db:"screen_count"`
	Address
	Location GeoPoint
	Timestamps
}
