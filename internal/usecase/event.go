package usecase

import (
	"time"

	"github.com/google/uuid"
)

// ReleaseDueMessage is parked on the delay queue when a booking is created.
type ReleaseDueMessage struct {
	BookingID uuid.UUID `json:"booking_id"`
	FireAt    time.Time `json:"fire_at"`
}

type ShowAddedEvent struct {
	MovieID    string    `json:"movie_id"`
	MovieTitle string    `json:"movie_title"`
	ShowCount  int       `json:"show_count"`
	FirstShow  time.Time `json:"first_show"`
	AddedAt    time.Time `json:"added_at"`
}

type BookingConfirmedEvent struct {
	BookingID   uuid.UUID `json:"booking_id"`
	ShowID      uuid.UUID `json:"show_id"`
	UserID      string    `json:"user_id"`
	Seats       []string  `json:"seats"`
	Amount      float64   `json:"amount"`
	MovieTitle  string    `json:"movie_title,omitempty"`
	ShowTime    time.Time `json:"show_time"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}

type NotificationKind string

const (
	NotificationBookingConfirmed NotificationKind = "booking_confirmed"
	NotificationShowReminder     NotificationKind = "show_reminder"
)

// NotificationRequest is a rendered e-mail waiting to be sent.
type NotificationRequest struct {
	Kind    NotificationKind `json:"kind"`
	To      string           `json:"to"`
	Subject string           `json:"subject"`
	Body    string           `json:"body"`
}
