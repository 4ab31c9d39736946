package entity

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending  BookingStatus = "pending"
	BookingStatusPaid     BookingStatus = "paid"
	BookingStatusReleased BookingStatus = "released"
)

type Booking struct {
	ID           uuid.UUID     `db:"id"`
	ShowID       uuid.UUID     `db:"show_id"`
	UserID       string        `db:"user_id"`
	Seats        []string      `db:"seats"`
	Amount       float64       `db:"amount"`
	Status       BookingStatus `db:"status"`
	ContactEmail *string       `db:"contact_email"`
	PaymentLink  *string       `db:"payment_link"`
	Timestamps
}

// ExpiresAt is when an unpaid hold lapses.
func (b *Booking) ExpiresAt(hold time.Duration) time.Time {
	return b.CreatedAt.Add(hold)
}

func (b *Booking) IsPending() bool {
	return b.Status == BookingStatusPending
}
