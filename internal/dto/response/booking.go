package response

import (
	"time"

	"cinema-showtime/internal/data/entity"
)

type BookingResponse struct {
	ID          string               `json:"id"`
	ShowID      string               `json:"show_id"`
	UserID      string               `json:"user_id"`
	Seats       []string             `json:"seats"`
	Amount      float64              `json:"amount"`
	Status      entity.BookingStatus `json:"status"`
	PaymentLink *string              `json:"payment_link,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	ExpiresAt   *time.Time           `json:"expires_at,omitempty"`
}

// BookingToResponse sets ExpiresAt only while the booking is pending.
func BookingToResponse(b *entity.Booking, hold time.Duration) BookingResponse {
	resp := BookingResponse{
		ID:          b.ID.String(),
		ShowID:      b.ShowID.String(),
		UserID:      b.UserID,
		Seats:       b.Seats,
		Amount:      b.Amount,
		Status:      b.Status,
		PaymentLink: b.PaymentLink,
		CreatedAt:   b.CreatedAt,
	}
	if b.IsPending() {
		expires := b.ExpiresAt(hold)
		resp.ExpiresAt = &expires
	}
	return resp
}
