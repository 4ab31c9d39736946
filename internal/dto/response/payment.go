package response

import "cinema-showtime/internal/data/entity"

type PaymentOutcome string

const (
	// PaymentConfirmed means this signal moved the booking to paid.
	PaymentConfirmed PaymentOutcome = "confirmed"
	// PaymentAbsorbed means the signal changed nothing: duplicate, late,
	// or for an unknown booking.
	PaymentAbsorbed PaymentOutcome = "absorbed"
)

type PaymentResult struct {
	BookingID     string               `json:"booking_id"`
	Outcome       PaymentOutcome       `json:"outcome"`
	BookingStatus entity.BookingStatus `json:"booking_status,omitempty"`
}
