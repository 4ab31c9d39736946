package request

// PaymentConfirmedRequest is the already-verified signal forwarded by the
// payment webhook. The metadata fields mirror what the checkout session
// carried and are used for the confirmation mail.
type PaymentConfirmedRequest struct {
	BookingID     string   `json:"booking_id" validate:"required,uuid"`
	ContactEmail  string   `json:"contact_email" validate:"omitempty,email"`
	MovieTitle    string   `json:"movie_title"`
	ShowTime      string   `json:"show_time"`
	SelectedSeats []string `json:"selected_seats"`
}

type PaymentLinkRequest struct {
	PaymentLink string `json:"payment_link" validate:"required,url"`
}
