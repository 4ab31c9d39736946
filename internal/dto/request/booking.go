package request

type CreateBookingRequest struct {
	ShowID       string   `json:"show_id" validate:"required,uuid"`
	Seats        []string `json:"seats" validate:"required,min=1,max=5,unique,dive,seat"`
	ContactEmail *string  `json:"contact_email,omitempty" validate:"omitempty,email"`
}
