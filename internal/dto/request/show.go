package request

// ScheduleInput is one date with the times to screen on it.
type ScheduleInput struct {
	Date  string   `json:"date" validate:"required,datetime=2006-01-02"`
	Times []string `json:"times" validate:"required,min=1,dive,datetime=15:04"`
}

type BulkCreateShowsRequest struct {
	MovieIDs   []string        `json:"movie_ids" validate:"required,min=1,dive,required"`
	TheaterIDs []string        `json:"theater_ids" validate:"required,min=1,dive,uuid"`
	Schedule   []ScheduleInput `json:"shows_input" validate:"required,min=1,dive"`
	Price      float64         `json:"show_price" validate:"required,gt=0"`
}

type CreateShowRequest struct {
	MovieID   string  `json:"movie_id" validate:"required"`
	TheaterID string  `json:"theater_id" validate:"required,uuid"`
	Date      string  `json:"date" validate:"required,datetime=2006-01-02"`
	Time      string  `json:"time" validate:"required,datetime=15:04"`
	Price     float64 `json:"show_price" validate:"required,gt=0"`
}
