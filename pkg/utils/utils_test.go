package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeatLayout_Contains(t *testing.T) {
	layout := NewSeatLayout(BookingConfig{})

	tests := []struct {
		seat string
		want bool
	}{
		{"A1", true},
		{"J9", true},
		{"J10", false},
		{"K1", false},
		{"A0", false},
		{"A", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.seat, func(t *testing.T) {
			assert.Equal(t, tt.want, layout.Contains(tt.seat))
		})
	}
}

func TestValidateStruct_Seat(t *testing.T) {
	type req struct {
		Seats []string `validate:"required,min=1,unique,dive,seat"`
	}

	assert.Empty(t, ValidateStruct(req{Seats: []string{"A1", "B12"}}))

	errs := ValidateStruct(req{Seats: []string{"a1"}})
	require.Len(t, errs, 1)
	for _, msg := range errs {
		assert.Equal(t, "Must be a seat id such as A1", msg)
	}

	errs = ValidateStruct(req{Seats: []string{"A1", "A1"}})
	assert.Equal(t, "Must not contain duplicates", errs["Seats"])
}

func TestFormatValidationErrors(t *testing.T) {
	got := FormatValidationErrors(map[string]string{
		"seats":   "Must not contain duplicates",
		"show_id": "Must be a valid UUID",
	})

	assert.Equal(t, "seats: Must not contain duplicates; show_id: Must be a valid UUID", got)
}

func TestLoadConfig(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("BOOKING_HOLD_MINUTES", "10")
	t.Setenv("NEW_SHOW_NOTIFY_TO", "ops@example.com, news@example.com")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, cfg.Booking.HoldWindow)
	assert.Equal(t, 5, cfg.Booking.MaxSeats)
	assert.Equal(t, []string{"ops@example.com", "news@example.com"}, cfg.Email.NewShowsTo)
	assert.Equal(t, "*/10 * * * *", cfg.Jobs.ReminderCron)
	assert.Equal(t, 10*time.Minute, cfg.Jobs.ReminderInterval())
	assert.Equal(t, time.UTC, cfg.App.Location())
}

func TestLoadConfig_MaxSeatsCapped(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("BOOKING_MAX_SEATS", "12")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Booking.MaxSeats)
}

func TestJobsConfig_ReminderInterval(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want time.Duration
	}{
		{"every ten minutes", "*/10 * * * *", 10 * time.Minute},
		{"every eight hours", "0 */8 * * *", 8 * time.Hour},
		{"hourly", "@hourly", time.Hour},
		{"invalid", "not a cron", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, JobsConfig{ReminderCron: tt.expr}.ReminderInterval())
		})
	}
}
