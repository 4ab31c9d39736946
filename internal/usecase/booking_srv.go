package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"cinema-showtime/internal/data/entity"
	"cinema-showtime/internal/data/repository"
	"cinema-showtime/internal/dto/request"
	"cinema-showtime/internal/dto/response"
	"cinema-showtime/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingService interface {
	// CreateBooking holds the requested seats for a pending booking and arms
	// its release timeout. All seats are claimed or none are.
	CreateBooking(ctx context.Context, userID string, req *request.CreateBookingRequest) (*response.BookingResponse, error)
	GetBooking(ctx context.Context, userID, bookingID string) (*response.BookingResponse, error)
}

// maxSeatsPerBooking is the hard cap regardless of configuration.
const maxSeatsPerBooking = 5

type BookingPolicy struct {
	HoldWindow time.Duration
	MaxSeats   int
	Layout     utils.SeatLayout
}

func NewBookingPolicy(cfg utils.BookingConfig) BookingPolicy {
	maxSeats := cfg.MaxSeats
	if maxSeats <= 0 || maxSeats > maxSeatsPerBooking {
		maxSeats = maxSeatsPerBooking
	}
	return BookingPolicy{
		HoldWindow: cfg.HoldWindow,
		MaxSeats:   maxSeats,
		Layout:     utils.NewSeatLayout(cfg),
	}
}

type bookingService struct {
	repo      *repository.Repository
	scheduler ReleaseScheduler
	policy    BookingPolicy
	log       *zap.Logger
	now       func() time.Time
}

func NewBookingService(repo *repository.Repository, scheduler ReleaseScheduler, policy BookingPolicy, log *zap.Logger) BookingService {
	return &bookingService{
		repo:      repo,
		scheduler: scheduler,
		policy:    policy,
		log:       log.With(zap.String("service", "booking")),
		now:       time.Now,
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, userID string, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	if userID == "" {
		return nil, newValidationError("user_id", "This field is required")
	}

	for i, seat := range req.Seats {
		req.Seats[i] = strings.ToUpper(strings.TrimSpace(seat))
	}

	if err := validateRequest(req); err != nil {
		s.log.Warn("Create booking validation failed", zap.Error(err))
		return nil, err
	}
	if len(req.Seats) > s.policy.MaxSeats {
		return nil, newValidationError("seats", fmt.Sprintf("At most %d seats per booking", s.policy.MaxSeats))
	}
	for _, seat := range req.Seats {
		if !s.policy.Layout.Contains(seat) {
			return nil, newValidationError("seats", fmt.Sprintf("Seat %s does not exist", seat))
		}
	}

	showID, err := uuid.Parse(req.ShowID)
	if err != nil {
		return nil, newValidationError("show_id", "Must be a valid UUID")
	}

	show, err := s.repo.Show.FindByID(ctx, showID)
	if err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}
	if show == nil {
		return nil, fmt.Errorf("%w: show %s", ErrNotFound, req.ShowID)
	}

	now := s.now()
	if show.HasStarted(now) {
		return nil, newValidationError("show_id", "Show has already started")
	}

	booking := &entity.Booking{
		ID:           uuid.New(),
		ShowID:       showID,
		UserID:       userID,
		Seats:        append([]string(nil), req.Seats...),
		Amount:       roundCents(show.Price * float64(len(req.Seats))),
		Status:       entity.BookingStatusPending,
		ContactEmail: req.ContactEmail,
		Timestamps:   entity.Timestamps{CreatedAt: now, UpdatedAt: now},
	}

	if err := s.repo.Ledger.Reserve(ctx, booking); err != nil {
		var taken *repository.SeatsTakenError
		switch {
		case errors.As(err, &taken):
			s.log.Info("Seat conflict",
				zap.String("show_id", req.ShowID),
				zap.Strings("requested", booking.Seats),
				zap.Strings("taken", taken.Seats),
			)
			return nil, &SeatConflictError{Seats: taken.Seats}
		case errors.Is(err, repository.ErrShowNotFound):
			return nil, fmt.Errorf("%w: show %s", ErrNotFound, req.ShowID)
		default:
			return nil, fmt.Errorf("reserve seats: %w", err)
		}
	}

	fireAt := booking.ExpiresAt(s.policy.HoldWindow)
	if err := s.scheduler.ScheduleRelease(ctx, booking.ID, fireAt); err != nil {
		// The pending sweeper releases it instead.
		s.log.Error("Failed to schedule release",
			zap.String("booking_id", booking.ID.String()),
			zap.Time("fire_at", fireAt),
			zap.Error(err),
		)
	}

	s.log.Info("Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("show_id", req.ShowID),
		zap.String("user_id", userID),
		zap.Int("seat_count", len(booking.Seats)),
		zap.Float64("amount", booking.Amount),
	)

	resp := response.BookingToResponse(booking, s.policy.HoldWindow)
	return &resp, nil
}

func (s *bookingService) GetBooking(ctx context.Context, userID, bookingID string) (*response.BookingResponse, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, newValidationError("booking_id", "Must be a valid UUID")
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	// Other holders' bookings are reported as missing.
	if booking == nil || booking.UserID != userID {
		return nil, fmt.Errorf("%w: booking %s", ErrNotFound, bookingID)
	}

	resp := response.BookingToResponse(booking, s.policy.HoldWindow)
	return &resp, nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
