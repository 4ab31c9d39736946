package usecase

import (
	"context"
	"fmt"
	"time"

	"cinema-showtime/internal/data/entity"
	"cinema-showtime/internal/data/repository"
	"cinema-showtime/internal/dto/request"
	"cinema-showtime/internal/dto/response"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PaymentService interface {
	// ConfirmPayment applies a verified payment signal. Signals for bookings
	// that are no longer pending are absorbed and never revive a booking.
	ConfirmPayment(ctx context.Context, req *request.PaymentConfirmedRequest) (*response.PaymentResult, error)
	AttachPaymentLink(ctx context.Context, userID, bookingID string, req *request.PaymentLinkRequest) error
}

type paymentService struct {
	repo      *repository.Repository
	publisher EventPublisher
	loc       *time.Location
	log       *zap.Logger
	now       func() time.Time
}

func NewPaymentService(repo *repository.Repository, publisher EventPublisher, loc *time.Location, log *zap.Logger) PaymentService {
	return &paymentService{
		repo:      repo,
		publisher: publisher,
		loc:       loc,
		log:       log.With(zap.String("service", "payment")),
		now:       time.Now,
	}
}

func (s *paymentService) ConfirmPayment(ctx context.Context, req *request.PaymentConfirmedRequest) (*response.PaymentResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	bookingID := uuid.MustParse(req.BookingID)
	log := s.log.With(zap.String("booking_id", req.BookingID))

	paid, err := s.repo.Booking.MarkPaid(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("confirm payment: %w", err)
	}

	if !paid {
		booking, err := s.repo.Booking.FindByID(ctx, bookingID)
		if err != nil {
			return nil, fmt.Errorf("inspect absorbed payment: %w", err)
		}
		result := &response.PaymentResult{BookingID: req.BookingID, Outcome: response.PaymentAbsorbed}
		if booking == nil {
			log.Warn("Payment signal for missing booking, hold already expired")
		} else {
			result.BookingStatus = booking.Status
			log.Warn("Payment signal absorbed", zap.String("status", string(booking.Status)))
		}
		return result, nil
	}

	booking, err := s.repo.Booking.FindByID(ctx, bookingID)
	if err != nil || booking == nil {
		// The transition is committed; downstream mail is best effort.
		log.Error("Paid booking could not be reloaded", zap.Error(err))
		return &response.PaymentResult{
			BookingID:     req.BookingID,
			Outcome:       response.PaymentConfirmed,
			BookingStatus: entity.BookingStatusPaid,
		}, nil
	}

	log.Info("Booking paid", zap.Float64("amount", booking.Amount))
	s.notifyPaid(ctx, req, booking)

	return &response.PaymentResult{
		BookingID:     req.BookingID,
		Outcome:       response.PaymentConfirmed,
		BookingStatus: entity.BookingStatusPaid,
	}, nil
}

// notifyPaid enqueues the confirmation mail and the booking.confirmed event.
func (s *paymentService) notifyPaid(ctx context.Context, req *request.PaymentConfirmedRequest, booking *entity.Booking) {
	log := s.log.With(zap.String("booking_id", booking.ID.String()))

	mail := ticketMail{
		MovieTitle: req.MovieTitle,
		Seats:      booking.Seats,
		Amount:     booking.Amount,
	}
	if t, err := time.Parse(time.RFC3339, req.ShowTime); err == nil {
		mail.ShowTime = t
	}
	s.fillFromShow(ctx, booking.ShowID, &mail)

	evt := BookingConfirmedEvent{
		BookingID:   booking.ID,
		ShowID:      booking.ShowID,
		UserID:      booking.UserID,
		Seats:       booking.Seats,
		Amount:      booking.Amount,
		MovieTitle:  mail.MovieTitle,
		ShowTime:    mail.ShowTime,
		ConfirmedAt: s.now(),
	}
	if err := s.publisher.PublishBookingConfirmed(ctx, evt); err != nil {
		log.Warn("Failed to publish booking confirmed", zap.Error(err))
	}

	to := req.ContactEmail
	if to == "" && booking.ContactEmail != nil {
		to = *booking.ContactEmail
	}
	if to == "" {
		log.Info("No contact e-mail, skipping confirmation mail")
		return
	}

	n, err := bookingConfirmedMail(to, mail, s.loc)
	if err != nil {
		log.Error("Failed to render confirmation mail", zap.Error(err))
		return
	}
	if err := s.publisher.EnqueueNotification(ctx, n); err != nil {
		log.Warn("Failed to enqueue confirmation mail", zap.Error(err))
	}
}

// fillFromShow completes mail details the signal did not carry.
func (s *paymentService) fillFromShow(ctx context.Context, showID uuid.UUID, mail *ticketMail) {
	if mail.MovieTitle != "" && !mail.ShowTime.IsZero() {
		return
	}

	show, err := s.repo.Show.FindByID(ctx, showID)
	if err != nil || show == nil {
		return
	}
	if mail.ShowTime.IsZero() {
		mail.ShowTime = show.StartsAt
	}
	if mail.MovieTitle == "" {
		if movie, err := s.repo.Movie.FindByID(ctx, show.MovieID); err == nil && movie != nil {
			mail.MovieTitle = movie.Title
		}
	}
}

func (s *paymentService) AttachPaymentLink(ctx context.Context, userID, bookingID string, req *request.PaymentLinkRequest) error {
	if err := validateRequest(req); err != nil {
		return err
	}
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return newValidationError("booking_id", "Must be a valid UUID")
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("attach payment link: %w", err)
	}
	if booking == nil || booking.UserID != userID {
		return fmt.Errorf("%w: booking %s", ErrNotFound, bookingID)
	}

	ok, err := s.repo.Booking.SetPaymentLink(ctx, id, req.PaymentLink)
	if err != nil {
		return fmt.Errorf("attach payment link: %w", err)
	}
	if !ok {
		return newValidationError("booking_id", "Booking is no longer pending")
	}
	return nil
}
