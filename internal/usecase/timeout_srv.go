package usecase

import (
	"context"
	"fmt"
	"time"

	"cinema-showtime/internal/data/entity"
	"cinema-showtime/internal/data/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ReleaseOutcome string

const (
	// ReleaseOutcomeReleased: the booking was pending; its seats were freed
	// and the booking deleted.
	ReleaseOutcomeReleased ReleaseOutcome = "released"
	// ReleaseOutcomeCleaned: an earlier attempt released but did not delete.
	ReleaseOutcomeCleaned     ReleaseOutcome = "cleaned"
	ReleaseOutcomeNoop        ReleaseOutcome = "noop"
	ReleaseOutcomeRescheduled ReleaseOutcome = "rescheduled"
)

// sweepBatch bounds how many stale bookings one sweep handles.
const sweepBatch = 100

type TimeoutService interface {
	// HandleReleaseDue runs when a booking's hold may have lapsed. It is
	// safe under repeated and concurrent delivery.
	HandleReleaseDue(ctx context.Context, bookingID uuid.UUID) (ReleaseOutcome, error)
	// SweepExpired handles pending bookings whose hold lapsed without a
	// delivered timer.
	SweepExpired(ctx context.Context) (int, error)
}

type timeoutService struct {
	repo      *repository.Repository
	scheduler ReleaseScheduler
	hold      time.Duration
	log       *zap.Logger
	now       func() time.Time
}

func NewTimeoutService(repo *repository.Repository, scheduler ReleaseScheduler, hold time.Duration, log *zap.Logger) TimeoutService {
	return &timeoutService{
		repo:      repo,
		scheduler: scheduler,
		hold:      hold,
		log:       log.With(zap.String("service", "timeout")),
		now:       time.Now,
	}
}

func (s *timeoutService) HandleReleaseDue(ctx context.Context, bookingID uuid.UUID) (ReleaseOutcome, error) {
	log := s.log.With(zap.String("booking_id", bookingID.String()))

	booking, err := s.repo.Booking.FindByID(ctx, bookingID)
	if err != nil {
		return "", fmt.Errorf("load booking for release: %w", err)
	}
	if booking == nil {
		log.Debug("Booking already gone, nothing to release")
		return ReleaseOutcomeNoop, nil
	}

	switch booking.Status {
	case entity.BookingStatusPaid:
		log.Debug("Booking paid, nothing to release")
		return ReleaseOutcomeNoop, nil

	case entity.BookingStatusReleased:
		return s.cleanup(ctx, bookingID, ReleaseOutcomeCleaned)

	case entity.BookingStatusPending:
		due := booking.ExpiresAt(s.hold)
		if s.now().Before(due) {
			if err := s.scheduler.ScheduleRelease(ctx, bookingID, due); err != nil {
				return "", fmt.Errorf("reschedule early release: %w", err)
			}
			log.Info("Release delivered early, rescheduled", zap.Time("due", due))
			return ReleaseOutcomeRescheduled, nil
		}

		released, err := s.repo.Ledger.Release(ctx, bookingID)
		if err != nil {
			return "", fmt.Errorf("release booking: %w", err)
		}
		if !released {
			// Lost the race; re-read to see who won.
			return s.afterLostRace(ctx, bookingID)
		}

		log.Info("Hold expired, seats released", zap.Strings("seats", booking.Seats))
		return s.cleanup(ctx, bookingID, ReleaseOutcomeReleased)
	}

	log.Warn("Unknown booking status", zap.String("status", string(booking.Status)))
	return ReleaseOutcomeNoop, nil
}

func (s *timeoutService) afterLostRace(ctx context.Context, bookingID uuid.UUID) (ReleaseOutcome, error) {
	booking, err := s.repo.Booking.FindByID(ctx, bookingID)
	if err != nil {
		return "", fmt.Errorf("reload booking after release race: %w", err)
	}
	if booking != nil && booking.Status == entity.BookingStatusReleased {
		return s.cleanup(ctx, bookingID, ReleaseOutcomeCleaned)
	}
	return ReleaseOutcomeNoop, nil
}

func (s *timeoutService) cleanup(ctx context.Context, bookingID uuid.UUID, outcome ReleaseOutcome) (ReleaseOutcome, error) {
	if _, err := s.repo.Booking.Delete(ctx, bookingID); err != nil {
		return "", fmt.Errorf("delete released booking: %w", err)
	}
	return outcome, nil
}

func (s *timeoutService) SweepExpired(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.hold)

	stale, err := s.repo.Booking.FindPendingCreatedBefore(ctx, cutoff, sweepBatch)
	if err != nil {
		return 0, fmt.Errorf("sweep expired bookings: %w", err)
	}

	released := 0
	for _, b := range stale {
		outcome, err := s.HandleReleaseDue(ctx, b.ID)
		if err != nil {
			s.log.Error("Sweep release failed", zap.String("booking_id", b.ID.String()), zap.Error(err))
			continue
		}
		if outcome == ReleaseOutcomeReleased {
			released++
		}
	}

	if len(stale) > 0 {
		s.log.Info("Expired holds swept", zap.Int("found", len(stale)), zap.Int("released", released))
	}
	return released, nil
}
