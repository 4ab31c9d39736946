package usecase

import (
	"context"
	"time"

	"cinema-showtime/internal/data/entity"

	"github.com/google/uuid"
)

// MovieSource fetches metadata for movies the catalog has not seen yet.
type MovieSource interface {
	FetchMovie(ctx context.Context, id string) (*entity.Movie, error)
}

// ReleaseScheduler arms a durable, delayed release for a booking.
type ReleaseScheduler interface {
	ScheduleRelease(ctx context.Context, bookingID uuid.UUID, fireAt time.Time) error
}

type EventPublisher interface {
	PublishShowAdded(ctx context.Context, evt ShowAddedEvent) error
	PublishBookingConfirmed(ctx context.Context, evt BookingConfirmedEvent) error
	EnqueueNotification(ctx context.Context, n NotificationRequest) error
}
