package usecase

import (
	"context"
	"time"

	"cinema-showtime/pkg/broker"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Broker is the publishing half of *broker.Client.
type Broker interface {
	Publish(ctx context.Context, queue string, v any) error
	PublishDelayed(ctx context.Context, v any, delay time.Duration) error
}

// QueuePublisher implements EventPublisher and ReleaseScheduler on RabbitMQ.
type QueuePublisher struct {
	broker Broker
	log    *zap.Logger
}

func NewQueuePublisher(b Broker, log *zap.Logger) *QueuePublisher {
	return &QueuePublisher{
		broker: b,
		log:    log.With(zap.String("service", "queue_publisher")),
	}
}

func (p *QueuePublisher) ScheduleRelease(ctx context.Context, bookingID uuid.UUID, fireAt time.Time) error {
	msg := ReleaseDueMessage{BookingID: bookingID, FireAt: fireAt.UTC()}
	delay := time.Until(fireAt)

	if err := p.broker.PublishDelayed(ctx, msg, delay); err != nil {
		return err
	}

	p.log.Debug("Release scheduled",
		zap.String("booking_id", bookingID.String()),
		zap.Time("fire_at", fireAt),
	)
	return nil
}

func (p *QueuePublisher) PublishShowAdded(ctx context.Context, evt ShowAddedEvent) error {
	return p.broker.Publish(ctx, broker.QueueShowAdded, evt)
}

func (p *QueuePublisher) PublishBookingConfirmed(ctx context.Context, evt BookingConfirmedEvent) error {
	return p.broker.Publish(ctx, broker.QueueBookingConfirmed, evt)
}

func (p *QueuePublisher) EnqueueNotification(ctx context.Context, n NotificationRequest) error {
	return p.broker.Publish(ctx, broker.QueueNotification, n)
}
