package worker

import (
	"context"

	"cinema-showtime/pkg/broker"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	releasePrefetch      = 20
	notificationPrefetch = 5
)

// Consumer is the consuming half of *broker.Client.
type Consumer interface {
	Consume(ctx context.Context, queue string, prefetch int, handle broker.HandlerFunc) error
}

// Run consumes the release and notification queues until ctx is cancelled.
func Run(ctx context.Context, consumer Consumer, release *ReleaseWorker, notify *NotificationWorker, log *zap.Logger) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return consumer.Consume(ctx, broker.QueueRelease, releasePrefetch, release.Handle)
	})
	g.Go(func() error {
		return consumer.Consume(ctx, broker.QueueNotification, notificationPrefetch, notify.HandleNotification)
	})
	g.Go(func() error {
		return consumer.Consume(ctx, broker.QueueShowAdded, notificationPrefetch, notify.HandleShowAdded)
	})

	log.Info("Queue workers started")
	return g.Wait()
}
