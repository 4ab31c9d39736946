package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"cinema-showtime/internal/usecase"
	"cinema-showtime/pkg/broker"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReleaseWorker handles release-due messages dead-lettered off the delay queue.
type ReleaseWorker struct {
	timeout usecase.TimeoutService
	log     *zap.Logger
}

func NewReleaseWorker(timeout usecase.TimeoutService, log *zap.Logger) *ReleaseWorker {
	return &ReleaseWorker{
		timeout: timeout,
		log:     log.With(zap.String("worker", "release")),
	}
}

func (w *ReleaseWorker) Handle(ctx context.Context, body []byte) error {
	var msg usecase.ReleaseDueMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("%w: decode release message: %v", broker.ErrDiscard, err)
	}
	if msg.BookingID == uuid.Nil {
		return fmt.Errorf("%w: release message without booking id", broker.ErrDiscard)
	}

	outcome, err := w.timeout.HandleReleaseDue(ctx, msg.BookingID)
	if err != nil {
		return err
	}

	w.log.Debug("Release handled",
		zap.String("booking_id", msg.BookingID.String()),
		zap.String("outcome", string(outcome)),
	)
	return nil
}
