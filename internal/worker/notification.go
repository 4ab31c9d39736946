package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cinema-showtime/internal/usecase"
	"cinema-showtime/pkg/broker"

	"go.uber.org/zap"
)

// Sender delivers one HTML mail.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

type NotificationWorker struct {
	sender     Sender
	newShowsTo []string
	loc        *time.Location
	log        *zap.Logger
}

func NewNotificationWorker(sender Sender, newShowsTo []string, loc *time.Location, log *zap.Logger) *NotificationWorker {
	return &NotificationWorker{
		sender:     sender,
		newShowsTo: newShowsTo,
		loc:        loc,
		log:        log.With(zap.String("worker", "notification")),
	}
}

// HandleNotification sends a rendered mail. SMTP failures are logged and the
// message is dropped; mail is best effort.
func (w *NotificationWorker) HandleNotification(ctx context.Context, body []byte) error {
	var n usecase.NotificationRequest
	if err := json.Unmarshal(body, &n); err != nil {
		return fmt.Errorf("%w: decode notification: %v", broker.ErrDiscard, err)
	}
	if n.To == "" {
		return fmt.Errorf("%w: notification without recipient", broker.ErrDiscard)
	}

	if err := w.sender.Send(ctx, n.To, n.Subject, n.Body); err != nil {
		w.log.Error("Failed to send mail",
			zap.String("kind", string(n.Kind)),
			zap.String("to", n.To),
			zap.Error(err),
		)
		return nil
	}

	w.log.Info("Mail sent", zap.String("kind", string(n.Kind)), zap.String("to", n.To))
	return nil
}

// HandleShowAdded announces new shows to the configured subscribers.
func (w *NotificationWorker) HandleShowAdded(ctx context.Context, body []byte) error {
	var evt usecase.ShowAddedEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		return fmt.Errorf("%w: decode show added: %v", broker.ErrDiscard, err)
	}
	if len(w.newShowsTo) == 0 {
		return nil
	}

	subject, html, err := usecase.RenderShowAddedMail(evt, w.loc)
	if err != nil {
		return fmt.Errorf("%w: %v", broker.ErrDiscard, err)
	}

	sent := 0
	for _, to := range w.newShowsTo {
		if err := w.sender.Send(ctx, to, subject, html); err != nil {
			w.log.Error("Failed to send new show mail", zap.String("to", to), zap.Error(err))
			continue
		}
		sent++
	}

	w.log.Info("New show announced",
		zap.String("movie_id", evt.MovieID),
		zap.Int("recipients", sent),
	)
	return nil
}
