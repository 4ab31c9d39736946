package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	// QueueReleaseDelay has no consumers. Messages sit there until their
	// per-message expiration and are then dead-lettered to QueueRelease.
	QueueReleaseDelay     = "booking.release.delay"
	QueueRelease          = "booking.release"
	QueueNotification     = "notification.requested"
	QueueBookingConfirmed = "booking.confirmed"
	QueueShowAdded        = "show.added"
)

// ErrDiscard marks a delivery that can never succeed (bad payload). It is
// rejected without requeue.
var ErrDiscard = errors.New("discard message")

// HandlerFunc processes one delivery body. nil acks, ErrDiscard rejects,
// any other error requeues after a short pause.
type HandlerFunc func(ctx context.Context, body []byte) error

type Client struct {
	url string
	log *zap.Logger

	mu    sync.Mutex
	conn  *amqp.Connection
	pubCh *amqp.Channel
}

// Dial connects to the broker and declares the queue topology.
func Dial(url string, log *zap.Logger) (*Client, error) {
	c := &Client{
		url: url,
		log: log.With(zap.String("component", "broker")),
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.channelLocked(); err != nil {
		return nil, err
	}
	return c, nil
}

// channelLocked returns the publishing channel, reconnecting when needed.
func (c *Client) channelLocked() (*amqp.Channel, error) {
	if c.pubCh != nil && !c.pubCh.IsClosed() {
		return c.pubCh, nil
	}

	if c.conn == nil || c.conn.IsClosed() {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			return nil, fmt.Errorf("dial broker: %w", err)
		}
		c.conn = conn
	}

	ch, err := c.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := declareTopology(ch); err != nil {
		_ = ch.Close()
		return nil, err
	}

	c.pubCh = ch
	return ch, nil
}

func declareTopology(ch *amqp.Channel) error {
	durable := []string{QueueRelease, QueueNotification, QueueBookingConfirmed, QueueShowAdded}
	for _, name := range durable {
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare queue %s: %w", name, err)
		}
	}

	args := amqp.Table{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": QueueRelease,
	}
	if _, err := ch.QueueDeclare(QueueReleaseDelay, true, false, false, false, args); err != nil {
		return fmt.Errorf("declare queue %s: %w", QueueReleaseDelay, err)
	}
	return nil
}

// Publish sends v as a persistent JSON message to queue via the default exchange.
func (c *Client) Publish(ctx context.Context, queue string, v any) error {
	return c.publish(ctx, queue, v, 0)
}

// PublishDelayed parks v on the delay queue; it reaches QueueRelease once
// delay has elapsed.
func (c *Client) PublishDelayed(ctx context.Context, v any, delay time.Duration) error {
	if delay < time.Millisecond {
		delay = time.Millisecond
	}
	return c.publish(ctx, QueueReleaseDelay, v, delay)
}

func (c *Client) publish(ctx context.Context, queue string, v any, delay time.Duration) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal message for %s: %w", queue, err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if delay > 0 {
		pub.Expiration = strconv.FormatInt(delay.Milliseconds(), 10)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	ch, err := c.channelLocked()
	if err != nil {
		return err
	}

	if err := ch.PublishWithContext(ctx, "", queue, false, false, pub); err != nil {
		if errors.Is(err, amqp.ErrClosed) {
			c.pubCh = nil
		}
		return fmt.Errorf("publish to %s: %w", queue, err)
	}
	return nil
}

// Consume runs handle for every delivery on queue until ctx is cancelled,
// reconnecting with exponential backoff when the connection drops.
func (c *Client) Consume(ctx context.Context, queue string, prefetch int, handle HandlerFunc) error {
	log := c.log.With(zap.String("queue", queue))
	backoff := time.Second

	for {
		err := c.consumeOnce(ctx, queue, prefetch, handle, log)
		if ctx.Err() != nil {
			return nil
		}

		log.Warn("Consume loop ended, reconnecting", zap.Error(err), zap.Duration("backoff", backoff))
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

func (c *Client) consumeOnce(ctx context.Context, queue string, prefetch int, handle HandlerFunc, log *zap.Logger) error {
	c.mu.Lock()
	if c.conn == nil || c.conn.IsClosed() {
		if _, err := c.channelLocked(); err != nil {
			c.mu.Unlock()
			return err
		}
	}
	conn := c.conn
	c.mu.Unlock()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open consumer channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(prefetch, 0, false); err != nil {
		log.Warn("Set QoS failed", zap.Error(err))
	}

	msgs, err := ch.ConsumeWithContext(ctx, queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", queue, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			dispatch(ctx, d, handle, log)
		}
	}
}

// Acknowledger is the part of amqp.Delivery that dispatch needs.
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func dispatch(ctx context.Context, d amqp.Delivery, handle HandlerFunc, log *zap.Logger) {
	Settle(ctx, d, d.Body, handle, log)
}

// Settle runs handle and acks, rejects or requeues the delivery.
func Settle(ctx context.Context, ack Acknowledger, body []byte, handle HandlerFunc, log *zap.Logger) {
	err := handle(ctx, body)
	switch {
	case err == nil:
		_ = ack.Ack(false)
	case errors.Is(err, ErrDiscard):
		log.Error("Discarding message", zap.Error(err), zap.ByteString("body", body))
		_ = ack.Nack(false, false)
	default:
		log.Warn("Message handling failed, requeueing", zap.Error(err))
		select {
		case <-ctx.Done():
		case <-time.After(time.Second):
		}
		_ = ack.Nack(false, true)
	}
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pubCh != nil {
		_ = c.pubCh.Close()
	}
	if c.conn != nil && !c.conn.IsClosed() {
		return c.conn.Close()
	}
	return nil
}
