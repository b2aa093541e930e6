package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	defaultDialTimeout = 2 * time.Second
	defaultRetryDelay  = 5 * time.Second
)

// ErrBrokerUnavailable is returned while the forwarder waits out a failed dial.
var ErrBrokerUnavailable = errors.New("amqp broker unavailable")

// AMQPForwarder republishes dispatched events to a durable RabbitMQ queue.
// The connection is opened lazily and reopened after failures. A failed dial
// makes Handle fail fast until retryDelay has passed.
type AMQPForwarder struct {
	url    string
	queue  string
	logger *zap.Logger

	dialTimeout time.Duration
	retryDelay  time.Duration

	mu      sync.Mutex
	conn    *amqp.Connection
	ch      *amqp.Channel
	retryAt time.Time
}

// NewAMQPForwarder builds a forwarder. No connection is made until the first event.
func NewAMQPForwarder(url, queue string, logger *zap.Logger) *AMQPForwarder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AMQPForwarder{
		url:         url,
		queue:       queue,
		logger:      logger,
		dialTimeout: defaultDialTimeout,
		retryDelay:  defaultRetryDelay,
	}
}

// Register subscribes the forwarder to the given event types.
func (f *AMQPForwarder) Register(dispatcher Dispatcher, types ...EventType) {
	for _, t := range types {
		dispatcher.Subscribe(t, f.Handle)
	}
}

// Handle publishes one event as a persistent JSON message.
func (f *AMQPForwarder) Handle(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	ch, err := f.channel(ctx)
	if err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID,
		Type:         string(event.Type),
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", f.queue, false, false, pub); err != nil {
		f.resetLocked()
		return err
	}
	f.logger.Debug("event forwarded",
		zap.String("queue", f.queue),
		zap.String("event_type", string(event.Type)),
		zap.String("complaint_id", event.ComplaintID))
	return nil
}

// Close releases the channel and connection.
func (f *AMQPForwarder) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetLocked()
}

func (f *AMQPForwarder) channel(ctx context.Context) (*amqp.Channel, error) {
	if f.url == "" {
		return nil, errors.New("amqp url not configured")
	}
	if f.ch != nil && !f.ch.IsClosed() {
		return f.ch, nil
	}
	f.resetLocked()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if time.Now().Before(f.retryAt) {
		return nil, ErrBrokerUnavailable
	}
	conn, err := amqp.DialConfig(f.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(f.dialTimeout),
	})
	if err != nil {
		f.retryAt = time.Now().Add(f.retryDelay)
		f.logger.Warn("amqp dial failed", zap.Duration("retry_in", f.retryDelay), zap.Error(err))
		return nil, err
	}
	f.retryAt = time.Time{}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if _, err := ch.QueueDeclare(f.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	f.conn, f.ch = conn, ch
	return ch, nil
}

func (f *AMQPForwarder) resetLocked() {
	if f.ch != nil {
		_ = f.ch.Close()
		f.ch = nil
	}
	if f.conn != nil {
		_ = f.conn.Close()
		f.conn = nil
	}
}
