// Package messaging publishes outbound chat messages to RabbitMQ for delivery
// by the channel gateway.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// OutboundMessage is the payload published for each notification.
type OutboundMessage struct {
	ID        string    `json:"id"`
	Recipient string    `json:"recipient"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

const defaultDialTimeout = 5 * time.Second

// Publisher sends outbound messages to a durable queue.
type Publisher struct {
	mu          sync.Mutex
	url         string
	queue       string
	dialTimeout time.Duration
	conn        *amqp.Connection
	ch          *amqp.Channel
	logger      *zap.Logger
}

// NewPublisher connects to RabbitMQ with retries and declares the queue.
func NewPublisher(url, queue string, maxRetries int, logger *zap.Logger) (*Publisher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Publisher{url: url, queue: queue, dialTimeout: defaultDialTimeout, logger: logger}

	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err = p.ensureChannel(context.Background()); err == nil {
			logger.Info("connected to RabbitMQ", zap.String("queue", queue))
			return p, nil
		}

		logger.Warn("RabbitMQ not yet ready", zap.Int("attempt", attempt), zap.Error(err))
		if attempt < maxRetries {
			time.Sleep(time.Duration(math.Pow(2, float64(attempt-1))) * time.Second)
		}
	}
	return nil, fmt.Errorf("failed to connect to RabbitMQ after retries: %w", err)
}

// ensureChannel re-dials a closed connection and reopens a closed channel.
// Callers hold p.mu, except during construction.
func (p *Publisher) ensureChannel(ctx context.Context) error {
	if p.conn == nil || p.conn.IsClosed() {
		if p.conn != nil {
			_ = p.conn.Close()
		}
		p.conn, p.ch = nil, nil

		timeout, err := dialTimeout(ctx, p.dialTimeout)
		if err != nil {
			return err
		}
		conn, err := amqp.DialConfig(p.url, amqp.Config{
			Heartbeat: 10 * time.Second,
			Locale:    "en_US",
			Dial:      amqp.DefaultDial(timeout),
		})
		if err != nil {
			return err
		}
		p.conn = conn
	}

	if p.ch != nil && !p.ch.IsClosed() {
		return nil
	}
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	p.ch = ch
	return nil
}

// dialTimeout bounds max by the time left on ctx.
func dialTimeout(ctx context.Context, max time.Duration) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	timeout := max
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}
	if timeout <= 0 {
		return 0, context.DeadlineExceeded
	}
	return timeout, nil
}

// Publish sends one message. A closed connection or channel is reopened
// first, within the deadline of ctx.
func (p *Publisher) Publish(ctx context.Context, msg OutboundMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal outbound message: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureChannel(ctx); err != nil {
		return fmt.Errorf("failed to reconnect: %w", err)
	}

	err = p.ch.PublishWithContext(ctx,
		"",
		p.queue,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    msg.ID,
			Timestamp:    msg.CreatedAt,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish outbound message: %w", err)
	}
	return nil
}

// Close closes the channel and connection.
func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.conn, p.ch = nil, nil
}

// Send publishes body for recipient.
func (p *Publisher) Send(ctx context.Context, recipient, body string) error {
	return p.Publish(ctx, OutboundMessage{
		ID:        uuid.New().String(),
		Recipient: recipient,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	})
}
