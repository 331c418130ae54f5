package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/vinothroacs/kalyanmalai-backend/pkg/monitoring"
	"github.com/vinothroacs/kalyanmalai-backend/v1/models"
)

// DefaultEmailQueue is the durable queue consumed by the mail delivery service
const DefaultEmailQueue = "kalyanmalai.emails"

// EmailPublisher hands an email to the delivery pipeline
type EmailPublisher interface {
	Publish(ctx context.Context, msg models.EmailMessage) error
}

// RabbitMQPublisher publishes email messages as persistent JSON to a durable queue
type RabbitMQPublisher struct {
	conn  *amqp.Connection
	chn   *amqp.Channel
	queue string
	mu    sync.Mutex
}

// NewRabbitMQPublisher dials the broker, opens a channel and declares the queue
func NewRabbitMQPublisher(url, queue string) (*RabbitMQPublisher, error) {
	if queue == "" {
		queue = DefaultEmailQueue
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	chn, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if _, err := chn.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	); err != nil {
		_ = chn.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}

	return &RabbitMQPublisher{conn: conn, chn: chn, queue: queue}, nil
}

// Publish implements EmailPublisher. amqp channels are not safe for concurrent publishing.
func (p *RabbitMQPublisher) Publish(ctx context.Context, msg models.EmailMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal email message: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	start := time.Now()
	err = p.chn.PublishWithContext(ctx,
		"",      // exchange
		p.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    msg.JobID,
			Timestamp:    msg.CreatedAt,
			Type:         string(msg.Type),
			Body:         body,
		},
	)
	monitoring.RecordExternalCall(ctx, "rabbitmq", "publish", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", p.queue, err)
	}
	return nil
}

// Close closes the channel and connection
func (p *RabbitMQPublisher) Close() error {
	if err := p.chn.Close(); err != nil {
		return err
	}
	return p.conn.Close()
}

// LogPublisher writes emails to the log; used when no broker is configured
type LogPublisher struct{}

// Publish implements EmailPublisher
func (LogPublisher) Publish(_ context.Context, msg models.EmailMessage) error {
	slog.Info("Email not sent: no broker configured",
		"jobID", msg.JobID,
		"type", msg.Type,
		"to", msg.To,
		"subject", msg.Subject)
	return nil
}
