// Package messaging delivers ledger events to downstream consumers.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SscSPs/water_billing_ledger/internal/core/domain"
	"github.com/SscSPs/water_billing_ledger/internal/core/ports"
	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitPublisher publishes events as persistent JSON messages to one durable queue.
type RabbitPublisher struct {
	mu      sync.Mutex // amqp channels are not safe for concurrent publishing
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
}

// NewRabbitPublisher dials the broker and declares the queue.
func NewRabbitPublisher(url, queue string) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	_, err = ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}

	slog.Info("Connected to RabbitMQ", slog.String("queue", queue))
	return &RabbitPublisher{conn: conn, channel: ch, queue: queue}, nil
}

var _ ports.EventPublisher = (*RabbitPublisher)(nil)

func (p *RabbitPublisher) Publish(ctx context.Context, event domain.LedgerEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", event.Type, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.channel.PublishWithContext(
		ctx,
		"",      // exchange
		p.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			MessageId:    event.EventID,
			Type:         string(event.Type),
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event %s: %w", event.Type, err)
	}
	return nil
}

// Close closes the channel and the connection.
func (p *RabbitPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.channel.Close(); err != nil {
		slog.Error("failed to close RabbitMQ channel", slog.String("error", err.Error()))
	}
	return p.conn.Close()
}
