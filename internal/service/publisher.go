// Package service holds collaborators shared by the HTTP handlers that are
// not part of the data access layer.  Publisher sends domain events to
// RabbitMQ; failures are logged and returned so callers can ignore them
// without interrupting the request.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/fyyur-trivia/internal/queue"
)

// Publisher delivers domain events.
type Publisher interface {
	Publish(ctx context.Context, ev queue.Event) error
}

// NopPublisher drops every event.  It is used when EVENTS_ENABLED is off.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, queue.Event) error { return nil }

// AMQPPublisher publishes JSON events as persistent messages on the default
// exchange, routed to a durable queue named after the event.  The
// connection is dialled lazily and redialled after it drops.
type AMQPPublisher struct {
	url string

	mu       sync.Mutex
	conn     *amqp.Connection
	declared map[string]bool
}

// NewAMQPPublisher returns a publisher for the broker at url.
func NewAMQPPublisher(url string) *AMQPPublisher {
	return &AMQPPublisher{url: url, declared: map[string]bool{}}
}

// Publish implements Publisher.
func (p *AMQPPublisher) Publish(ctx context.Context, ev queue.Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		logrus.WithError(err).Warn("rabbitmq: channel unavailable")
		return err
	}
	defer func() { _ = ch.Close() }()

	name := ev.Queue()
	if !p.declared[name] {
		// idempotent; durable so messages survive broker restarts
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			logrus.WithError(err).WithField("queue", name).Warn("rabbitmq: queue declare failed")
			return err
		}
		p.declared[name] = true
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", name, false, false, pub); err != nil {
		logrus.WithError(err).WithField("queue", name).Warn("rabbitmq: publish failed")
		return err
	}
	return nil
}

func (p *AMQPPublisher) channel() (*amqp.Channel, error) {
	if p.conn == nil || p.conn.IsClosed() {
		conn, err := amqp.Dial(p.url)
		if err != nil {
			return nil, fmt.Errorf("dial broker: %w", err)
		}
		p.conn = conn
		p.declared = map[string]bool{}
	}
	return p.conn.Channel()
}

// Close releases the broker connection, if any.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil {
		return nil
	}
	err := p.conn.Close()
	p.conn = nil
	return err
}
