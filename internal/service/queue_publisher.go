package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/movie-show-catalog/internal/queue"
)

// EventPublisher publishes queue.EntryChangedEvent messages to RabbitMQ.
// The connection is dialled lazily and re-dialled after it closes.  Errors
// are logged and returned so the caller can choose to ignore them.
type EventPublisher struct {
	url string

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewEventPublisher returns a publisher for the broker at url.  No
// connection is made until the first event.
func NewEventPublisher(url string) *EventPublisher {
	return &EventPublisher{url: url}
}

// EntryMutated implements MutationListener.
func (p *EventPublisher) EntryMutated(ctx context.Context, m Mutation) error {
	ev := queue.EntryChangedEvent{Op: m.Op, EntryID: m.EntryID, OccurredAt: m.At}
	if m.Entry != nil {
		ev.Title = m.Entry.Title
		ev.Type = string(m.Entry.Kind)
	}
	// The request may finish before the broker answers.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	return p.Publish(ctx, ev)
}

// Publish sends one event to the durable entry-changed queue.  Messages are
// marked as persistent.
func (p *EventPublisher) Publish(ctx context.Context, ev queue.EntryChangedEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return errors.Wrap(err, "marshal event")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		log.Warn().Err(err).Msg("rabbitmq: connect failed")
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx,
		"",                      // default exchange
		queue.EntryChangedQueue, // routing key = queue name
		false,                   // mandatory
		false,                   // immediate
		pub,
	); err != nil {
		p.reset()
		log.Warn().Err(err).Msg("rabbitmq: publish failed")
		return errors.Wrap(err, "publish event")
	}
	return nil
}

// channel returns an open channel, dialling and declaring the queue when
// needed.  p.mu must be held.
func (p *EventPublisher) channel() (*amqp.Channel, error) {
	if p.conn != nil && !p.conn.IsClosed() && p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.reset()

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, errors.Wrap(err, "dial broker")
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(err, "open channel")
	}
	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		queue.EntryChangedQueue, // name
		true,                    // durable
		false,                   // autoDelete
		false,                   // exclusive
		false,                   // noWait
		nil,                     // args
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, errors.Wrap(err, "declare queue")
	}
	p.conn, p.ch = conn, ch
	return ch, nil
}

func (p *EventPublisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.conn, p.ch = nil, nil
}

// Close releases the broker connection.
func (p *EventPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
	return nil
}
