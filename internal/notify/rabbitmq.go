// Package notify announces publications on a RabbitMQ exchange so other
// systems (site rebuilds, caches) can react.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"academy/internal/domain"
)

const EventCatalogPublished = "catalog.published"

type Config struct {
	URL        string
	Exchange   string
	RoutingKey string
	QueueName  string
}

// RabbitMQ dials on the first Deliver, so an unreachable broker only
// affects publishing.
type RabbitMQ struct {
	cfg Config
	log logrus.FieldLogger

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
}

func NewRabbitMQ(cfg Config, log logrus.FieldLogger) *RabbitMQ {
	return &RabbitMQ{cfg: cfg, log: log}
}

// connect must be called with mu held.
func (r *RabbitMQ) connect() error {
	if r.channel != nil && !r.channel.IsClosed() {
		return nil
	}
	r.closeLocked()

	conn, err := amqp.Dial(r.cfg.URL)
	if err != nil {
		return fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		r.cfg.Exchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("declare exchange: %w", err)
	}

	if r.cfg.QueueName != "" {
		q, err := ch.QueueDeclare(r.cfg.QueueName, true, false, false, false, nil)
		if err != nil {
			ch.Close()
			conn.Close()
			return fmt.Errorf("declare queue: %w", err)
		}
		if err := ch.QueueBind(q.Name, r.cfg.RoutingKey, r.cfg.Exchange, false, nil); err != nil {
			ch.Close()
			conn.Close()
			return fmt.Errorf("bind queue: %w", err)
		}
	}

	r.log.WithFields(logrus.Fields{
		"exchange":    r.cfg.Exchange,
		"queue":       r.cfg.QueueName,
		"routing_key": r.cfg.RoutingKey,
	}).Debug("connected to rabbitmq")

	r.conn, r.channel = conn, ch
	return nil
}

// Message is the event body. The catalog itself is not included; readers
// fetch the published file.
type Message struct {
	Event       string             `json:"event"`
	Publication domain.Publication `json:"publication"`
	Timestamp   time.Time          `json:"timestamp"`
}

func NewMessage(pub domain.Publication, now time.Time) Message {
	return Message{Event: EventCatalogPublished, Publication: pub, Timestamp: now.UTC()}
}

func (r *RabbitMQ) Name() string { return "rabbitmq" }

func (r *RabbitMQ) Deliver(ctx context.Context, pub domain.Publication) error {
	body, err := json.Marshal(NewMessage(pub, time.Now()))
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.connect(); err != nil {
		return err
	}

	err = r.channel.PublishWithContext(
		ctx,
		r.cfg.Exchange,
		r.cfg.RoutingKey,
		false,
		false,
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
			Timestamp:    time.Now(),
			Type:         EventCatalogPublished,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	r.log.WithFields(logrus.Fields{"repo": pub.Repo, "commit": pub.CommitSHA}).Debug("published catalog event")
	return nil
}

func (r *RabbitMQ) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closeLocked()
}

func (r *RabbitMQ) closeLocked() error {
	var err error
	if r.channel != nil {
		r.channel.Close()
	}
	if r.conn != nil {
		err = r.conn.Close()
	}
	r.conn, r.channel = nil, nil
	return err
}
