package events

import (
	"context"
	"fmt"
	"strings"

	"github.com/streadway/amqp"
)

type amqpChannel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher publishes events to a topic exchange with routing key
// "submission.<status>". A channel is opened per publish.
type AMQPPublisher struct {
	conn     *amqp.Connection
	exchange string
	open     func() (amqpChannel, error)
}

// NewAMQPPublisher dials the broker and declares the exchange.
func NewAMQPPublisher(url, exchange string) (*AMQPPublisher, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("AMQP_URL is required")
	}
	if strings.TrimSpace(exchange) == "" {
		exchange = "resume_events"
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	defer ch.Close()
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("amqp declare exchange: %w", err)
	}

	p := &AMQPPublisher{conn: conn, exchange: exchange}
	p.open = func() (amqpChannel, error) { return conn.Channel() }
	return p, nil
}

// Publish implements Publisher.
func (p *AMQPPublisher) Publish(ctx context.Context, ev Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := EncodeEvent(ev)
	if err != nil {
		return fmt.Errorf("encode amqp event: %w", err)
	}
	ch, err := p.open()
	if err != nil {
		return fmt.Errorf("amqp channel: %w", err)
	}
	defer ch.Close()

	return ch.Publish(
		p.exchange,
		RoutingKey(ev),
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

// Close releases the broker connection.
func (p *AMQPPublisher) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Close()
}

// RoutingKey returns the topic key for ev.
func RoutingKey(ev Event) string {
	status := strings.TrimSpace(ev.Status)
	if status == "" {
		status = "unknown"
	}
	return "submission." + status
}

var _ Publisher = (*AMQPPublisher)(nil)
