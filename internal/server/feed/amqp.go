package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPChannel is the subset of *amqp.Channel the sink needs.
type AMQPChannel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPSink publishes events as persistent JSON messages to a durable queue
// through the default exchange.
type AMQPSink struct {
	conn  io.Closer
	ch    AMQPChannel
	queue string
}

// DialAMQP connects to url and declares queue.
func DialAMQP(url, queue string) (*AMQPSink, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	s, err := NewAMQPSinkWithChannel(ch, queue)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	s.conn = conn
	return s, nil
}

// NewAMQPSinkWithChannel declares queue on ch and returns a sink using it.
func NewAMQPSinkWithChannel(ch AMQPChannel, queue string) (*AMQPSink, error) {
	if _, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		return nil, fmt.Errorf("amqp queue declare: %w", err)
	}
	return &AMQPSink{ch: ch, queue: queue}, nil
}

func (a *AMQPSink) Publish(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("amqp encode: %w", err)
	}
	return a.ch.PublishWithContext(ctx,
		"",      // default exchange
		a.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    e.Key(),
			Type:         string(e.Op),
			Timestamp:    e.At,
			AppId:        "logitrack",
			Body:         body,
		},
	)
}

func (a *AMQPSink) Close() error {
	if err := a.ch.Close(); err != nil {
		return err
	}
	if a.conn != nil {
		return a.conn.Close()
	}
	return nil
}
