package feed

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
)

// KafkaWriter is the subset of kafka.Writer the sink needs.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink writes events as JSON messages keyed by "<collection>/<id>", so
// all changes to one record land on the same partition in order.
type KafkaSink struct {
	writer KafkaWriter
}

func NewKafkaSink(brokers []string, topic string) *KafkaSink {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return &KafkaSink{writer: w}
}

// NewKafkaSinkWithWriter allows injecting a test writer.
func NewKafkaSinkWithWriter(w KafkaWriter) *KafkaSink {
	return &KafkaSink{writer: w}
}

func (k *KafkaSink) Publish(ctx context.Context, e Event) error {
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("kafka encode: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(e.Key()),
		Value: b,
		Time:  e.At,
		Headers: []kafka.Header{
			{Key: "op", Value: []byte(e.Op)},
		},
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	return nil
}

func (k *KafkaSink) Close() error {
	return k.writer.Close()
}
