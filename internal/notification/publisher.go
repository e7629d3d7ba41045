package notification

import (
	"context"
	"fmt"

	"github.com/frahmantamala/hr-backoffice/internal/core/events"
	kafkago "github.com/segmentio/kafka-go"
)

// MessageWriter is satisfied by *kafkago.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
}

type KafkaPublisher struct {
	writer MessageWriter
}

func NewKafkaPublisher(writer MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

// NewKafkaWriter builds a writer that routes by the message topic.
func NewKafkaWriter(brokers []string) *kafkago.Writer {
	return &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, msg Message) error {
	return p.writer.WriteMessages(ctx, kafkago.Message{
		Topic: msg.Topic,
		Key:   []byte(msg.AggregateID),
		Value: msg.Payload,
		Headers: []kafkago.Header{
			{Key: "event_id", Value: []byte(msg.ID)},
			{Key: "event_type", Value: []byte(msg.EventType)},
			{Key: "aggregate_type", Value: []byte(msg.AggregateType)},
		},
	})
}

// BusPublisher relays outbox messages onto the in-process bus when no broker
// is configured.
type BusPublisher struct {
	bus *events.EventBus
}

func NewBusPublisher(bus *events.EventBus) *BusPublisher {
	return &BusPublisher{bus: bus}
}

func (p *BusPublisher) Publish(ctx context.Context, msg Message) error {
	event, err := Decode(msg.Payload)
	if err != nil {
		return fmt.Errorf("decode outbox payload %s: %w", msg.ID, err)
	}
	return p.bus.PublishSync(ctx, event)
}
