package events

import (
	"context"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"
)

// kafkaProducer is the part of *kgo.Client the publisher needs
type kafkaProducer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

// KafkaPublisher produces events to a Kafka topic keyed by slot id
type KafkaPublisher struct {
	client kafkaProducer
	topic  string
}

// KafkaOptions configures NewKafkaPublisher
type KafkaOptions struct {
	Brokers  []string
	ClientID string
	Topic    string
}

// NewKafkaPublisher creates a producer client. Brokers are contacted lazily on first produce.
func NewKafkaPublisher(opts KafkaOptions) (*KafkaPublisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(opts.Brokers...),
		kgo.ClientID(opts.ClientID),
		kgo.DefaultProduceTopic(opts.Topic),
		kgo.RequiredAcks(kgo.LeaderAck()),
		kgo.DisableIdempotentWrite(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}
	return newKafkaPublisher(client, opts.Topic), nil
}

func newKafkaPublisher(client kafkaProducer, topic string) *KafkaPublisher {
	return &KafkaPublisher{client: client, topic: topic}
}

// Publish produces the event and waits for the broker acknowledgement
func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := event.Marshal()
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.Key()),
		Value: payload,
		Headers: []kgo.RecordHeader{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}

	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("failed to produce to kafka topic %s: %w", p.topic, err)
	}
	return nil
}

// Close flushes and closes the client
func (p *KafkaPublisher) Close() error {
	p.client.Close()
	return nil
}
