package events

import (
	"context"
	"fmt"

	"github.com/dkeye/Pairs/internal/core"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events keyed by room id, so one room's events stay
// ordered within a partition.
type KafkaPublisher struct {
	w messageWriter
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		// room loops must never wait on the broker
		Async: true,
		Completion: func(msgs []kafka.Message, err error) {
			if err != nil {
				log.Warn().Str("module", "events.kafka").Err(err).Int("messages", len(msgs)).Msg("kafka write failed")
			}
		},
	}
	log.Info().Str("module", "events.kafka").Strs("brokers", brokers).Str("topic", topic).Msg("kafka publisher ready")
	return &KafkaPublisher{w: w}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev core.GameEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	return p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.RoomID),
		Value: data,
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(ev.Kind)},
		},
	})
}

// Close flushes buffered messages.
func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}
