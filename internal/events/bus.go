package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Shopify/sarama"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type BusConfig struct {
	Backend       string // memory or kafka
	KafkaBrokers  []string
	ConsumerGroup string
	BufferSize    int64
}

// Bus carries events over watermill, in-process or through Kafka.
type Bus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	logger     *slog.Logger
	backend    string
	shared     bool
}

func NewBus(cfg BusConfig, logger *slog.Logger) (*Bus, error) {
	wmLogger := watermill.NewSlogLogger(logger)

	switch cfg.Backend {
	case "", "memory":
		buffer := cfg.BufferSize
		if buffer <= 0 {
			buffer = 64
		}
		ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: buffer}, wmLogger)
		return &Bus{publisher: ch, subscriber: ch, logger: logger, backend: "memory", shared: true}, nil

	case "kafka":
		pub, err := kafka.NewPublisher(kafka.PublisherConfig{
			Brokers:   cfg.KafkaBrokers,
			Marshaler: kafka.DefaultMarshaler{},
		}, wmLogger)
		if err != nil {
			return nil, fmt.Errorf("create kafka publisher: %w", err)
		}

		saramaCfg := kafka.DefaultSaramaSubscriberConfig()
		// Live subscribers only care about changes made after they connect.
		saramaCfg.Consumer.Offsets.Initial = sarama.OffsetNewest

		sub, err := kafka.NewSubscriber(kafka.SubscriberConfig{
			Brokers:               cfg.KafkaBrokers,
			Unmarshaler:           kafka.DefaultMarshaler{},
			OverwriteSaramaConfig: saramaCfg,
			ConsumerGroup:         cfg.ConsumerGroup,
		}, wmLogger)
		if err != nil {
			pub.Close()
			return nil, fmt.Errorf("create kafka subscriber: %w", err)
		}
		return &Bus{publisher: pub, subscriber: sub, logger: logger, backend: "kafka"}, nil
	}

	return nil, fmt.Errorf("unknown event backend %q", cfg.Backend)
}

func (b *Bus) Backend() string {
	return b.backend
}

func (b *Bus) Publish(ctx context.Context, topic string, event *Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.Metadata.Set("type", event.Type)
	msg.SetContext(ctx)

	if err := b.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *Event, error) {
	messages, err := b.subscriber.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("subscribe to %s: %w", topic, err)
	}

	out := make(chan *Event)
	go func() {
		defer close(out)
		for msg := range messages {
			var evt Event
			if err := json.Unmarshal(msg.Payload, &evt); err != nil {
				b.logger.Warn("Dropping malformed event", "topic", topic, "message_uuid", msg.UUID, "error", err)
				msg.Ack()
				continue
			}
			msg.Ack()

			select {
			case out <- &evt:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

func (b *Bus) Close() error {
	var firstErr error
	if err := b.publisher.Close(); err != nil {
		firstErr = err
	}
	if !b.shared {
		if err := b.subscriber.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
