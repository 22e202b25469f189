package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/agendahub/agenda-api/pkg/messaging"
)

type KafkaBroker struct {
	writer  *kafka.Writer
	brokers []string
	groupID string
	logger  *zerolog.Logger
}

type Config struct {
	Brokers string
	GroupID string
}

// SplitBrokers parses a comma-separated broker list.
func SplitBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func NewKafkaBroker(config Config, logger *zerolog.Logger) (messaging.Broker, error) {
	brokers := SplitBrokers(config.Brokers)
	if len(brokers) == 0 {
		return nil, fmt.Errorf("no kafka brokers configured")
	}

	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:  brokers,
		Balancer: &kafka.Hash{},
	})

	return &KafkaBroker{
		writer:  writer,
		brokers: brokers,
		groupID: config.GroupID,
		logger:  logger,
	}, nil
}

func (b *KafkaBroker) Publish(ctx context.Context, topic string, message interface{}) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	return b.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Value: payload,
	})
}

func (b *KafkaBroker) Subscribe(ctx context.Context, topic string) (<-chan []byte, error) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  b.brokers,
		GroupID:  b.groupID,
		Topic:    topic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	msgChan := make(chan []byte, 100)

	go func() {
		defer func() {
			reader.Close()
			close(msgChan)
		}()

		for {
			msg, err := reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				b.logger.Warn().Err(err).Str("topic", topic).Msg("kafka read failed")
				time.Sleep(time.Second)
				continue
			}
			msgChan <- msg.Value
		}
	}()

	return msgChan, nil
}

func (b *KafkaBroker) Close() error {
	return b.writer.Close()
}
