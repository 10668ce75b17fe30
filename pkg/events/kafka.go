package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

// Envelope is the wire shape published to Kafka.
type Envelope struct {
	Type       string          `json:"type"`
	Key        string          `json:"key"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

func Encode(event Event) ([]byte, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{
		Type:       event.Type(),
		Key:        event.Key(),
		OccurredAt: event.Time(),
		Payload:    payload,
	})
}

type KafkaSink struct {
	producer sarama.SyncProducer
	topic    string
	logger   *zap.Logger
}

func NewKafkaProducer(brokers []string) (sarama.SyncProducer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Timeout = 5 * time.Second

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to start Sarama producer: %w", err)
	}
	return producer, nil
}

func NewKafkaSink(producer sarama.SyncProducer, topic string, logger *zap.Logger) *KafkaSink {
	return &KafkaSink{producer: producer, topic: topic, logger: logger.Named("kafka-sink")}
}

func (s *KafkaSink) Handle(_ context.Context, event Event) error {
	data, err := Encode(event)
	if err != nil {
		return err
	}
	msg := &sarama.ProducerMessage{
		Topic: s.topic,
		Key:   sarama.StringEncoder(event.Key()),
		Value: sarama.ByteEncoder(data),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event-type"), Value: []byte(event.Type())},
		},
	}

	partition, offset, err := s.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("send %s to %s: %w", event.Type(), s.topic, err)
	}
	s.logger.Debug("Event published",
		zap.String("type", event.Type()),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset))
	return nil
}

func (s *KafkaSink) Close() error {
	return s.producer.Close()
}
