// Package events publishes committed enrollment payment transitions to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/IBM/sarama"

	"github.com/prashanttechie/portfolio-project/internal/modules/payments"
)

const headerEventType = "event_type"

func NewSyncProducer(brokers []string) (sarama.SyncProducer, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}
	return producer, nil
}

// KafkaPublisher is a payments.Notifier. Messages are keyed by enrollment id so a
// consumer sees one enrollment's transitions in order.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   *slog.Logger
}

func NewKafkaPublisher(producer sarama.SyncProducer, topic string, logger *slog.Logger) *KafkaPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &KafkaPublisher{producer: producer, topic: topic, logger: logger}
}

func (p *KafkaPublisher) NotifySettlement(ctx context.Context, s payments.Settlement) error {
	body, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal settlement: %w", err)
	}

	eventType := "enrollment.payment." + string(s.Status)
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(strconv.FormatUint(uint64(s.EnrollmentID), 10)),
		Value: sarama.ByteEncoder(body),
		Headers: []sarama.RecordHeader{
			{Key: []byte(headerEventType), Value: []byte(eventType)},
		},
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	p.logger.InfoContext(ctx, "settlement event published",
		"topic", p.topic,
		"event_type", eventType,
		"enrollment_id", s.EnrollmentID,
		"partition", partition,
		"offset", offset,
	)
	return nil
}

func (p *KafkaPublisher) Close() error { return p.producer.Close() }
