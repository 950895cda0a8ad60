// Package kafka передает события поездок через Kafka.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"travel-wallet/internal/archive"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer Kafka producer для событий поездок
type Producer struct {
	writer messageWriter
	topic  string
	logger *logrus.Logger
}

// NewProducer создает producer; без брокеров события никуда не отправляются
func NewProducer(brokers []string, topic string, logger *logrus.Logger) *Producer {
	if len(brokers) == 0 {
		logger.Info("Kafka brokers are not configured, ledger events are disabled")
		return &Producer{topic: topic, logger: logger}
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		Compression:  kafka.Snappy,
		BatchTimeout: 10 * time.Millisecond,
		ErrorLogger:  kafka.LoggerFunc(logger.Errorf),
	}

	logger.Infof("Kafka producer initialized for topic: %s", topic)

	return &Producer{
		writer: writer,
		topic:  topic,
		logger: logger,
	}
}

// Enabled сообщает, настроена ли отправка
func (p *Producer) Enabled() bool {
	return p.writer != nil
}

// Publish отправляет событие; ключ сообщения привязан к пользователю
func (p *Producer) Publish(ctx context.Context, event archive.Event) error {
	if p.writer == nil {
		return nil
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(fmt.Sprintf("user_%d", event.UserID)),
		Value: value,
		Time:  event.OccurredAt,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Errorf("Failed to send event to Kafka: %v", err)
		return fmt.Errorf("failed to send event: %w", err)
	}

	p.logger.Debugf("Sent %s event to Kafka: UserID=%d, TripID=%d", event.Type, event.UserID, event.TripID)
	return nil
}

// Close закрывает Kafka producer
func (p *Producer) Close() error {
	if p.writer != nil {
		p.logger.Info("Closing Kafka producer")
		return p.writer.Close()
	}
	return nil
}
