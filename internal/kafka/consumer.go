package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"travel-wallet/internal/archive"
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Время на сохранение остатка пакета после остановки
const shutdownFlushTimeout = 10 * time.Second

// Consumer читает события и пакетами складывает их в архив
type Consumer struct {
	reader        messageReader
	storage       archive.Store
	logger        *logrus.Logger
	batchSize     int
	workers       int
	flushInterval time.Duration
	retryAttempts int
	retryDelay    time.Duration

	mu                sync.RWMutex
	messagesProcessed int64
	messagesFailed    int64
	startTime         time.Time
}

// Config конфигурация consumer
type Config struct {
	Brokers       []string
	Topic         string
	GroupID       string
	MinBytes      int
	MaxBytes      int
	MaxWait       time.Duration
	BatchSize     int
	Workers       int
	FlushInterval time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
}

// NewConsumer создает новый Kafka consumer
func NewConsumer(cfg *Config, storage archive.Store, logger *logrus.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       cfg.Topic,
		GroupID:     cfg.GroupID,
		MinBytes:    cfg.MinBytes,
		MaxBytes:    cfg.MaxBytes,
		MaxWait:     cfg.MaxWait,
		Logger:      kafka.LoggerFunc(logger.Debugf),
		ErrorLogger: kafka.LoggerFunc(logger.Errorf),
	})

	logger.Infof("Kafka consumer initialized: Topic=%s, GroupID=%s, Brokers=%v",
		cfg.Topic, cfg.GroupID, cfg.Brokers)

	return newConsumer(reader, cfg, storage, logger)
}

func newConsumer(reader messageReader, cfg *Config, storage archive.Store, logger *logrus.Logger) *Consumer {
	c := &Consumer{
		reader:        reader,
		storage:       storage,
		logger:        logger,
		batchSize:     cfg.BatchSize,
		workers:       cfg.Workers,
		flushInterval: cfg.FlushInterval,
		retryAttempts: cfg.RetryAttempts,
		retryDelay:    cfg.RetryDelay,
		startTime:     time.Now(),
	}
	if c.batchSize < 1 {
		c.batchSize = 1
	}
	if c.workers < 1 {
		c.workers = 1
	}
	if c.retryAttempts < 1 {
		c.retryAttempts = 1
	}
	return c
}

// Start читает сообщения до отмены ctx
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("Starting Kafka consumer...")

	messages := make(chan kafka.Message, c.batchSize*2)

	var wg sync.WaitGroup
	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			c.processMessages(ctx, messages, workerID)
		}(i)
	}

	go func() {
		defer close(messages)
		c.readMessages(ctx, messages)
	}()

	wg.Wait()

	c.logger.Info("Kafka consumer stopped")
	return nil
}

func (c *Consumer) readMessages(ctx context.Context, messages chan<- kafka.Message) {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Errorf("Failed to fetch message: %v", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.retryDelay):
			}
			continue
		}

		select {
		case messages <- msg:
		case <-ctx.Done():
			return
		}
	}
}

func (c *Consumer) processMessages(ctx context.Context, messages <-chan kafka.Message, workerID int) {
	batch := make([]archive.Event, 0, c.batchSize)
	pending := make([]kafka.Message, 0, c.batchSize)

	ticker := time.NewTicker(c.flushInterval)
	defer ticker.Stop()

	flush := func(ctx context.Context) {
		if len(batch) > 0 {
			c.flushBatch(ctx, batch, pending)
			batch = batch[:0]
			pending = pending[:0]
		}
	}

	flushOnExit := func() {
		exitCtx, cancel := context.WithTimeout(context.Background(), shutdownFlushTimeout)
		defer cancel()
		flush(exitCtx)
	}

	for {
		select {
		case <-ctx.Done():
			flushOnExit()
			return

		case <-ticker.C:
			flush(ctx)

		case msg, ok := <-messages:
			if !ok {
				flushOnExit()
				return
			}

			event, err := parseMessage(msg)
			if err != nil {
				c.logger.Errorf("Worker %d: Failed to parse message: %v", workerID, err)
				c.incrementFailed(1)
				// битое сообщение не должно блокировать партицию
				if err := c.reader.CommitMessages(ctx, msg); err != nil {
					c.logger.Errorf("Worker %d: Failed to commit failed message: %v", workerID, err)
				}
				continue
			}

			batch = append(batch, *event)
			pending = append(pending, msg)

			if len(batch) >= c.batchSize {
				flush(ctx)
			}
		}
	}
}

func parseMessage(msg kafka.Message) (*archive.Event, error) {
	var event archive.Event
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message: %w", err)
	}
	if event.Type == "" {
		return nil, fmt.Errorf("event type is empty")
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = msg.Time
	}
	return &event, nil
}

// flushBatch сохраняет пакет и только после этого коммитит смещения
func (c *Consumer) flushBatch(ctx context.Context, batch []archive.Event, messages []kafka.Message) {
	start := time.Now()

	var err error
	for attempt := 0; attempt < c.retryAttempts; attempt++ {
		err = c.storage.SaveEventBatch(ctx, batch)
		if err == nil {
			break
		}

		c.logger.Warnf("Attempt %d/%d: Failed to save batch: %v", attempt+1, c.retryAttempts, err)

		if attempt < c.retryAttempts-1 {
			time.Sleep(c.retryDelay)
		}
	}

	if err != nil {
		c.logger.Errorf("Failed to save batch after %d attempts: %v", c.retryAttempts, err)
		c.incrementFailed(int64(len(batch)))
		return
	}

	if err := c.reader.CommitMessages(ctx, messages...); err != nil {
		c.logger.Errorf("Failed to commit messages: %v", err)
		return
	}

	c.incrementProcessed(int64(len(batch)))
	c.logger.Infof("Flushed batch: size=%d, duration=%v", len(batch), time.Since(start))
}

func (c *Consumer) incrementProcessed(count int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messagesProcessed += count
}

func (c *Consumer) incrementFailed(count int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messagesFailed += count
}

// Statistics счетчики обработки
type Statistics struct {
	MessagesProcessed int64
	MessagesFailed    int64
	Uptime            time.Duration
}

// Rate средняя скорость обработки
func (s Statistics) Rate() float64 {
	if s.Uptime <= 0 {
		return 0
	}
	return float64(s.MessagesProcessed) / s.Uptime.Seconds()
}

// GetStatistics возвращает статистику обработки
func (c *Consumer) GetStatistics() Statistics {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Statistics{
		MessagesProcessed: c.messagesProcessed,
		MessagesFailed:    c.messagesFailed,
		Uptime:            time.Since(c.startTime),
	}
}

// Close закрывает consumer
func (c *Consumer) Close() error {
	c.logger.Info("Closing Kafka consumer")
	if c.reader != nil {
		return c.reader.Close()
	}
	return nil
}
