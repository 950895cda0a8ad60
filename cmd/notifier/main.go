package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"travel-wallet/internal/archive/mongodb"
	"travel-wallet/internal/config"
	"travel-wallet/internal/kafka"
	"travel-wallet/internal/logger"
	"travel-wallet/pkg"
)

func main() {
	// Парсинг флагов командной строки
	configPath := flag.String("c", "", "Path to config file")
	flag.Parse()

	// Загрузка конфигурации
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Валидация конфигурации
	if err := cfg.ValidateNotifier(); err != nil {
		fmt.Printf("Invalid config: %v\n", err)
		os.Exit(1)
	}

	// Инициализация логгера
	log := logger.New(cfg.Logger.Level)
	log.Info("Starting travel-wallet notifier...")
	log.Infof("Configuration loaded from: %s", *configPath)

	// Подключение к MongoDB
	storage, err := mongodb.New(&mongodb.Config{
		URI:         cfg.Notifier.MongoURI,
		Database:    cfg.Notifier.MongoDatabase,
		Collection:  cfg.Notifier.MongoCollection,
		Timeout:     cfg.Notifier.MongoTimeout,
		MaxPoolSize: 20,
		MinPoolSize: 2,
	}, log)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		storage.Close(ctx)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := storage.Ping(ctx); err != nil {
		cancel()
		log.Fatalf("MongoDB ping failed: %v", err)
	}
	cancel()
	log.Info("MongoDB connection established")

	// Создание Kafka consumer
	consumer := kafka.NewConsumer(&kafka.Config{
		Brokers:       cfg.Kafka.Brokers,
		Topic:         cfg.Kafka.Topic,
		GroupID:       cfg.Kafka.GroupID,
		MinBytes:      1,
		MaxBytes:      10e6,
		MaxWait:       time.Second,
		BatchSize:     cfg.Notifier.BatchSize,
		Workers:       cfg.Notifier.Workers,
		FlushInterval: cfg.Notifier.FlushInterval,
		RetryAttempts: cfg.Notifier.RetryAttempts,
		RetryDelay:    cfg.Notifier.RetryDelay,
	}, storage, log)
	defer consumer.Close()

	ctx, cancel = context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	consumerErr := make(chan error, 1)
	go func() {
		consumerErr <- consumer.Start(ctx)
	}()

	statsTicker := time.NewTicker(cfg.Notifier.StatsInterval)
	defer statsTicker.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-statsTicker.C:
				printStatistics(log, consumer, storage)
			}
		}
	}()

	log.Info("Notifier is running. Press Ctrl+C to stop...")

	select {
	case <-sigChan:
		log.Info("Received shutdown signal...")
	case err := <-consumerErr:
		if err != nil {
			log.Errorf("Consumer error: %v", err)
		}
	}

	log.Info("Shutting down notifier...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Notifier.MaxProcessingTime)
	defer shutdownCancel()

	select {
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout exceeded, forcing exit")
	case err := <-consumerErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Errorf("Consumer shutdown error: %v", err)
		}
	}

	printFinalStatistics(log, consumer, storage)

	log.Info("Notifier stopped gracefully")
}

// printStatistics выводит текущую статистику
func printStatistics(log *logrus.Logger, consumer *kafka.Consumer, storage *mongodb.MongoStorage) {
	stats := consumer.GetStatistics()

	log.Infof("Consumer Statistics: Processed=%d, Failed=%d, Rate=%.2f msg/s, Uptime=%s",
		stats.MessagesProcessed, stats.MessagesFailed, stats.Rate(), pkg.FormatDuration(stats.Uptime))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	archived, err := storage.GetStatistics(ctx)
	if err != nil {
		log.Warnf("Failed to get storage statistics: %v", err)
		return
	}

	log.Infof("Archive Statistics: Total=%d, Trips=%d, Expenses=%d, RateUpdates=%d",
		archived.TotalEvents, archived.TripsCreated, archived.ExpensesRecorded, archived.RateUpdates)
}

// printFinalStatistics выводит финальную статистику перед завершением
func printFinalStatistics(log *logrus.Logger, consumer *kafka.Consumer, storage *mongodb.MongoStorage) {
	log.Info("=== Final Statistics ===")

	stats := consumer.GetStatistics()
	log.Infof("Total Messages Processed: %d", stats.MessagesProcessed)
	log.Infof("Total Messages Failed: %d", stats.MessagesFailed)
	log.Infof("Average Processing Rate: %.2f msg/s", stats.Rate())
	log.Infof("Total Uptime: %s", pkg.FormatDuration(stats.Uptime))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	archived, err := storage.GetStatistics(ctx)
	if err != nil {
		log.Warnf("Failed to get storage statistics: %v", err)
		return
	}

	log.Infof("Archived Events: %d", archived.TotalEvents)
	if !archived.LastOccurredAt.IsZero() {
		log.Infof("Last Event At: %s", archived.LastOccurredAt.Format(time.RFC3339))
	}
}
