// Package mongodb хранит архив событий поездок в MongoDB.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Config содержит конфигурацию для подключения к MongoDB
type Config struct {
	URI         string
	Database    string
	Collection  string
	Timeout     time.Duration
	MaxPoolSize uint64
	MinPoolSize uint64
}

// MongoStorage реализует archive.Store
type MongoStorage struct {
	client     *mongo.Client
	collection *mongo.Collection
	logger     *logrus.Logger
}

// New подключается к MongoDB и создает индексы
func New(cfg *Config, logger *logrus.Logger) (*MongoStorage, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetMinPoolSize(cfg.MinPoolSize).
		SetServerSelectionTimeout(cfg.Timeout)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.Infof("Connected to MongoDB database %s", cfg.Database)

	storage := NewWithCollection(client, client.Database(cfg.Database).Collection(cfg.Collection), logger)
	if err := storage.createIndexes(ctx); err != nil {
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	return storage, nil
}

// NewWithCollection использует готовую коллекцию
func NewWithCollection(client *mongo.Client, collection *mongo.Collection, logger *logrus.Logger) *MongoStorage {
	return &MongoStorage{
		client:     client,
		collection: collection,
		logger:     logger,
	}
}

func (s *MongoStorage) createIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{Keys: bson.D{{Key: "trip_id", Value: 1}, {Key: "occurred_at", Value: -1}}},
		{Keys: bson.D{{Key: "type", Value: 1}}},
		{Keys: bson.D{{Key: "occurred_at", Value: -1}}},
	}

	names, err := s.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return err
	}

	s.logger.Infof("Created %d indexes: %v", len(names), names)
	return nil
}

// Ping проверяет соединение с базой данных
func (s *MongoStorage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close закрывает соединение с базой данных
func (s *MongoStorage) Close(ctx context.Context) error {
	if s.client != nil {
		s.logger.Info("Closing MongoDB connection")
		return s.client.Disconnect(ctx)
	}
	return nil
}
