package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"travel-wallet/internal/archive"
)

// SaveEventBatch сохраняет пакет событий
func (s *MongoStorage) SaveEventBatch(ctx context.Context, events []archive.Event) error {
	if len(events) == 0 {
		return nil
	}

	documents := make([]interface{}, len(events))
	now := time.Now().UTC()
	for i := range events {
		events[i].ArchivedAt = now
		documents[i] = events[i]
	}

	result, err := s.collection.InsertMany(ctx, documents)
	if err != nil {
		s.logger.Errorf("Failed to save event batch: %v", err)
		return fmt.Errorf("failed to save event batch: %w", err)
	}

	s.logger.Debugf("Saved batch of %d events (inserted: %d)", len(events), len(result.InsertedIDs))
	return nil
}

// EventsByTrip возвращает последние события поездки
func (s *MongoStorage) EventsByTrip(ctx context.Context, tripID int64, limit int) ([]archive.Event, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "occurred_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := s.collection.Find(ctx, bson.M{"trip_id": tripID}, opts)
	if err != nil {
		s.logger.Errorf("Failed to query events: %v", err)
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer cursor.Close(ctx)

	events := []archive.Event{}
	if err := cursor.All(ctx, &events); err != nil {
		s.logger.Errorf("Failed to decode events: %v", err)
		return nil, fmt.Errorf("failed to decode events: %w", err)
	}

	return events, nil
}

func countType(eventType string) bson.M {
	return bson.M{
		"$sum": bson.M{
			"$cond": []interface{}{
				bson.M{"$eq": []string{"$type", eventType}},
				1,
				0,
			},
		},
	}
}

// GetStatistics возвращает сводку по архиву
func (s *MongoStorage) GetStatistics(ctx context.Context) (*archive.Statistics, error) {
	pipeline := []bson.M{
		{
			"$group": bson.M{
				"_id":               nil,
				"total_events":      bson.M{"$sum": 1},
				"trips_created":     countType(archive.EventTripCreated),
				"expenses_recorded": countType(archive.EventExpenseRecorded),
				"rate_updates":      countType(archive.EventRateUpdated),
				"last_occurred_at":  bson.M{"$max": "$occurred_at"},
			},
		},
	}

	cursor, err := s.collection.Aggregate(ctx, pipeline)
	if err != nil {
		s.logger.Errorf("Failed to get statistics: %v", err)
		return nil, fmt.Errorf("failed to get statistics: %w", err)
	}
	defer cursor.Close(ctx)

	var results []archive.Statistics
	if err := cursor.All(ctx, &results); err != nil {
		s.logger.Errorf("Failed to decode statistics: %v", err)
		return nil, fmt.Errorf("failed to decode statistics: %w", err)
	}

	stats := &archive.Statistics{}
	if len(results) > 0 {
		*stats = results[0]
	}

	return stats, nil
}
