package mongodb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"travel-wallet/internal/archive"
	"travel-wallet/internal/logger"
)

func newMockStorage(mt *mtest.T) *MongoStorage {
	return NewWithCollection(mt.Client, mt.Coll, logger.Discard())
}

func TestMongoStorage(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("save batch", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		s := newMockStorage(mt)

		events := []archive.Event{
			{Type: archive.EventTripCreated, UserID: 1, TripID: 7, OccurredAt: time.Now()},
			{Type: archive.EventExpenseRecorded, UserID: 1, TripID: 7, AmountDest: 20, OccurredAt: time.Now()},
		}
		require.NoError(mt, s.SaveEventBatch(context.Background(), events))

		for _, e := range events {
			assert.False(mt, e.ArchivedAt.IsZero())
		}
	})

	mt.Run("save empty batch", func(mt *mtest.T) {
		s := newMockStorage(mt)
		assert.NoError(mt, s.SaveEventBatch(context.Background(), nil))
	})

	mt.Run("save batch error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))
		s := newMockStorage(mt)

		err := s.SaveEventBatch(context.Background(), []archive.Event{{Type: archive.EventTripDeleted}})
		assert.Error(mt, err)
	})

	mt.Run("events by trip", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(1, ns, mtest.FirstBatch,
				bson.D{{Key: "type", Value: archive.EventRateUpdated}, {Key: "trip_id", Value: int64(7)}, {Key: "rate", Value: 0.012}}),
			mtest.CreateCursorResponse(0, ns, mtest.NextBatch,
				bson.D{{Key: "type", Value: archive.EventTripCreated}, {Key: "trip_id", Value: int64(7)}}),
		)
		s := newMockStorage(mt)

		events, err := s.EventsByTrip(context.Background(), 7, 10)
		require.NoError(mt, err)
		require.Len(mt, events, 2)
		assert.Equal(mt, archive.EventRateUpdated, events[0].Type)
		assert.Equal(mt, 0.012, events[0].Rate)
		assert.Equal(mt, archive.EventTripCreated, events[1].Type)
	})

	mt.Run("statistics", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: nil},
			{Key: "total_events", Value: int64(5)},
			{Key: "trips_created", Value: int64(1)},
			{Key: "expenses_recorded", Value: int64(3)},
			{Key: "rate_updates", Value: int64(1)},
		}))
		s := newMockStorage(mt)

		stats, err := s.GetStatistics(context.Background())
		require.NoError(mt, err)
		assert.Equal(mt, int64(5), stats.TotalEvents)
		assert.Equal(mt, int64(3), stats.ExpensesRecorded)
	})

	mt.Run("statistics on empty archive", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))
		s := newMockStorage(mt)

		stats, err := s.GetStatistics(context.Background())
		require.NoError(mt, err)
		assert.Equal(mt, &archive.Statistics{}, stats)
	})
}

var _ archive.Store = (*MongoStorage)(nil)
