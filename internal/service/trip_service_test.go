package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travel-wallet/internal/archive"
	"travel-wallet/internal/logger"
	"travel-wallet/internal/storages"
	"travel-wallet/internal/storages/memory"
	"travel-wallet/internal/storages/storagetest"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []archive.Event
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, event archive.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, len(p.events))
	for i, e := range p.events {
		types[i] = e.Type
	}
	return types
}

func newService(t *testing.T) (*TripService, *recordingPublisher) {
	t.Helper()
	pub := &recordingPublisher{}
	return NewTripService(memory.New(logger.Discard()), pub, logger.Discard()), pub
}

func TestTripLifecycleEvents(t *testing.T) {
	svc, pub := newService(t)
	ctx := context.Background()

	trip := storagetest.NewTrip(1)
	require.NoError(t, svc.CreateTrip(ctx, trip, 10000))

	_, err := svc.RecordExpense(ctx, 1, trip.ID, 20, 20/0.011, "кофе")
	require.NoError(t, err)

	_, err = svc.UpdateRate(ctx, 1, trip.ID, 0.012)
	require.NoError(t, err)

	_, err = svc.SwitchTrip(ctx, 1, trip.ID)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTrip(ctx, 1, trip.ID))

	assert.Equal(t, []string{
		archive.EventTripCreated,
		archive.EventExpenseRecorded,
		archive.EventRateUpdated,
		archive.EventTripSwitched,
		archive.EventTripDeleted,
	}, pub.types())

	expenseEvent := pub.events[1]
	assert.Equal(t, int64(1), expenseEvent.UserID)
	assert.Equal(t, trip.ID, expenseEvent.TripID)
	assert.InDelta(t, 90.0, expenseEvent.BalanceDest, 1e-9)
	assert.InDelta(t, 20.0, expenseEvent.AmountDest, 1e-9)
}

func TestPublishFailureDoesNotFailOperation(t *testing.T) {
	svc, pub := newService(t)
	pub.err = errors.New("kafka down")

	trip := storagetest.NewTrip(1)
	require.NoError(t, svc.CreateTrip(context.Background(), trip, 100))
	assert.Len(t, pub.events, 1)
}

func TestNilPublisher(t *testing.T) {
	svc := NewTripService(memory.New(logger.Discard()), nil, logger.Discard())
	require.NoError(t, svc.CreateTrip(context.Background(), storagetest.NewTrip(1), 100))
}

func TestOwnershipChecks(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	trip := storagetest.NewTrip(1)
	require.NoError(t, svc.CreateTrip(ctx, trip, 10000))

	_, err := svc.RecordExpense(ctx, 2, trip.ID, 1, 1, "")
	assert.ErrorIs(t, err, storages.ErrNotFound)

	_, err = svc.UpdateRate(ctx, 2, trip.ID, 0.02)
	assert.ErrorIs(t, err, storages.ErrNotFound)

	assert.ErrorIs(t, svc.DeleteTrip(ctx, 2, trip.ID), storages.ErrNotFound)

	_, err = svc.SwitchTrip(ctx, 2, trip.ID)
	assert.ErrorIs(t, err, storages.ErrNotFound)

	got, err := svc.GetTrip(ctx, 1, trip.ID)
	require.NoError(t, err)
	assert.InDelta(t, 110.0, got.BalanceDest, 1e-9)
}

func TestOverviewAndHistory(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Overview(ctx, 1)
	assert.ErrorIs(t, err, storages.ErrNotFound)

	trip := storagetest.NewTrip(1)
	require.NoError(t, svc.CreateTrip(ctx, trip, 10000))

	for _, amount := range []float64{10, 20, 30} {
		_, err := svc.RecordExpense(ctx, 1, trip.ID, amount, amount/trip.Rate, "")
		require.NoError(t, err)
	}

	overview, err := svc.Overview(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, trip.ID, overview.Trip.ID)
	assert.InDelta(t, 60.0, overview.Totals.Dest, 1e-9)
	assert.InDelta(t, 50.0, overview.Trip.BalanceDest, 1e-9)

	history, err := svc.History(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, history.Expenses, 2)
	assert.InDelta(t, 30.0, history.Expenses[0].AmountDest, 1e-9)
	assert.InDelta(t, 60.0, history.Totals.Dest, 1e-9)

	byID, err := svc.TripHistory(ctx, 1, trip.ID, 10)
	require.NoError(t, err)
	assert.Len(t, byID.Expenses, 3)

	_, err = svc.TripHistory(ctx, 2, trip.ID, 10)
	assert.ErrorIs(t, err, storages.ErrNotFound)
}

func TestInsufficientFundsPropagates(t *testing.T) {
	svc, pub := newService(t)
	ctx := context.Background()

	trip := storagetest.NewTrip(1)
	require.NoError(t, svc.CreateTrip(ctx, trip, 10000))

	_, err := svc.RecordExpense(ctx, 1, trip.ID, 500, 500/trip.Rate, "")
	assert.ErrorIs(t, err, storages.ErrInsufficientFunds)
	assert.Equal(t, []string{archive.EventTripCreated}, pub.types())
}
