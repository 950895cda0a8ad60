// Package storagetest содержит общий набор проверок для реализаций storages.Ledger.
package storagetest

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travel-wallet/internal/storages"
)

// Factory создает пустое хранилище для одного подтеста
type Factory func(t *testing.T) storages.Ledger

const tolerance = 1e-9

// NewTrip возвращает поездку Россия -> США
func NewTrip(userID int64) *storages.Trip {
	return &storages.Trip{
		UserID:       userID,
		HomeCountry:  "Россия",
		DestCountry:  "США",
		HomeCurrency: "RUB",
		DestCurrency: "USD",
		Rate:         0.011,
	}
}

// RunLedger прогоняет инварианты журнала поездок
func RunLedger(t *testing.T, newLedger Factory) {
	ctx := context.Background()

	t.Run("create trip sets both balances", func(t *testing.T) {
		l := newLedger(t)
		trip := NewTrip(1)
		require.NoError(t, l.CreateTrip(ctx, trip, 10000))

		active, err := l.GetActiveTrip(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, trip.ID, active.ID)
		assert.Equal(t, 10000.0, active.BalanceHome)
		assert.Equal(t, 10000*0.011, active.BalanceDest)
		assert.True(t, active.Active)
	})

	t.Run("duplicate route is rejected", func(t *testing.T) {
		l := newLedger(t)
		first := NewTrip(1)
		require.NoError(t, l.CreateTrip(ctx, first, 10000))

		err := l.CreateTrip(ctx, NewTrip(1), 500)
		assert.ErrorIs(t, err, storages.ErrTripExists)

		active, err := l.GetActiveTrip(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, first.ID, active.ID)
		assert.Equal(t, 10000.0, active.BalanceHome)

		// тот же маршрут у другого пользователя допустим
		require.NoError(t, l.CreateTrip(ctx, NewTrip(2), 100))
	})

	t.Run("new trip deactivates previous", func(t *testing.T) {
		l := newLedger(t)
		first := NewTrip(1)
		require.NoError(t, l.CreateTrip(ctx, first, 1000))

		second := NewTrip(1)
		second.DestCountry = "Турция"
		second.DestCurrency = "TRY"
		second.Rate = 0.35
		require.NoError(t, l.CreateTrip(ctx, second, 2000))

		trips, err := l.ListTrips(ctx, 1)
		require.NoError(t, err)
		require.Len(t, trips, 2)
		assert.Equal(t, second.ID, trips[0].ID, "newest first")

		activeCount := 0
		for _, tr := range trips {
			if tr.Active {
				activeCount++
				assert.Equal(t, second.ID, tr.ID)
			}
		}
		assert.Equal(t, 1, activeCount)
	})

	t.Run("invalid trip input", func(t *testing.T) {
		l := newLedger(t)
		trip := NewTrip(1)
		trip.Rate = 0
		assert.ErrorIs(t, l.CreateTrip(ctx, trip, 100), storages.ErrInvalidRate)
		assert.ErrorIs(t, l.CreateTrip(ctx, NewTrip(1), -5), storages.ErrInvalidAmount)

		huge := NewTrip(1)
		huge.Rate = 1e300
		assert.ErrorIs(t, l.CreateTrip(ctx, huge, 1e10), storages.ErrInvalidAmount, "destination balance overflows")

		_, err := l.GetActiveTrip(ctx, 1)
		assert.ErrorIs(t, err, storages.ErrNotFound)
	})

	t.Run("expenses debit both balances exactly", func(t *testing.T) {
		l := newLedger(t)
		trip := NewTrip(1)
		require.NoError(t, l.CreateTrip(ctx, trip, 10000))

		amounts := [][2]float64{{20, 20 / 0.011}, {5.5, 500}, {10, 900}}
		var sumDest, sumHome float64
		for _, a := range amounts {
			_, err := l.RecordExpense(ctx, trip.ID, a[0], a[1], "")
			require.NoError(t, err)
			sumDest += a[0]
			sumHome += a[1]
		}

		active, err := l.GetActiveTrip(ctx, 1)
		require.NoError(t, err)
		assert.InDelta(t, 110-sumDest, active.BalanceDest, tolerance)
		assert.InDelta(t, 10000-sumHome, active.BalanceHome, tolerance)

		totals, err := l.TotalExpenses(ctx, trip.ID)
		require.NoError(t, err)
		assert.InDelta(t, sumDest, totals.Dest, tolerance)
		assert.InDelta(t, sumHome, totals.Home, tolerance)

		expenses, err := l.ListExpenses(ctx, trip.ID, 2)
		require.NoError(t, err)
		require.Len(t, expenses, 2)
		assert.Equal(t, 10.0, expenses[0].AmountDest, "most recent first")
		assert.Equal(t, 5.5, expenses[1].AmountDest)

		for _, limit := range []int{0, -1} {
			expenses, err = l.ListExpenses(ctx, trip.ID, limit)
			require.NoError(t, err)
			assert.NotNil(t, expenses)
			assert.Empty(t, expenses, "limit %d", limit)
		}
	})

	t.Run("insufficient funds is a no-op", func(t *testing.T) {
		l := newLedger(t)
		trip := NewTrip(1)
		require.NoError(t, l.CreateTrip(ctx, trip, 10000))

		_, err := l.RecordExpense(ctx, trip.ID, 110.01, 10001, "")
		assert.ErrorIs(t, err, storages.ErrInsufficientFunds)

		active, err := l.GetActiveTrip(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 10000.0, active.BalanceHome)
		assert.Equal(t, 10000*0.011, active.BalanceDest)

		expenses, err := l.ListExpenses(ctx, trip.ID, 20)
		require.NoError(t, err)
		assert.Empty(t, expenses)
	})

	t.Run("expense validation", func(t *testing.T) {
		l := newLedger(t)
		trip := NewTrip(1)
		require.NoError(t, l.CreateTrip(ctx, trip, 10000))

		_, err := l.RecordExpense(ctx, trip.ID, 0, 10, "")
		assert.ErrorIs(t, err, storages.ErrInvalidAmount)
		_, err = l.RecordExpense(ctx, trip.ID, 10, -1, "")
		assert.ErrorIs(t, err, storages.ErrInvalidAmount)
		_, err = l.RecordExpense(ctx, trip.ID+100, 1, 1, "")
		assert.ErrorIs(t, err, storages.ErrNotFound)
	})

	t.Run("rate update anchors destination balance", func(t *testing.T) {
		l := newLedger(t)
		trip := NewTrip(1)
		require.NoError(t, l.CreateTrip(ctx, trip, 10000))
		_, err := l.RecordExpense(ctx, trip.ID, 20, 20/0.011, "")
		require.NoError(t, err)

		before, err := l.GetActiveTrip(ctx, 1)
		require.NoError(t, err)

		updated, err := l.UpdateRate(ctx, trip.ID, 0.0125)
		require.NoError(t, err)
		assert.Equal(t, 0.0125, updated.Rate)

		after, err := l.GetActiveTrip(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, before.BalanceDest, after.BalanceDest)
		assert.InDelta(t, after.BalanceDest/0.0125, after.BalanceHome, tolerance)

		_, err = l.UpdateRate(ctx, trip.ID, 0)
		assert.ErrorIs(t, err, storages.ErrInvalidRate)
		_, err = l.UpdateRate(ctx, trip.ID, 1e-307)
		assert.ErrorIs(t, err, storages.ErrInvalidRate, "home balance overflows")

		unchanged, err := l.GetActiveTrip(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 0.0125, unchanged.Rate)
		_, err = l.UpdateRate(ctx, trip.ID+100, 1)
		assert.ErrorIs(t, err, storages.ErrNotFound)
	})

	t.Run("delete cascades to expenses", func(t *testing.T) {
		l := newLedger(t)
		trip := NewTrip(1)
		require.NoError(t, l.CreateTrip(ctx, trip, 10000))
		_, err := l.RecordExpense(ctx, trip.ID, 1, 90, "coffee")
		require.NoError(t, err)

		assert.ErrorIs(t, l.DeleteTrip(ctx, 2, trip.ID), storages.ErrNotFound, "foreign user")
		require.NoError(t, l.DeleteTrip(ctx, 1, trip.ID))

		expenses, err := l.ListExpenses(ctx, trip.ID, 20)
		require.NoError(t, err)
		assert.Empty(t, expenses)

		_, err = l.GetActiveTrip(ctx, 1)
		assert.ErrorIs(t, err, storages.ErrNotFound)

		trips, err := l.ListTrips(ctx, 1)
		require.NoError(t, err)
		assert.Empty(t, trips)
	})

	t.Run("switch is idempotent and ownership checked", func(t *testing.T) {
		l := newLedger(t)
		first := NewTrip(1)
		require.NoError(t, l.CreateTrip(ctx, first, 1000))
		second := NewTrip(1)
		second.DestCountry = "Япония"
		second.DestCurrency = "JPY"
		second.Rate = 1.6
		require.NoError(t, l.CreateTrip(ctx, second, 1000))

		require.NoError(t, l.SwitchActiveTrip(ctx, 1, first.ID))
		require.NoError(t, l.SwitchActiveTrip(ctx, 1, first.ID))

		trips, err := l.ListTrips(ctx, 1)
		require.NoError(t, err)
		activeCount := 0
		for _, tr := range trips {
			if tr.Active {
				activeCount++
				assert.Equal(t, first.ID, tr.ID)
			}
			assert.Equal(t, 1000.0, tr.BalanceHome)
		}
		assert.Equal(t, 1, activeCount)

		assert.ErrorIs(t, l.SwitchActiveTrip(ctx, 2, first.ID), storages.ErrNotFound)

		_, err = l.GetTrip(ctx, 2, first.ID)
		assert.ErrorIs(t, err, storages.ErrNotFound)
		got, err := l.GetTrip(ctx, 1, second.ID)
		require.NoError(t, err)
		assert.False(t, got.Active)
	})

	t.Run("concurrent debits never overdraw", func(t *testing.T) {
		l := newLedger(t)
		trip := NewTrip(1)
		trip.Rate = 0.5
		require.NoError(t, l.CreateTrip(ctx, trip, 22))

		var wg sync.WaitGroup
		var mu sync.Mutex
		succeeded := 0
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := l.RecordExpense(ctx, trip.ID, 1, 90, ""); err == nil {
					mu.Lock()
					succeeded++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		active, err := l.GetActiveTrip(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 11, succeeded)
		assert.GreaterOrEqual(t, active.BalanceDest, -tolerance)
	})

	t.Run("concurrent debits on different trips stay exact", func(t *testing.T) {
		l := newLedger(t)
		first, second := NewTrip(1), NewTrip(2)
		require.NoError(t, l.CreateTrip(ctx, first, 10000))
		require.NoError(t, l.CreateTrip(ctx, second, 10000))

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			for _, tripID := range []int64{first.ID, second.ID} {
				wg.Add(1)
				go func(tripID int64) {
					defer wg.Done()
					_, err := l.RecordExpense(ctx, tripID, 1, 100, "")
					assert.NoError(t, err)
				}(tripID)
			}
		}
		wg.Wait()

		for userID := int64(1); userID <= 2; userID++ {
			active, err := l.GetActiveTrip(ctx, userID)
			require.NoError(t, err)
			assert.InDelta(t, 100.0, active.BalanceDest, tolerance)
			assert.InDelta(t, 9000.0, active.BalanceHome, tolerance)
		}
	})
}
