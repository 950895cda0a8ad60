// Package memory хранит поездки, расходы и состояния диалогов в памяти процесса.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"travel-wallet/internal/storages"
)

// MemoryStorage реализует storages.Ledger и storages.StateStore.
// Все изменения сериализуются одним mu, включая балансы разных поездок.
type MemoryStorage struct {
	mu       sync.RWMutex
	trips    map[int64]*storages.Trip
	expenses map[int64][]storages.Expense
	states   map[int64]storages.DialogueState
	menus    map[int64]int

	nextTripID    int64
	nextExpenseID int64

	now    func() time.Time
	logger *logrus.Logger
}

// New создает пустое хранилище
func New(logger *logrus.Logger) *MemoryStorage {
	return &MemoryStorage{
		trips:    make(map[int64]*storages.Trip),
		expenses: make(map[int64][]storages.Expense),
		states:   make(map[int64]storages.DialogueState),
		menus:    make(map[int64]int),
		now:      time.Now,
		logger:   logger,
	}
}

func validPositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// CreateTrip создает активную поездку, деактивируя остальные поездки пользователя
func (s *MemoryStorage) CreateTrip(ctx context.Context, trip *storages.Trip, initialAmount float64) error {
	if !validPositive(trip.Rate) {
		return storages.ErrInvalidRate
	}
	if !validPositive(initialAmount) || !validPositive(initialAmount*trip.Rate) {
		return storages.ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.trips {
		if t.UserID == trip.UserID && t.HomeCountry == trip.HomeCountry && t.DestCountry == trip.DestCountry {
			return storages.ErrTripExists
		}
	}

	for _, t := range s.trips {
		if t.UserID == trip.UserID {
			t.Active = false
		}
	}

	s.nextTripID++
	trip.ID = s.nextTripID
	trip.BalanceHome = initialAmount
	trip.BalanceDest = initialAmount * trip.Rate
	trip.Active = true
	trip.CreatedAt = s.now()

	stored := *trip
	s.trips[trip.ID] = &stored

	s.logger.Infof("Created trip: ID=%d, User=%d, %s -> %s", trip.ID, trip.UserID, trip.HomeCurrency, trip.DestCurrency)
	return nil
}

// GetActiveTrip возвращает активную поездку пользователя
func (s *MemoryStorage) GetActiveTrip(ctx context.Context, userID int64) (*storages.Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.trips {
		if t.UserID == userID && t.Active {
			trip := *t
			return &trip, nil
		}
	}
	return nil, storages.ErrNotFound
}

// GetTrip возвращает поездку, если она принадлежит пользователю
func (s *MemoryStorage) GetTrip(ctx context.Context, userID, tripID int64) (*storages.Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.trips[tripID]
	if !ok || t.UserID != userID {
		return nil, storages.ErrNotFound
	}
	trip := *t
	return &trip, nil
}

// ListTrips возвращает поездки пользователя, новые первыми
func (s *MemoryStorage) ListTrips(ctx context.Context, userID int64) ([]storages.Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var trips []storages.Trip
	for _, t := range s.trips {
		if t.UserID == userID {
			trips = append(trips, *t)
		}
	}

	sort.Slice(trips, func(i, j int) bool {
		if !trips[i].CreatedAt.Equal(trips[j].CreatedAt) {
			return trips[i].CreatedAt.After(trips[j].CreatedAt)
		}
		return trips[i].ID > trips[j].ID
	})

	return trips, nil
}

// SwitchActiveTrip делает указанную поездку единственной активной
func (s *MemoryStorage) SwitchActiveTrip(ctx context.Context, userID, tripID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	target, ok := s.trips[tripID]
	if !ok || target.UserID != userID {
		return storages.ErrNotFound
	}

	for _, t := range s.trips {
		if t.UserID == userID {
			t.Active = false
		}
	}
	target.Active = true

	return nil
}

// DeleteTrip удаляет поездку вместе с расходами
func (s *MemoryStorage) DeleteTrip(ctx context.Context, userID, tripID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.trips[tripID]
	if !ok || t.UserID != userID {
		return storages.ErrNotFound
	}

	delete(s.trips, tripID)
	delete(s.expenses, tripID)

	s.logger.Infof("Deleted trip: ID=%d, User=%d", tripID, userID)
	return nil
}

// RecordExpense записывает расход и списывает обе суммы с балансов поездки
func (s *MemoryStorage) RecordExpense(ctx context.Context, tripID int64, amountDest, amountHome float64, description string) (*storages.Expense, error) {
	if !validPositive(amountDest) || !validPositive(amountHome) {
		return nil, storages.ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.trips[tripID]
	if !ok {
		return nil, storages.ErrNotFound
	}

	if t.BalanceDest < amountDest {
		return nil, storages.ErrInsufficientFunds
	}

	s.nextExpenseID++
	expense := storages.Expense{
		ID:          s.nextExpenseID,
		TripID:      tripID,
		AmountHome:  amountHome,
		AmountDest:  amountDest,
		Description: description,
		CreatedAt:   s.now(),
	}

	t.BalanceDest -= amountDest
	t.BalanceHome -= amountHome
	s.expenses[tripID] = append(s.expenses[tripID], expense)

	return &expense, nil
}

// UpdateRate меняет курс поездки; баланс в валюте назначения не меняется
func (s *MemoryStorage) UpdateRate(ctx context.Context, tripID int64, newRate float64) (*storages.Trip, error) {
	if !validPositive(newRate) {
		return nil, storages.ErrInvalidRate
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.trips[tripID]
	if !ok {
		return nil, storages.ErrNotFound
	}

	balanceHome := t.BalanceDest / newRate
	if math.IsInf(balanceHome, 0) {
		return nil, storages.ErrInvalidRate
	}

	t.Rate = newRate
	t.BalanceHome = balanceHome

	trip := *t
	return &trip, nil
}

// ListExpenses возвращает последние расходы поездки
func (s *MemoryStorage) ListExpenses(ctx context.Context, tripID int64, limit int) ([]storages.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		return []storages.Expense{}, nil
	}

	recorded := s.expenses[tripID]
	expenses := make([]storages.Expense, 0, min(limit, len(recorded)))
	for i := len(recorded) - 1; i >= 0 && len(expenses) < limit; i-- {
		expenses = append(expenses, recorded[i])
	}

	return expenses, nil
}

// TotalExpenses возвращает суммы расходов поездки
func (s *MemoryStorage) TotalExpenses(ctx context.Context, tripID int64) (*storages.ExpenseTotals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	totals := &storages.ExpenseTotals{}
	for _, e := range s.expenses[tripID] {
		totals.Home += e.AmountHome
		totals.Dest += e.AmountDest
	}
	return totals, nil
}

func (s *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}

func (s *MemoryStorage) Close() error {
	return nil
}
