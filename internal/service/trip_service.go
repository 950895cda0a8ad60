package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"travel-wallet/internal/archive"
	"travel-wallet/internal/storages"
)

// EventPublisher принимает события об изменениях поездок
type EventPublisher interface {
	Publish(ctx context.Context, event archive.Event) error
}

// TripService сервисный слой над хранилищем поездок
type TripService struct {
	ledger storages.Ledger
	events EventPublisher
	logger *logrus.Logger
}

// Overview активная поездка и суммы расходов по ней
type Overview struct {
	Trip   *storages.Trip
	Totals *storages.ExpenseTotals
}

// History последние расходы поездки
type History struct {
	Trip     *storages.Trip
	Expenses []storages.Expense
	Totals   *storages.ExpenseTotals
}

// NewTripService создает новый экземпляр сервиса; events может быть nil
func NewTripService(ledger storages.Ledger, events EventPublisher, logger *logrus.Logger) *TripService {
	return &TripService{
		ledger: ledger,
		events: events,
		logger: logger,
	}
}

func (s *TripService) publish(ctx context.Context, eventType string, trip *storages.Trip, amountHome, amountDest float64) {
	if s.events == nil || trip == nil {
		return
	}

	event := archive.Event{
		Type:         eventType,
		UserID:       trip.UserID,
		TripID:       trip.ID,
		HomeCurrency: trip.HomeCurrency,
		DestCurrency: trip.DestCurrency,
		Rate:         trip.Rate,
		AmountHome:   amountHome,
		AmountDest:   amountDest,
		BalanceHome:  trip.BalanceHome,
		BalanceDest:  trip.BalanceDest,
		OccurredAt:   time.Now().UTC(),
	}

	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warnf("Failed to publish %s event: %v", eventType, err)
	}
}

// CreateTrip создает активную поездку с начальной суммой в домашней валюте
func (s *TripService) CreateTrip(ctx context.Context, trip *storages.Trip, initialAmount float64) error {
	if err := s.ledger.CreateTrip(ctx, trip, initialAmount); err != nil {
		return fmt.Errorf("failed to create trip: %w", err)
	}

	s.logger.Infof("Trip created: UserID=%d, TripID=%d, %s -> %s, rate %.6f",
		trip.UserID, trip.ID, trip.HomeCurrency, trip.DestCurrency, trip.Rate)
	s.publish(ctx, archive.EventTripCreated, trip, trip.BalanceHome, trip.BalanceDest)
	return nil
}

// ActiveTrip возвращает активную поездку пользователя
func (s *TripService) ActiveTrip(ctx context.Context, userID int64) (*storages.Trip, error) {
	return s.ledger.GetActiveTrip(ctx, userID)
}

// GetTrip возвращает поездку пользователя
func (s *TripService) GetTrip(ctx context.Context, userID, tripID int64) (*storages.Trip, error) {
	return s.ledger.GetTrip(ctx, userID, tripID)
}

// ListTrips возвращает поездки пользователя, новые первыми
func (s *TripService) ListTrips(ctx context.Context, userID int64) ([]storages.Trip, error) {
	trips, err := s.ledger.ListTrips(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}
	return trips, nil
}

// RecordExpense списывает расход с поездки пользователя
func (s *TripService) RecordExpense(ctx context.Context, userID, tripID int64, amountDest, amountHome float64, description string) (*storages.Expense, error) {
	if _, err := s.ledger.GetTrip(ctx, userID, tripID); err != nil {
		return nil, err
	}

	expense, err := s.ledger.RecordExpense(ctx, tripID, amountDest, amountHome, description)
	if err != nil {
		return nil, err
	}

	s.logger.Infof("Expense recorded: UserID=%d, TripID=%d, %.2f dest, %.2f home",
		userID, tripID, amountDest, amountHome)

	trip, err := s.ledger.GetTrip(ctx, userID, tripID)
	if err != nil {
		s.logger.Warnf("Failed to reload trip %d after expense: %v", tripID, err)
		return expense, nil
	}
	s.publish(ctx, archive.EventExpenseRecorded, trip, amountHome, amountDest)
	return expense, nil
}

// UpdateRate меняет курс поездки пользователя
func (s *TripService) UpdateRate(ctx context.Context, userID, tripID int64, rate float64) (*storages.Trip, error) {
	if _, err := s.ledger.GetTrip(ctx, userID, tripID); err != nil {
		return nil, err
	}

	trip, err := s.ledger.UpdateRate(ctx, tripID, rate)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, archive.EventRateUpdated, trip, 0, 0)
	return trip, nil
}

// SwitchTrip делает поездку активной
func (s *TripService) SwitchTrip(ctx context.Context, userID, tripID int64) (*storages.Trip, error) {
	if err := s.ledger.SwitchActiveTrip(ctx, userID, tripID); err != nil {
		return nil, err
	}

	trip, err := s.ledger.GetTrip(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}

	s.logger.Infof("Active trip switched: UserID=%d, TripID=%d", userID, tripID)
	s.publish(ctx, archive.EventTripSwitched, trip, 0, 0)
	return trip, nil
}

// DeleteTrip удаляет поездку вместе с расходами
func (s *TripService) DeleteTrip(ctx context.Context, userID, tripID int64) error {
	trip, err := s.ledger.GetTrip(ctx, userID, tripID)
	if err != nil {
		return err
	}

	if err := s.ledger.DeleteTrip(ctx, userID, tripID); err != nil {
		return err
	}

	s.logger.Infof("Trip deleted: UserID=%d, TripID=%d", userID, tripID)
	s.publish(ctx, archive.EventTripDeleted, trip, 0, 0)
	return nil
}

// Overview возвращает активную поездку с суммами расходов
func (s *TripService) Overview(ctx context.Context, userID int64) (*Overview, error) {
	trip, err := s.ledger.GetActiveTrip(ctx, userID)
	if err != nil {
		return nil, err
	}

	totals, err := s.ledger.TotalExpenses(ctx, trip.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get totals: %w", err)
	}

	return &Overview{Trip: trip, Totals: totals}, nil
}

// History возвращает последние расходы активной поездки
func (s *TripService) History(ctx context.Context, userID int64, limit int) (*History, error) {
	trip, err := s.ledger.GetActiveTrip(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.history(ctx, trip, limit)
}

// TripHistory возвращает последние расходы указанной поездки пользователя
func (s *TripService) TripHistory(ctx context.Context, userID, tripID int64, limit int) (*History, error) {
	trip, err := s.ledger.GetTrip(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}
	return s.history(ctx, trip, limit)
}

func (s *TripService) history(ctx context.Context, trip *storages.Trip, limit int) (*History, error) {
	expenses, err := s.ledger.ListExpenses(ctx, trip.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	totals, err := s.ledger.TotalExpenses(ctx, trip.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get totals: %w", err)
	}

	return &History{Trip: trip, Expenses: expenses, Totals: totals}, nil
}
