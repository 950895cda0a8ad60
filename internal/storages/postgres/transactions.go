package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"travel-wallet/internal/storages"
)

func validPositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// RecordExpense записывает расход и списывает обе суммы под блокировкой строки поездки
func (s *PostgresStorage) RecordExpense(ctx context.Context, tripID int64, amountDest, amountHome float64, description string) (*storages.Expense, error) {
	if !validPositive(amountDest) || !validPositive(amountHome) {
		return nil, storages.ErrInvalidAmount
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Errorf("Failed to begin transaction: %v", err)
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var balanceDest float64
	err = tx.QueryRowContext(ctx,
		`SELECT balance_to FROM trips WHERE id = $1 FOR UPDATE`, tripID).Scan(&balanceDest)
	if err == sql.ErrNoRows {
		return nil, storages.ErrNotFound
	}
	if err != nil {
		s.logger.Errorf("Failed to lock trip balance: %v", err)
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}

	if balanceDest < amountDest {
		return nil, storages.ErrInsufficientFunds
	}

	expense := &storages.Expense{
		TripID:      tripID,
		AmountHome:  amountHome,
		AmountDest:  amountDest,
		Description: description,
	}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO expenses (trip_id, amount_from, amount_to, description)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, tripID, amountHome, amountDest, description).Scan(&expense.ID, &expense.CreatedAt)
	if err != nil {
		s.logger.Errorf("Failed to insert expense: %v", err)
		return nil, fmt.Errorf("failed to insert expense: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE trips
		SET balance_to = balance_to - $1, balance_from = balance_from - $2
		WHERE id = $3
	`, amountDest, amountHome, tripID)
	if err != nil {
		s.logger.Errorf("Failed to debit trip: %v", err)
		return nil, fmt.Errorf("failed to debit trip: %w", err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Errorf("Failed to commit transaction: %v", err)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Debugf("Recorded expense: Trip=%d, %.2f dest, %.2f home", tripID, amountDest, amountHome)
	return expense, nil
}

// UpdateRate меняет курс и пересчитывает домашний баланс из баланса назначения
func (s *PostgresStorage) UpdateRate(ctx context.Context, tripID int64, newRate float64) (*storages.Trip, error) {
	if !validPositive(newRate) {
		return nil, storages.ErrInvalidRate
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Errorf("Failed to begin transaction: %v", err)
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	trip, err := scanTrip(tx.QueryRowContext(ctx,
		`SELECT `+tripColumns+` FROM trips WHERE id = $1 FOR UPDATE`, tripID))
	if err == sql.ErrNoRows {
		return nil, storages.ErrNotFound
	}
	if err != nil {
		s.logger.Errorf("Failed to lock trip: %v", err)
		return nil, fmt.Errorf("failed to lock trip: %w", err)
	}

	balanceHome := trip.BalanceDest / newRate
	if math.IsInf(balanceHome, 0) {
		return nil, storages.ErrInvalidRate
	}

	trip.Rate = newRate
	trip.BalanceHome = balanceHome

	_, err = tx.ExecContext(ctx,
		`UPDATE trips SET exchange_rate = $1, balance_from = $2 WHERE id = $3`,
		trip.Rate, trip.BalanceHome, tripID)
	if err != nil {
		s.logger.Errorf("Failed to update rate: %v", err)
		return nil, fmt.Errorf("failed to update rate: %w", err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Errorf("Failed to commit transaction: %v", err)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Infof("Updated rate: Trip=%d, rate=%.6f", tripID, newRate)
	return trip, nil
}

// ListExpenses возвращает последние расходы поездки
func (s *PostgresStorage) ListExpenses(ctx context.Context, tripID int64, limit int) ([]storages.Expense, error) {
	if limit <= 0 {
		return []storages.Expense{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, trip_id, amount_from, amount_to, description, created_at
		FROM expenses
		WHERE trip_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, tripID, limit)
	if err != nil {
		s.logger.Errorf("Failed to query expenses: %v", err)
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	expenses := []storages.Expense{}
	for rows.Next() {
		var e storages.Expense
		if err := rows.Scan(&e.ID, &e.TripID, &e.AmountHome, &e.AmountDest, &e.Description, &e.CreatedAt); err != nil {
			s.logger.Errorf("Failed to scan expense: %v", err)
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}

	if err = rows.Err(); err != nil {
		s.logger.Errorf("Error iterating expenses: %v", err)
		return nil, fmt.Errorf("error iterating expenses: %w", err)
	}

	return expenses, nil
}

// TotalExpenses возвращает суммы расходов поездки
func (s *PostgresStorage) TotalExpenses(ctx context.Context, tripID int64) (*storages.ExpenseTotals, error) {
	totals := &storages.ExpenseTotals{}
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount_from), 0), COALESCE(SUM(amount_to), 0)
		FROM expenses
		WHERE trip_id = $1
	`, tripID).Scan(&totals.Home, &totals.Dest)
	if err != nil {
		s.logger.Errorf("Failed to sum expenses: %v", err)
		return nil, fmt.Errorf("failed to sum expenses: %w", err)
	}

	return totals, nil
}
