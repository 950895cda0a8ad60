package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"travel-wallet/internal/storages"
)

const tripColumns = `id, user_id, from_country, to_country, from_currency, to_currency,
	exchange_rate, balance_from, balance_to, is_active, created_at`

// uniqueViolation код ошибки PostgreSQL для нарушения UNIQUE
const uniqueViolation = "23505"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrip(row rowScanner) (*storages.Trip, error) {
	var trip storages.Trip
	err := row.Scan(
		&trip.ID,
		&trip.UserID,
		&trip.HomeCountry,
		&trip.DestCountry,
		&trip.HomeCurrency,
		&trip.DestCurrency,
		&trip.Rate,
		&trip.BalanceHome,
		&trip.BalanceDest,
		&trip.Active,
		&trip.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &trip, nil
}

// CreateTrip деактивирует поездки пользователя и создает новую активную в одной транзакции
func (s *PostgresStorage) CreateTrip(ctx context.Context, trip *storages.Trip, initialAmount float64) error {
	if !validPositive(trip.Rate) {
		return storages.ErrInvalidRate
	}
	if !validPositive(initialAmount) || !validPositive(initialAmount*trip.Rate) {
		return storages.ErrInvalidAmount
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Errorf("Failed to begin transaction: %v", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE trips SET is_active = FALSE WHERE user_id = $1`, trip.UserID); err != nil {
		s.logger.Errorf("Failed to deactivate trips: %v", err)
		return fmt.Errorf("failed to deactivate trips: %w", err)
	}

	balanceDest := initialAmount * trip.Rate
	err = tx.QueryRowContext(ctx, `
		INSERT INTO trips (user_id, from_country, to_country, from_currency, to_currency,
			exchange_rate, balance_from, balance_to, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE)
		RETURNING id, created_at
	`,
		trip.UserID,
		trip.HomeCountry,
		trip.DestCountry,
		trip.HomeCurrency,
		trip.DestCurrency,
		trip.Rate,
		initialAmount,
		balanceDest,
	).Scan(&trip.ID, &trip.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return storages.ErrTripExists
		}
		s.logger.Errorf("Failed to create trip: %v", err)
		return fmt.Errorf("failed to create trip: %w", err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Errorf("Failed to commit transaction: %v", err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	trip.BalanceHome = initialAmount
	trip.BalanceDest = balanceDest
	trip.Active = true

	s.logger.Infof("Created trip: ID=%d, User=%d, %s -> %s", trip.ID, trip.UserID, trip.HomeCurrency, trip.DestCurrency)
	return nil
}

// GetActiveTrip возвращает активную поездку пользователя
func (s *PostgresStorage) GetActiveTrip(ctx context.Context, userID int64) (*storages.Trip, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+tripColumns+` FROM trips WHERE user_id = $1 AND is_active LIMIT 1`, userID)

	trip, err := scanTrip(row)
	if err == sql.ErrNoRows {
		return nil, storages.ErrNotFound
	}
	if err != nil {
		s.logger.Errorf("Failed to get active trip: %v", err)
		return nil, fmt.Errorf("failed to get active trip: %w", err)
	}

	return trip, nil
}

// GetTrip возвращает поездку, принадлежащую пользователю
func (s *PostgresStorage) GetTrip(ctx context.Context, userID, tripID int64) (*storages.Trip, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+tripColumns+` FROM trips WHERE id = $1 AND user_id = $2`, tripID, userID)

	trip, err := scanTrip(row)
	if err == sql.ErrNoRows {
		return nil, storages.ErrNotFound
	}
	if err != nil {
		s.logger.Errorf("Failed to get trip: %v", err)
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}

	return trip, nil
}

// ListTrips возвращает поездки пользователя, новые первыми
func (s *PostgresStorage) ListTrips(ctx context.Context, userID int64) ([]storages.Trip, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+tripColumns+` FROM trips WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		s.logger.Errorf("Failed to query trips: %v", err)
		return nil, fmt.Errorf("failed to query trips: %w", err)
	}
	defer rows.Close()

	var trips []storages.Trip
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			s.logger.Errorf("Failed to scan trip: %v", err)
			return nil, fmt.Errorf("failed to scan trip: %w", err)
		}
		trips = append(trips, *trip)
	}

	if err = rows.Err(); err != nil {
		s.logger.Errorf("Error iterating trips: %v", err)
		return nil, fmt.Errorf("error iterating trips: %w", err)
	}

	return trips, nil
}

// SwitchActiveTrip делает указанную поездку единственной активной
func (s *PostgresStorage) SwitchActiveTrip(ctx context.Context, userID, tripID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Errorf("Failed to begin transaction: %v", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM trips WHERE id = $1 AND user_id = $2 FOR UPDATE`, tripID, userID).Scan(&id)
	if err == sql.ErrNoRows {
		return storages.ErrNotFound
	}
	if err != nil {
		s.logger.Errorf("Failed to lock trip: %v", err)
		return fmt.Errorf("failed to lock trip: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE trips SET is_active = (id = $1) WHERE user_id = $2`, tripID, userID); err != nil {
		s.logger.Errorf("Failed to switch trip: %v", err)
		return fmt.Errorf("failed to switch trip: %w", err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Errorf("Failed to commit transaction: %v", err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Debugf("Switched active trip: User=%d, Trip=%d", userID, tripID)
	return nil
}

// DeleteTrip удаляет поездку; расходы удаляются каскадно
func (s *PostgresStorage) DeleteTrip(ctx context.Context, userID, tripID int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM trips WHERE id = $1 AND user_id = $2`, tripID, userID)
	if err != nil {
		s.logger.Errorf("Failed to delete trip: %v", err)
		return fmt.Errorf("failed to delete trip: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return storages.ErrNotFound
	}

	s.logger.Infof("Deleted trip: ID=%d, User=%d", tripID, userID)
	return nil
}
