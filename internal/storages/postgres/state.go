package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"travel-wallet/internal/storages"
)

// GetDialogueState возвращает состояние диалога или nil, если его нет
func (s *PostgresStorage) GetDialogueState(ctx context.Context, userID int64) (*storages.DialogueState, error) {
	state := &storages.DialogueState{UserID: userID}
	err := s.db.QueryRowContext(ctx,
		`SELECT state, data, updated_at FROM user_states WHERE user_id = $1`, userID,
	).Scan(&state.Step, &state.Payload, &state.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		s.logger.Errorf("Failed to get dialogue state: %v", err)
		return nil, fmt.Errorf("failed to get dialogue state: %w", err)
	}

	return state, nil
}

// SetDialogueState сохраняет состояние диалога, перезаписывая предыдущее
func (s *PostgresStorage) SetDialogueState(ctx context.Context, state *storages.DialogueState) error {
	// lib/pq передает []byte как bytea, поэтому JSONB пишется строкой
	payload := string(state.Payload)
	if payload == "" {
		payload = "{}"
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_states (user_id, state, data, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET state = EXCLUDED.state, data = EXCLUDED.data, updated_at = EXCLUDED.updated_at
	`, state.UserID, state.Step, payload)
	if err != nil {
		s.logger.Errorf("Failed to save dialogue state: %v", err)
		return fmt.Errorf("failed to save dialogue state: %w", err)
	}

	return nil
}

// ClearDialogueState удаляет состояние диалога
func (s *PostgresStorage) ClearDialogueState(ctx context.Context, userID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM user_states WHERE user_id = $1`, userID); err != nil {
		s.logger.Errorf("Failed to clear dialogue state: %v", err)
		return fmt.Errorf("failed to clear dialogue state: %w", err)
	}
	return nil
}

// SaveMenuMessage запоминает последнее сообщение главного меню
func (s *PostgresStorage) SaveMenuMessage(ctx context.Context, userID int64, messageID int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_menu_messages (user_id, message_id, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET message_id = EXCLUDED.message_id, updated_at = EXCLUDED.updated_at
	`, userID, messageID)
	if err != nil {
		s.logger.Errorf("Failed to save menu message: %v", err)
		return fmt.Errorf("failed to save menu message: %w", err)
	}
	return nil
}

// GetMenuMessage возвращает идентификатор сообщения меню или 0
func (s *PostgresStorage) GetMenuMessage(ctx context.Context, userID int64) (int, error) {
	var messageID int
	err := s.db.QueryRowContext(ctx,
		`SELECT message_id FROM user_menu_messages WHERE user_id = $1`, userID).Scan(&messageID)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		s.logger.Errorf("Failed to get menu message: %v", err)
		return 0, fmt.Errorf("failed to get menu message: %w", err)
	}
	return messageID, nil
}
