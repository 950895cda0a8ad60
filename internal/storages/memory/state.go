package memory

import (
	"context"

	"travel-wallet/internal/storages"
)

// GetDialogueState возвращает копию состояния пользователя или nil
func (s *MemoryStorage) GetDialogueState(ctx context.Context, userID int64) (*storages.DialogueState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.states[userID]
	if !ok {
		return nil, nil
	}
	state.Payload = append([]byte(nil), state.Payload...)
	return &state, nil
}

// SetDialogueState перезаписывает состояние пользователя
func (s *MemoryStorage) SetDialogueState(ctx context.Context, state *storages.DialogueState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *state
	stored.Payload = append([]byte(nil), state.Payload...)
	stored.UpdatedAt = s.now()
	s.states[state.UserID] = stored
	return nil
}

func (s *MemoryStorage) ClearDialogueState(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.states, userID)
	return nil
}

func (s *MemoryStorage) SaveMenuMessage(ctx context.Context, userID int64, messageID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.menus[userID] = messageID
	return nil
}

func (s *MemoryStorage) GetMenuMessage(ctx context.Context, userID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.menus[userID], nil
}
