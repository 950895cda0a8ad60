// Package redis хранит состояния диалогов и ссылки на меню в Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"travel-wallet/internal/storages"
)

const (
	stateKeyPrefix = "travelwallet:state:"
	menuKeyPrefix  = "travelwallet:menu:"
)

// Config содержит параметры подключения к Redis
type Config struct {
	Addr     string
	Password string
	DB       int
	// StateTTL ограничивает время жизни незавершенного диалога; 0 - без ограничения
	StateTTL time.Duration
}

// StateStorage реализует storages.StateStore
type StateStorage struct {
	client   redis.Cmdable
	stateTTL time.Duration
	now      func() time.Time
	logger   *logrus.Logger
}

// storedState формат значения в Redis
type storedState struct {
	Step      string          `json:"step"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// New подключается к Redis
func New(ctx context.Context, cfg *Config, logger *logrus.Logger) (*StateStorage, *redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	logger.Infof("Connected to Redis at %s", cfg.Addr)
	return NewWithClient(client, cfg.StateTTL, logger), client, nil
}

// NewWithClient использует готовый клиент
func NewWithClient(client redis.Cmdable, stateTTL time.Duration, logger *logrus.Logger) *StateStorage {
	return &StateStorage{
		client:   client,
		stateTTL: stateTTL,
		now:      time.Now,
		logger:   logger,
	}
}

func stateKey(userID int64) string {
	return stateKeyPrefix + strconv.FormatInt(userID, 10)
}

func menuKey(userID int64) string {
	return menuKeyPrefix + strconv.FormatInt(userID, 10)
}

// GetDialogueState возвращает состояние или nil, если ключа нет
func (s *StateStorage) GetDialogueState(ctx context.Context, userID int64) (*storages.DialogueState, error) {
	raw, err := s.client.Get(ctx, stateKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		s.logger.Errorf("Failed to get dialogue state: %v", err)
		return nil, fmt.Errorf("failed to get dialogue state: %w", err)
	}

	var stored storedState
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("failed to decode dialogue state: %w", err)
	}

	return &storages.DialogueState{
		UserID:    userID,
		Step:      stored.Step,
		Payload:   []byte(stored.Payload),
		UpdatedAt: stored.UpdatedAt,
	}, nil
}

// SetDialogueState сохраняет состояние с TTL
func (s *StateStorage) SetDialogueState(ctx context.Context, state *storages.DialogueState) error {
	stored := storedState{
		Step:      state.Step,
		UpdatedAt: s.now().UTC(),
	}
	if len(state.Payload) > 0 {
		stored.Payload = json.RawMessage(state.Payload)
	}

	raw, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to encode dialogue state: %w", err)
	}

	if err := s.client.Set(ctx, stateKey(state.UserID), raw, s.stateTTL).Err(); err != nil {
		s.logger.Errorf("Failed to save dialogue state: %v", err)
		return fmt.Errorf("failed to save dialogue state: %w", err)
	}

	return nil
}

func (s *StateStorage) ClearDialogueState(ctx context.Context, userID int64) error {
	if err := s.client.Del(ctx, stateKey(userID)).Err(); err != nil {
		s.logger.Errorf("Failed to clear dialogue state: %v", err)
		return fmt.Errorf("failed to clear dialogue state: %w", err)
	}
	return nil
}

// SaveMenuMessage запоминает сообщение меню без срока жизни
func (s *StateStorage) SaveMenuMessage(ctx context.Context, userID int64, messageID int) error {
	if err := s.client.Set(ctx, menuKey(userID), messageID, 0).Err(); err != nil {
		s.logger.Errorf("Failed to save menu message: %v", err)
		return fmt.Errorf("failed to save menu message: %w", err)
	}
	return nil
}

func (s *StateStorage) GetMenuMessage(ctx context.Context, userID int64) (int, error) {
	id, err := s.client.Get(ctx, menuKey(userID)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		s.logger.Errorf("Failed to get menu message: %v", err)
		return 0, fmt.Errorf("failed to get menu message: %w", err)
	}
	return id, nil
}
