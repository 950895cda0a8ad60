package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travel-wallet/internal/logger"
	"travel-wallet/internal/storages"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func setupMock(ttl time.Duration) (*StateStorage, redismock.ClientMock) {
	client, mock := redismock.NewClientMock()
	s := NewWithClient(client, ttl, logger.Discard())
	s.now = func() time.Time { return fixedNow }
	return s, mock
}

func TestGetDialogueStateMissing(t *testing.T) {
	s, mock := setupMock(time.Hour)
	mock.ExpectGet("travelwallet:state:42").RedisNil()

	state, err := s.GetDialogueState(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, state)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetDialogueStateUsesTTL(t *testing.T) {
	s, mock := setupMock(time.Hour)
	mock.ExpectSet("travelwallet:state:42",
		[]byte(`{"step":"awaiting_new_rate","payload":{"rate_trip_id":7},"updated_at":"2024-05-01T12:00:00Z"}`),
		time.Hour).SetVal("OK")

	err := s.SetDialogueState(context.Background(), &storages.DialogueState{
		UserID:  42,
		Step:    "awaiting_new_rate",
		Payload: []byte(`{"rate_trip_id":7}`),
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetDialogueStateDecodes(t *testing.T) {
	s, mock := setupMock(0)
	mock.ExpectGet("travelwallet:state:42").
		SetVal(`{"step":"awaiting_origin_country","updated_at":"2024-05-01T12:00:00Z"}`)

	state, err := s.GetDialogueState(context.Background(), 42)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, int64(42), state.UserID)
	assert.Equal(t, "awaiting_origin_country", state.Step)
	assert.Empty(t, state.Payload)
	assert.Equal(t, fixedNow, state.UpdatedAt)
}

func TestGetDialogueStateError(t *testing.T) {
	s, mock := setupMock(0)
	mock.ExpectGet("travelwallet:state:42").SetErr(errors.New("connection refused"))

	_, err := s.GetDialogueState(context.Background(), 42)
	assert.Error(t, err)
}

func TestClearDialogueState(t *testing.T) {
	s, mock := setupMock(0)
	mock.ExpectDel("travelwallet:state:42").SetVal(1)

	require.NoError(t, s.ClearDialogueState(context.Background(), 42))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMenuMessage(t *testing.T) {
	s, mock := setupMock(time.Hour)
	ctx := context.Background()

	mock.ExpectGet("travelwallet:menu:42").RedisNil()
	id, err := s.GetMenuMessage(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, 0, id)

	mock.ExpectSet("travelwallet:menu:42", 100, 0).SetVal("OK")
	require.NoError(t, s.SaveMenuMessage(ctx, 42, 100))

	mock.ExpectGet("travelwallet:menu:42").SetVal("100")
	id, err = s.GetMenuMessage(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, 100, id)

	assert.NoError(t, mock.ExpectationsWereMet())
}
