package storagetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travel-wallet/internal/storages"
)

// StateFactory создает пустое хранилище состояний
type StateFactory func(t *testing.T) storages.StateStore

// RunStateStore проверяет хранение состояний диалога и ссылок на меню
func RunStateStore(t *testing.T, newStore StateFactory) {
	ctx := context.Background()

	t.Run("missing state is nil", func(t *testing.T) {
		s := newStore(t)
		state, err := s.GetDialogueState(ctx, 7)
		require.NoError(t, err)
		assert.Nil(t, state)
	})

	t.Run("set overwrites and clear removes", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.SetDialogueState(ctx, &storages.DialogueState{UserID: 7, Step: "awaiting_origin_country", Payload: []byte(`{}`)}))
		require.NoError(t, s.SetDialogueState(ctx, &storages.DialogueState{UserID: 7, Step: "awaiting_new_rate", Payload: []byte(`{"rate_trip_id":3}`)}))

		state, err := s.GetDialogueState(ctx, 7)
		require.NoError(t, err)
		require.NotNil(t, state)
		assert.Equal(t, "awaiting_new_rate", state.Step)
		assert.JSONEq(t, `{"rate_trip_id":3}`, string(state.Payload))

		require.NoError(t, s.ClearDialogueState(ctx, 7))
		state, err = s.GetDialogueState(ctx, 7)
		require.NoError(t, err)
		assert.Nil(t, state)
	})

	t.Run("menu message ref", func(t *testing.T) {
		s := newStore(t)
		id, err := s.GetMenuMessage(ctx, 7)
		require.NoError(t, err)
		assert.Zero(t, id)

		require.NoError(t, s.SaveMenuMessage(ctx, 7, 100))
		require.NoError(t, s.SaveMenuMessage(ctx, 7, 101))
		id, err = s.GetMenuMessage(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, 101, id)
	})
}
