package dialogue

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"travel-wallet/internal/storages"
)

// ErrCorruptState сохраненное состояние не удалось разобрать
var ErrCorruptState = errors.New("corrupt dialogue state")

// Step шаг диалога пользователя
type Step string

const (
	StepIdle                        Step = ""
	StepAwaitingOriginCountry       Step = "awaiting_origin_country"
	StepAwaitingDestinationCountry  Step = "awaiting_destination_country"
	StepAwaitingManualRate          Step = "awaiting_manual_rate"
	StepAwaitingInitialAmount       Step = "awaiting_initial_amount"
	StepAwaitingExpenseConfirmation Step = "awaiting_expense_confirmation"
	StepAwaitingNewRate             Step = "awaiting_new_rate"
)

// Draft данные создаваемой поездки, собранные на предыдущих шагах
type Draft struct {
	HomeCountry  string  `json:"home_country"`
	HomeCurrency string  `json:"home_currency"`
	DestCountry  string  `json:"dest_country,omitempty"`
	DestCurrency string  `json:"dest_currency,omitempty"`
	Rate         float64 `json:"rate,omitempty"`
	HasRate      bool    `json:"has_rate,omitempty"`
}

// PendingExpense расход, ожидающий подтверждения
type PendingExpense struct {
	TripID          int64   `json:"trip_id"`
	AmountDest      float64 `json:"amount_dest"`
	AmountHome      float64 `json:"amount_home"`
	SourceMessageID int     `json:"source_message_id,omitempty"`
}

// State текущий шаг и данные, которые он требует
type State struct {
	Step       Step
	Draft      *Draft
	Pending    *PendingExpense
	RateTripID int64
}

type payload struct {
	Draft      *Draft          `json:"draft,omitempty"`
	Pending    *PendingExpense `json:"pending,omitempty"`
	RateTripID int64           `json:"rate_trip_id,omitempty"`
}

func encodeState(userID int64, state State) (*storages.DialogueState, error) {
	data, err := json.Marshal(payload{
		Draft:      state.Draft,
		Pending:    state.Pending,
		RateTripID: state.RateTripID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode dialogue state: %w", err)
	}

	return &storages.DialogueState{
		UserID:    userID,
		Step:      string(state.Step),
		Payload:   data,
		UpdatedAt: time.Now().UTC(),
	}, nil
}

// decodeState восстанавливает состояние и проверяет, что у шага есть нужные данные
func decodeState(stored *storages.DialogueState) (State, error) {
	if stored == nil || stored.Step == "" {
		return State{Step: StepIdle}, nil
	}

	var p payload
	if len(stored.Payload) > 0 {
		if err := json.Unmarshal(stored.Payload, &p); err != nil {
			return State{}, fmt.Errorf("%w: %v", ErrCorruptState, err)
		}
	}

	state := State{
		Step:       Step(stored.Step),
		Draft:      p.Draft,
		Pending:    p.Pending,
		RateTripID: p.RateTripID,
	}

	var valid bool
	switch state.Step {
	case StepAwaitingOriginCountry:
		valid = true
	case StepAwaitingDestinationCountry:
		valid = state.Draft != nil && state.Draft.HomeCurrency != ""
	case StepAwaitingManualRate:
		valid = state.Draft != nil && state.Draft.HomeCurrency != "" && state.Draft.DestCurrency != ""
	case StepAwaitingInitialAmount:
		valid = state.Draft != nil && state.Draft.DestCurrency != "" && state.Draft.HasRate && state.Draft.Rate > 0
	case StepAwaitingExpenseConfirmation:
		valid = state.Pending != nil && state.Pending.TripID > 0
	case StepAwaitingNewRate:
		valid = state.RateTripID > 0
	default:
		return State{}, fmt.Errorf("%w: unknown step %q", ErrCorruptState, stored.Step)
	}

	if !valid {
		return State{}, fmt.Errorf("%w: incomplete payload for step %s", ErrCorruptState, stored.Step)
	}
	return state, nil
}
