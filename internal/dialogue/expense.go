package dialogue

import (
	"context"
	"errors"

	"travel-wallet/internal/rates"
	"travel-wallet/internal/storages"
	"travel-wallet/pkg"
)

// proposeExpense разбирает сумму расхода в валюте назначения и просит подтверждение
func (m *Machine) proposeExpense(ctx context.Context, in Input) Reply {
	var r Reply

	trip, err := m.trips.ActiveTrip(ctx, in.UserID)
	if errors.Is(err, storages.ErrNotFound) {
		view, err := m.menuView(ctx, in.UserID)
		if err != nil {
			return m.fail(in)
		}
		r.showMenu(view)
		return r
	}
	if err != nil {
		m.logger.Errorf("Failed to get active trip: UserID=%d: %v", in.UserID, err)
		return m.fail(in)
	}

	amountDest, ok := pkg.ExtractAmount(in.Text)
	if !ok {
		return r
	}

	amountHome, err := m.rates.Convert(ctx, amountDest, trip.DestCurrency, trip.HomeCurrency)
	if err != nil || !rates.Usable(amountHome) {
		amountHome = amountDest / trip.Rate
	}
	// сумма, не представимая в домашней валюте, не считается расходом
	if !rates.Usable(amountHome) {
		return r
	}

	pending := &PendingExpense{
		TripID:          trip.ID,
		AmountDest:      amountDest,
		AmountHome:      amountHome,
		SourceMessageID: in.MessageID,
	}
	if err := m.save(ctx, in.UserID, State{Step: StepAwaitingExpenseConfirmation, Pending: pending}); err != nil {
		return m.fail(in)
	}

	r.send(View{Screen: ScreenConfirmExpense, Trip: trip, Pending: pending})
	return r
}

// ConfirmExpense записывает ожидающий расход
func (m *Machine) ConfirmExpense(ctx context.Context, in Input) Reply {
	var r Reply

	state, err := m.load(ctx, in.UserID)
	if err != nil {
		return m.fail(in)
	}
	if state.Step != StepAwaitingExpenseConfirmation {
		r.alert(View{Screen: ScreenStateLost})
		return r
	}

	pending := state.Pending
	_, err = m.trips.RecordExpense(ctx, in.UserID, pending.TripID, pending.AmountDest, pending.AmountHome, "")
	switch {
	case errors.Is(err, storages.ErrInsufficientFunds):
		r.alert(View{Screen: ScreenInsufficientFunds, Pending: pending})
		return r
	case errors.Is(err, storages.ErrNotFound):
		m.clear(ctx, in.UserID)
		r.alert(View{Screen: ScreenTripNotFound})
		return r
	case err != nil:
		m.logger.Errorf("Failed to record expense: UserID=%d, TripID=%d: %v", in.UserID, pending.TripID, err)
		return m.fail(in)
	}

	m.clear(ctx, in.UserID)

	trip, err := m.trips.GetTrip(ctx, in.UserID, pending.TripID)
	if err != nil {
		m.logger.Warnf("Failed to reload trip: UserID=%d, TripID=%d: %v", in.UserID, pending.TripID, err)
	}

	r.delete(pending.SourceMessageID)
	r.delete(in.MessageID)
	m.refreshMenu(ctx, &r, in.UserID, true)
	r.alert(View{Screen: ScreenExpenseRecorded, Trip: trip, Pending: pending})
	return r
}

// CancelExpense отменяет ожидающий расход
func (m *Machine) CancelExpense(ctx context.Context, in Input) Reply {
	var r Reply

	state, err := m.load(ctx, in.UserID)
	if err == nil && state.Step == StepAwaitingExpenseConfirmation {
		r.delete(state.Pending.SourceMessageID)
		m.clear(ctx, in.UserID)
	}

	r.delete(in.MessageID)
	m.refreshMenu(ctx, &r, in.UserID, true)
	r.alert(View{Screen: ScreenExpenseCancelled})
	return r
}
