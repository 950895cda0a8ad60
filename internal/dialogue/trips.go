package dialogue

import (
	"context"
	"errors"

	"travel-wallet/internal/rates"
	"travel-wallet/internal/storages"
	"travel-wallet/pkg"
)

// StartTrip начинает создание новой поездки
func (m *Machine) StartTrip(ctx context.Context, in Input) Reply {
	if err := m.save(ctx, in.UserID, State{Step: StepAwaitingOriginCountry}); err != nil {
		return m.fail(in)
	}

	var r Reply
	r.present(in, View{Screen: ScreenAskOrigin})
	return r
}

func (m *Machine) handleOrigin(ctx context.Context, in Input) Reply {
	var r Reply

	code, ok := m.currencies.Resolve(in.Text)
	if !ok {
		r.send(View{Screen: ScreenUnknownOrigin, Input: in.Text})
		return r
	}

	draft := &Draft{HomeCountry: in.Text, HomeCurrency: code}
	if err := m.save(ctx, in.UserID, State{Step: StepAwaitingDestinationCountry, Draft: draft}); err != nil {
		return m.fail(in)
	}

	r.send(View{Screen: ScreenAskDestination, Draft: draft})
	return r
}

func (m *Machine) handleDestination(ctx context.Context, in Input, state State) Reply {
	var r Reply

	code, ok := m.currencies.Resolve(in.Text)
	if !ok {
		r.send(View{Screen: ScreenUnknownDest, Input: in.Text})
		return r
	}

	if code == state.Draft.HomeCurrency {
		r.send(View{Screen: ScreenSameCurrency, Draft: state.Draft})
		return r
	}

	draft := *state.Draft
	draft.DestCountry = in.Text
	draft.DestCurrency = code

	rate, err := m.rates.FetchRate(ctx, draft.HomeCurrency, draft.DestCurrency)
	if err != nil || !rates.Usable(rate) {
		m.logger.Warnf("Exchange rate unavailable: %s -> %s: %v", draft.HomeCurrency, draft.DestCurrency, err)

		if err := m.save(ctx, in.UserID, State{Step: StepAwaitingManualRate, Draft: &draft}); err != nil {
			return m.fail(in)
		}
		r.send(View{Screen: ScreenAskManualRate, Draft: &draft})
		return r
	}

	draft.Rate = rate
	draft.HasRate = true
	if err := m.save(ctx, in.UserID, State{Step: StepAwaitingInitialAmount, Draft: &draft}); err != nil {
		return m.fail(in)
	}

	r.send(View{Screen: ScreenRateFound, Draft: &draft})
	return r
}

func (m *Machine) handleManualRate(ctx context.Context, in Input, state State) Reply {
	var r Reply

	rate, err := pkg.ParsePositive(in.Text)
	if err != nil {
		r.send(View{Screen: ScreenInvalidRate, Input: in.Text})
		return r
	}

	draft := *state.Draft
	draft.Rate = rate
	draft.HasRate = true
	if err := m.save(ctx, in.UserID, State{Step: StepAwaitingInitialAmount, Draft: &draft}); err != nil {
		return m.fail(in)
	}

	r.send(View{Screen: ScreenAskInitialAmount, Draft: &draft})
	return r
}

func (m *Machine) handleInitialAmount(ctx context.Context, in Input, state State) Reply {
	var r Reply

	amount, err := pkg.ParsePositive(in.Text)
	if err != nil {
		r.send(View{Screen: ScreenInvalidAmount, Input: in.Text})
		return r
	}

	draft := state.Draft
	if !rates.Usable(amount * draft.Rate) {
		r.send(View{Screen: ScreenInvalidAmount, Input: in.Text})
		return r
	}

	// пересчет через API только для показа; в поездку пишется курс из черновика
	converted, err := m.rates.Convert(ctx, amount, draft.HomeCurrency, draft.DestCurrency)
	if err != nil || !rates.Usable(converted) {
		converted = amount * draft.Rate
	}

	trip := &storages.Trip{
		UserID:       in.UserID,
		HomeCountry:  draft.HomeCountry,
		DestCountry:  draft.DestCountry,
		HomeCurrency: draft.HomeCurrency,
		DestCurrency: draft.DestCurrency,
		Rate:         draft.Rate,
	}

	if err := m.trips.CreateTrip(ctx, trip, amount); err != nil {
		if errors.Is(err, storages.ErrTripExists) {
			r.send(View{Screen: ScreenTripExists, Draft: draft})
			return r
		}
		if errors.Is(err, storages.ErrInvalidAmount) {
			r.send(View{Screen: ScreenInvalidAmount, Input: in.Text})
			return r
		}
		m.logger.Errorf("Failed to create trip: UserID=%d: %v", in.UserID, err)
		return m.fail(in)
	}

	m.clear(ctx, in.UserID)

	view, err := m.menuView(ctx, in.UserID)
	if err == nil {
		r.showMenu(view)
	}
	r.send(View{Screen: ScreenTripCreated, Trip: trip, Amount: amount, Converted: converted})
	return r
}

// ChangeRate начинает ввод нового курса активной поездки
func (m *Machine) ChangeRate(ctx context.Context, in Input) Reply {
	trip, err := m.trips.ActiveTrip(ctx, in.UserID)
	if errors.Is(err, storages.ErrNotFound) {
		return m.noActiveTrip(ctx, in)
	}
	if err != nil {
		m.logger.Errorf("Failed to get active trip: UserID=%d: %v", in.UserID, err)
		return m.fail(in)
	}

	if err := m.save(ctx, in.UserID, State{Step: StepAwaitingNewRate, RateTripID: trip.ID}); err != nil {
		return m.fail(in)
	}

	var r Reply
	r.present(in, View{Screen: ScreenAskNewRate, Trip: trip})
	return r
}

func (m *Machine) handleNewRate(ctx context.Context, in Input, state State) Reply {
	var r Reply

	rate, err := pkg.ParsePositive(in.Text)
	if err != nil {
		r.send(View{Screen: ScreenInvalidRate, Input: in.Text})
		return r
	}

	trip, err := m.trips.UpdateRate(ctx, in.UserID, state.RateTripID, rate)
	if errors.Is(err, storages.ErrNotFound) {
		m.clear(ctx, in.UserID)
		r.send(View{Screen: ScreenTripNotFound})
		return r
	}
	if errors.Is(err, storages.ErrInvalidRate) {
		r.send(View{Screen: ScreenInvalidRate, Input: in.Text})
		return r
	}
	if err != nil {
		m.logger.Errorf("Failed to update rate: UserID=%d, TripID=%d: %v", in.UserID, state.RateTripID, err)
		return m.fail(in)
	}

	m.clear(ctx, in.UserID)
	m.logger.Infof("Rate updated: UserID=%d, TripID=%d, rate %.6f", in.UserID, trip.ID, trip.Rate)

	m.refreshMenu(ctx, &r, in.UserID, false)
	r.send(View{Screen: ScreenRateUpdated, Trip: trip})
	return r
}

// ShowTrips показывает список поездок пользователя
func (m *Machine) ShowTrips(ctx context.Context, in Input) Reply {
	var r Reply

	trips, err := m.trips.ListTrips(ctx, in.UserID)
	if err != nil {
		m.logger.Errorf("Failed to list trips: UserID=%d: %v", in.UserID, err)
		return m.fail(in)
	}

	if len(trips) == 0 {
		if in.Callback {
			r.alert(View{Screen: ScreenNoTrips})
		}
		view, err := m.menuView(ctx, in.UserID)
		if err != nil {
			return m.fail(in)
		}
		r.showMenu(view)
		return r
	}

	r.present(in, View{Screen: ScreenTripList, Trips: trips})
	return r
}

// ViewTrip показывает карточку поездки
func (m *Machine) ViewTrip(ctx context.Context, in Input, tripID int64) Reply {
	trip, r, ok := m.ownTrip(ctx, in, tripID)
	if !ok {
		return r
	}

	r.present(in, View{Screen: ScreenTripDetails, Trip: trip})
	return r
}

// SwitchTrip делает поездку активной
func (m *Machine) SwitchTrip(ctx context.Context, in Input, tripID int64) Reply {
	var r Reply

	trip, err := m.trips.SwitchTrip(ctx, in.UserID, tripID)
	if errors.Is(err, storages.ErrNotFound) {
		r.alert(View{Screen: ScreenTripNotFound})
		return r
	}
	if err != nil {
		m.logger.Errorf("Failed to switch trip: UserID=%d, TripID=%d: %v", in.UserID, tripID, err)
		return m.fail(in)
	}

	r.alert(View{Screen: ScreenTripSwitched, Trip: trip})
	r.present(in, View{Screen: ScreenActiveTrip, Trip: trip})
	return r
}

// AskDeleteTrip запрашивает подтверждение удаления
func (m *Machine) AskDeleteTrip(ctx context.Context, in Input, tripID int64) Reply {
	trip, r, ok := m.ownTrip(ctx, in, tripID)
	if !ok {
		return r
	}

	r.present(in, View{Screen: ScreenConfirmDelete, Trip: trip})
	return r
}

// ConfirmDeleteTrip удаляет поездку и возвращает к списку
func (m *Machine) ConfirmDeleteTrip(ctx context.Context, in Input, tripID int64) Reply {
	var r Reply

	err := m.trips.DeleteTrip(ctx, in.UserID, tripID)
	if errors.Is(err, storages.ErrNotFound) {
		r.alert(View{Screen: ScreenTripNotFound})
		return r
	}
	if err != nil {
		m.logger.Errorf("Failed to delete trip: UserID=%d, TripID=%d: %v", in.UserID, tripID, err)
		return m.fail(in)
	}

	// незавершенный диалог по удаленной поездке больше не имеет смысла
	if state, err := m.load(ctx, in.UserID); err == nil && state.refersTo(tripID) {
		m.clear(ctx, in.UserID)
	}

	r.alert(View{Screen: ScreenTripDeleted})

	trips, err := m.trips.ListTrips(ctx, in.UserID)
	if err != nil {
		m.logger.Errorf("Failed to list trips: UserID=%d: %v", in.UserID, err)
		return r
	}

	if len(trips) == 0 {
		if view, err := m.menuView(ctx, in.UserID); err == nil {
			r.present(in, view)
		}
		return r
	}

	r.present(in, View{Screen: ScreenTripList, Trips: trips})
	return r
}

// ShowBalance показывает балансы активной поездки
func (m *Machine) ShowBalance(ctx context.Context, in Input) Reply {
	trip, err := m.trips.ActiveTrip(ctx, in.UserID)
	if errors.Is(err, storages.ErrNotFound) {
		return m.noActiveTrip(ctx, in)
	}
	if err != nil {
		m.logger.Errorf("Failed to get active trip: UserID=%d: %v", in.UserID, err)
		return m.fail(in)
	}

	var r Reply
	r.present(in, View{Screen: ScreenBalance, Trip: trip})
	return r
}

// ShowHistory показывает последние расходы активной поездки
func (m *Machine) ShowHistory(ctx context.Context, in Input) Reply {
	history, err := m.trips.History(ctx, in.UserID, m.historyLimit)
	if errors.Is(err, storages.ErrNotFound) {
		return m.noActiveTrip(ctx, in)
	}
	if err != nil {
		m.logger.Errorf("Failed to get history: UserID=%d: %v", in.UserID, err)
		return m.fail(in)
	}

	var r Reply
	r.present(in, View{
		Screen:   ScreenHistory,
		Trip:     history.Trip,
		Expenses: history.Expenses,
		Totals:   history.Totals,
	})
	return r
}

func (m *Machine) ownTrip(ctx context.Context, in Input, tripID int64) (*storages.Trip, Reply, bool) {
	var r Reply

	trip, err := m.trips.GetTrip(ctx, in.UserID, tripID)
	if errors.Is(err, storages.ErrNotFound) {
		r.alert(View{Screen: ScreenTripNotFound})
		return nil, r, false
	}
	if err != nil {
		m.logger.Errorf("Failed to get trip: UserID=%d, TripID=%d: %v", in.UserID, tripID, err)
		return nil, m.fail(in), false
	}
	return trip, r, true
}

func (s State) refersTo(tripID int64) bool {
	if s.Pending != nil && s.Pending.TripID == tripID {
		return true
	}
	return s.RateTripID == tripID
}
