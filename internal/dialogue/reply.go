package dialogue

import "travel-wallet/internal/storages"

// Action способ вывода экрана
type Action int

const (
	// ActionSend отправить новое сообщение
	ActionSend Action = iota
	// ActionEditMenu отредактировать сообщение MessageID; при неудаче отправить новое
	ActionEditMenu
	// ActionShowMenu отправить новое сообщение главного меню
	ActionShowMenu
	// ActionAlert ответить на нажатие кнопки всплывающим уведомлением
	ActionAlert
	// ActionDelete удалить сообщение MessageID
	ActionDelete
)

func (a Action) String() string {
	switch a {
	case ActionSend:
		return "send"
	case ActionEditMenu:
		return "edit_menu"
	case ActionShowMenu:
		return "show_menu"
	case ActionAlert:
		return "alert"
	case ActionDelete:
		return "delete"
	}
	return "unknown"
}

// Screen идентификатор экрана
type Screen string

const (
	ScreenMainMenu    Screen = "main_menu"
	ScreenTripList    Screen = "trip_list"
	ScreenTripDetails Screen = "trip_details"
	ScreenActiveTrip  Screen = "active_trip"
	ScreenBalance     Screen = "balance"
	ScreenHistory     Screen = "history"
	ScreenHelp        Screen = "help"

	ScreenAskOrigin        Screen = "ask_origin"
	ScreenAskDestination   Screen = "ask_destination"
	ScreenUnknownOrigin    Screen = "unknown_origin"
	ScreenUnknownDest      Screen = "unknown_destination"
	ScreenSameCurrency     Screen = "same_currency"
	ScreenAskManualRate    Screen = "ask_manual_rate"
	ScreenRateFound        Screen = "rate_found"
	ScreenAskInitialAmount Screen = "ask_initial_amount"
	ScreenInvalidRate      Screen = "invalid_rate"
	ScreenInvalidAmount    Screen = "invalid_amount"
	ScreenTripCreated      Screen = "trip_created"
	ScreenTripExists       Screen = "trip_exists"

	ScreenConfirmExpense    Screen = "confirm_expense"
	ScreenExpenseRecorded   Screen = "expense_recorded"
	ScreenExpenseCancelled  Screen = "expense_cancelled"
	ScreenInsufficientFunds Screen = "insufficient_funds"

	ScreenAskNewRate  Screen = "ask_new_rate"
	ScreenRateUpdated Screen = "rate_updated"

	ScreenNoActiveTrip  Screen = "no_active_trip"
	ScreenNoTrips       Screen = "no_trips"
	ScreenTripNotFound  Screen = "trip_not_found"
	ScreenTripSwitched  Screen = "trip_switched"
	ScreenConfirmDelete Screen = "confirm_delete"
	ScreenTripDeleted   Screen = "trip_deleted"

	ScreenStateLost       Screen = "state_lost"
	ScreenFailure         Screen = "failure"
	ScreenCancelled       Screen = "cancelled"
	ScreenNothingToCancel Screen = "nothing_to_cancel"
	ScreenAPIToken        Screen = "api_token"
)

// View данные для отрисовки экрана
type View struct {
	Screen   Screen
	Trip     *storages.Trip
	Trips    []storages.Trip
	Expenses []storages.Expense
	Totals   *storages.ExpenseTotals
	Draft    *Draft
	Pending  *PendingExpense
	// Input исходный текст пользователя, например нераспознанная страна
	Input string
	// Amount и Converted суммы в исходной и целевой валютах
	Amount    float64
	Converted float64
	Token     string
}

// Directive одно действие вывода
type Directive struct {
	Action    Action
	View      View
	MessageID int
}

// Reply упорядоченный список действий вывода
type Reply struct {
	Directives []Directive
}

// Screens возвращает экраны всех действий по порядку; удобно в логах и тестах
func (r Reply) Screens() []Screen {
	screens := make([]Screen, 0, len(r.Directives))
	for _, d := range r.Directives {
		if d.Action != ActionDelete {
			screens = append(screens, d.View.Screen)
		}
	}
	return screens
}

// Empty сообщает, что выводить нечего
func (r Reply) Empty() bool {
	return len(r.Directives) == 0
}

func (r *Reply) send(v View) *Reply {
	r.Directives = append(r.Directives, Directive{Action: ActionSend, View: v})
	return r
}

func (r *Reply) edit(messageID int, v View) *Reply {
	r.Directives = append(r.Directives, Directive{Action: ActionEditMenu, View: v, MessageID: messageID})
	return r
}

func (r *Reply) showMenu(v View) *Reply {
	r.Directives = append(r.Directives, Directive{Action: ActionShowMenu, View: v})
	return r
}

func (r *Reply) alert(v View) *Reply {
	r.Directives = append(r.Directives, Directive{Action: ActionAlert, View: v})
	return r
}

func (r *Reply) delete(messageID int) *Reply {
	if messageID != 0 {
		r.Directives = append(r.Directives, Directive{Action: ActionDelete, MessageID: messageID})
	}
	return r
}

// present показывает экран на месте нажатой кнопки или новым сообщением
func (r *Reply) present(in Input, v View) *Reply {
	if in.Callback && in.MessageID != 0 {
		return r.edit(in.MessageID, v)
	}
	return r.send(v)
}
