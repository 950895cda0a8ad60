// Package dialogue ведет пошаговый диалог пользователя с ботом.
//
// Machine не знает о Telegram: каждая точка входа читает состояние
// пользователя, выполняет один переход и возвращает Reply со списком
// экранов, которые должен отрисовать транспорт.
package dialogue

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"travel-wallet/internal/rates"
	"travel-wallet/internal/service"
	"travel-wallet/internal/storages"
)

// CurrencyResolver определяет валюту по названию страны
type CurrencyResolver interface {
	Resolve(country string) (string, bool)
}

// TokenIssuer выпускает токены доступа к API
type TokenIssuer interface {
	GenerateToken(userID int64) (string, error)
}

// Input событие от пользователя
type Input struct {
	UserID int64
	Text   string
	// MessageID сообщение пользователя или, для нажатия кнопки, сообщение с кнопкой
	MessageID int
	Callback  bool
}

// Machine конечный автомат диалога
type Machine struct {
	states       storages.StateStore
	trips        *service.TripService
	rates        rates.Provider
	currencies   CurrencyResolver
	tokens       TokenIssuer
	historyLimit int
	logger       *logrus.Logger
}

// NewMachine создает автомат; tokens может быть nil, тогда выдача токенов недоступна
func NewMachine(
	states storages.StateStore,
	trips *service.TripService,
	provider rates.Provider,
	currencies CurrencyResolver,
	tokens TokenIssuer,
	historyLimit int,
	logger *logrus.Logger,
) *Machine {
	if historyLimit <= 0 {
		historyLimit = 20
	}
	return &Machine{
		states:       states,
		trips:        trips,
		rates:        provider,
		currencies:   currencies,
		tokens:       tokens,
		historyLimit: historyLimit,
		logger:       logger,
	}
}

// HandleText единая точка разбора свободного текста.
// Команды сюда не попадают: текст, начинающийся с "/", игнорируется.
func (m *Machine) HandleText(ctx context.Context, in Input) Reply {
	text := strings.TrimSpace(in.Text)
	if text == "" || strings.HasPrefix(text, "/") {
		return Reply{}
	}
	in.Text = text

	state, err := m.load(ctx, in.UserID)
	if err != nil {
		return m.fail(in)
	}

	switch state.Step {
	case StepAwaitingOriginCountry:
		return m.handleOrigin(ctx, in)
	case StepAwaitingDestinationCountry:
		return m.handleDestination(ctx, in, state)
	case StepAwaitingManualRate:
		return m.handleManualRate(ctx, in, state)
	case StepAwaitingInitialAmount:
		return m.handleInitialAmount(ctx, in, state)
	case StepAwaitingNewRate:
		return m.handleNewRate(ctx, in, state)
	default:
		// новое число во время подтверждения заменяет ожидающий расход
		return m.proposeExpense(ctx, in)
	}
}

// Start сбрасывает диалог и показывает главное меню
func (m *Machine) Start(ctx context.Context, in Input) Reply {
	m.clear(ctx, in.UserID)

	view, err := m.menuView(ctx, in.UserID)
	if err != nil {
		return m.fail(in)
	}

	var r Reply
	r.showMenu(view)
	return r
}

// Cancel прерывает незавершенный диалог
func (m *Machine) Cancel(ctx context.Context, in Input) Reply {
	var r Reply

	stored, err := m.states.GetDialogueState(ctx, in.UserID)
	if err != nil {
		m.logger.Errorf("Failed to get dialogue state: UserID=%d: %v", in.UserID, err)
		return m.fail(in)
	}
	if stored == nil {
		r.send(View{Screen: ScreenNothingToCancel})
		return r
	}

	if err := m.states.ClearDialogueState(ctx, in.UserID); err != nil {
		m.logger.Errorf("Failed to clear dialogue state: UserID=%d: %v", in.UserID, err)
		return m.fail(in)
	}

	m.logger.Infof("Dialogue cancelled: UserID=%d, step=%s", in.UserID, stored.Step)
	r.send(View{Screen: ScreenCancelled})

	if view, err := m.menuView(ctx, in.UserID); err == nil {
		r.showMenu(view)
	}
	return r
}

// BackToMenu возвращает главное меню на место текущего экрана
func (m *Machine) BackToMenu(ctx context.Context, in Input) Reply {
	view, err := m.menuView(ctx, in.UserID)
	if err != nil {
		return m.fail(in)
	}

	var r Reply
	r.present(in, view)
	return r
}

// Help показывает справку по командам
func (m *Machine) Help(ctx context.Context, in Input) Reply {
	var r Reply
	r.send(View{Screen: ScreenHelp})
	return r
}

// IssueAPIToken выпускает токен для HTTP API
func (m *Machine) IssueAPIToken(ctx context.Context, in Input) Reply {
	if m.tokens == nil {
		return m.fail(in)
	}

	token, err := m.tokens.GenerateToken(in.UserID)
	if err != nil {
		m.logger.Errorf("Failed to generate API token: UserID=%d: %v", in.UserID, err)
		return m.fail(in)
	}

	var r Reply
	r.send(View{Screen: ScreenAPIToken, Token: token})
	return r
}

// RememberMenu запоминает сообщение главного меню для последующего обновления на месте
func (m *Machine) RememberMenu(ctx context.Context, userID int64, messageID int) error {
	if messageID == 0 {
		return nil
	}
	return m.states.SaveMenuMessage(ctx, userID, messageID)
}

// load читает состояние; поврежденное состояние сбрасывается
func (m *Machine) load(ctx context.Context, userID int64) (State, error) {
	stored, err := m.states.GetDialogueState(ctx, userID)
	if err != nil {
		m.logger.Errorf("Failed to get dialogue state: UserID=%d: %v", userID, err)
		return State{}, err
	}

	state, err := decodeState(stored)
	if err != nil {
		m.logger.Errorf("Dropping dialogue state: UserID=%d: %v", userID, err)
		m.clear(ctx, userID)
		return State{}, err
	}
	return state, nil
}

func (m *Machine) save(ctx context.Context, userID int64, state State) error {
	stored, err := encodeState(userID, state)
	if err != nil {
		m.logger.Errorf("Failed to encode dialogue state: UserID=%d: %v", userID, err)
		return err
	}

	if err := m.states.SetDialogueState(ctx, stored); err != nil {
		m.logger.Errorf("Failed to save dialogue state: UserID=%d, step=%s: %v", userID, state.Step, err)
		return err
	}

	m.logger.Debugf("Dialogue step: UserID=%d, step=%s", userID, state.Step)
	return nil
}

func (m *Machine) clear(ctx context.Context, userID int64) {
	if err := m.states.ClearDialogueState(ctx, userID); err != nil {
		m.logger.Errorf("Failed to clear dialogue state: UserID=%d: %v", userID, err)
	}
}

// menuView собирает главное меню; поездки может не быть
func (m *Machine) menuView(ctx context.Context, userID int64) (View, error) {
	view := View{Screen: ScreenMainMenu}

	overview, err := m.trips.Overview(ctx, userID)
	if errors.Is(err, storages.ErrNotFound) {
		return view, nil
	}
	if err != nil {
		m.logger.Errorf("Failed to get trip overview: UserID=%d: %v", userID, err)
		return view, err
	}

	view.Trip = overview.Trip
	view.Totals = overview.Totals
	return view, nil
}

// refreshMenu обновляет сохраненное главное меню или отправляет новое
func (m *Machine) refreshMenu(ctx context.Context, r *Reply, userID int64, sendIfMissing bool) {
	view, err := m.menuView(ctx, userID)
	if err != nil {
		return
	}

	menuID, err := m.states.GetMenuMessage(ctx, userID)
	if err != nil {
		m.logger.Warnf("Failed to get menu message: UserID=%d: %v", userID, err)
	}

	switch {
	case menuID != 0:
		r.edit(menuID, view)
	case sendIfMissing:
		r.showMenu(view)
	}
}

// fail сообщает об общей ошибке, не меняя состояние
func (m *Machine) fail(in Input) Reply {
	var r Reply
	if in.Callback {
		r.alert(View{Screen: ScreenFailure})
	} else {
		r.send(View{Screen: ScreenFailure})
	}
	return r
}

// noActiveTrip ответ на действие, которому нужна активная поездка
func (m *Machine) noActiveTrip(ctx context.Context, in Input) Reply {
	var r Reply
	if in.Callback {
		r.alert(View{Screen: ScreenNoActiveTrip})
		r.send(View{Screen: ScreenNoActiveTrip})
		return r
	}

	view, err := m.menuView(ctx, in.UserID)
	if err != nil {
		return m.fail(in)
	}
	r.showMenu(view)
	return r
}
