package telegram

import (
	"context"
	"errors"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travel-wallet/internal/currency"
	"travel-wallet/internal/dialogue"
	"travel-wallet/internal/logger"
	"travel-wallet/internal/rates"
	"travel-wallet/internal/service"
	"travel-wallet/internal/storages"
	"travel-wallet/internal/storages/memory"
	"travel-wallet/internal/storages/storagetest"
)

const chatID int64 = 99

type fakeMessenger struct {
	nextID  int
	sent    []*bot.SendMessageParams
	edited  []*bot.EditMessageTextParams
	deleted []int
	answers []*bot.AnswerCallbackQueryParams
	editErr error
}

func (f *fakeMessenger) SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	f.nextID++
	f.sent = append(f.sent, params)
	return &models.Message{ID: 500 + f.nextID}, nil
}

func (f *fakeMessenger) EditMessageText(ctx context.Context, params *bot.EditMessageTextParams) (*models.Message, error) {
	if f.editErr != nil {
		return nil, f.editErr
	}
	f.edited = append(f.edited, params)
	return &models.Message{ID: params.MessageID}, nil
}

func (f *fakeMessenger) DeleteMessage(ctx context.Context, params *bot.DeleteMessageParams) (bool, error) {
	f.deleted = append(f.deleted, params.MessageID)
	return true, nil
}

func (f *fakeMessenger) AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error) {
	f.answers = append(f.answers, params)
	return true, nil
}

type fixture struct {
	bot   *Bot
	out   *fakeMessenger
	store *memory.MemoryStorage
	trips *service.TripService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logger.Discard()
	store := memory.New(log)
	trips := service.NewTripService(store, nil, log)
	machine := dialogue.NewMachine(store, trips, rates.Unavailable{}, currency.Resolver{}, nil, 20, log)
	out := &fakeMessenger{}

	return &fixture{
		bot:   &Bot{out: out, machine: machine, logger: log},
		out:   out,
		store: store,
		trips: trips,
	}
}

func textUpdate(userID int64, messageID int, text string) *models.Update {
	return &models.Update{Message: &models.Message{
		ID:   messageID,
		From: &models.User{ID: userID},
		Chat: models.Chat{ID: chatID},
		Text: text,
	}}
}

func callbackUpdate(userID int64, messageID int, data string) *models.Update {
	return &models.Update{CallbackQuery: &models.CallbackQuery{
		ID:   "cb",
		From: models.User{ID: userID},
		Data: data,
		Message: models.MaybeInaccessibleMessage{
			Message: &models.Message{ID: messageID, Chat: models.Chat{ID: chatID}},
		},
	}}
}

func inlineData(t *testing.T, markup models.ReplyMarkup) []string {
	t.Helper()
	kb, ok := markup.(*models.InlineKeyboardMarkup)
	require.True(t, ok, "expected inline keyboard")

	var data []string
	for _, row := range kb.InlineKeyboard {
		for _, button := range row {
			data = append(data, button.CallbackData)
		}
	}
	return data
}

func TestExpenseFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	trip := storagetest.NewTrip(1)
	require.NoError(t, f.trips.CreateTrip(ctx, trip, 10000))

	f.bot.handleCommand("start", f.bot.machine.Start)(ctx, nil, textUpdate(1, 1, "/start"))
	require.Len(t, f.out.sent, 1)
	assert.Contains(t, f.out.sent[0].Text, "Россия (RUB) → США (USD)")
	assert.Equal(t, chatID, f.out.sent[0].ChatID)

	menuID, err := f.store.GetMenuMessage(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 501, menuID)

	f.bot.handleMessage(ctx, nil, textUpdate(1, 10, "20"))
	require.Len(t, f.out.sent, 2)
	confirm := f.out.sent[1]
	assert.Contains(t, confirm.Text, "$20.00")
	assert.Equal(t, []string{cbExpenseYes, cbExpenseNo}, inlineData(t, confirm.ReplyMarkup))

	f.bot.handleCallback(ctx, nil, callbackUpdate(1, 502, cbExpenseYes))
	assert.Equal(t, []int{10, 502}, f.out.deleted)
	require.Len(t, f.out.edited, 1)
	assert.Equal(t, 501, f.out.edited[0].MessageID)
	assert.Contains(t, f.out.edited[0].Text, "$90.00")

	require.Len(t, f.out.answers, 1)
	assert.Equal(t, "✅ Расход учтен: $20.00", f.out.answers[0].Text)
	assert.False(t, f.out.answers[0].ShowAlert)
}

func TestEditFailureFallsBackToSend(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.out.editErr = errors.New("message to edit not found")

	f.bot.handleCallback(ctx, nil, callbackUpdate(1, 40, cbBackToMenu))

	require.Len(t, f.out.sent, 1)
	assert.Equal(t, []string{cbNewTrip, cbMyTrips, cbBalance, cbHistory, cbSetRate}, inlineData(t, f.out.sent[0].ReplyMarkup))

	menuID, err := f.store.GetMenuMessage(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 501, menuID)
	assert.Len(t, f.out.answers, 1)
}

func TestEditedMenuIsRemembered(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.bot.handleCallback(ctx, nil, callbackUpdate(1, 40, cbBackToMenu))
	require.Len(t, f.out.edited, 1)

	menuID, err := f.store.GetMenuMessage(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 40, menuID)
}

func TestCallbackAnsweredOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.bot.handleCallback(ctx, nil, callbackUpdate(1, 40, cbSetRate))

	require.Len(t, f.out.answers, 1)
	assert.Equal(t, "У вас нет активного путешествия", f.out.answers[0].Text)
	require.Len(t, f.out.sent, 1)
	assert.Contains(t, f.out.sent[0].Text, "Создайте новое")
}

func TestUnknownCallbacks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, data := range []string{"bogus", "switch_trip|abc", "nope|1"} {
		f.bot.handleCallback(ctx, nil, callbackUpdate(1, 40, data))
	}

	assert.Len(t, f.out.answers, 3)
	for _, a := range f.out.answers {
		assert.Empty(t, a.Text)
	}
	assert.Empty(t, f.out.sent)
	assert.Empty(t, f.out.edited)
}

func TestInaccessibleCallbackMessage(t *testing.T) {
	f := newFixture(t)
	update := &models.Update{CallbackQuery: &models.CallbackQuery{ID: "cb", From: models.User{ID: 1}, Data: cbBalance}}

	f.bot.handleCallback(context.Background(), nil, update)
	assert.Len(t, f.out.answers, 1)
	assert.Empty(t, f.out.sent)
}

func TestUnknownCommandShowsHelp(t *testing.T) {
	f := newFixture(t)

	f.bot.handleMessage(context.Background(), nil, textUpdate(1, 10, "/unknown"))
	require.Len(t, f.out.sent, 1)
	assert.Contains(t, f.out.sent[0].Text, "/newtrip")
}

func TestTripCreationThroughCommands(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.bot.handleCommand("newtrip", f.bot.machine.StartTrip)(ctx, nil, textUpdate(1, 1, "/newtrip"))
	for i, text := range []string{"Россия", "США", "0.011", "10000"} {
		f.bot.handleMessage(ctx, nil, textUpdate(1, 2+i, text))
	}

	last := f.out.sent[len(f.out.sent)-1]
	assert.Contains(t, last.Text, "Путешествие создано")
	assert.Contains(t, last.Text, "$110.00")

	trip, err := f.trips.ActiveTrip(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "USD", trip.DestCurrency)
}

func TestRenderMainMenu(t *testing.T) {
	text, markup := render(dialogue.View{Screen: dialogue.ScreenMainMenu})
	assert.Contains(t, text, "У вас нет активного путешествия")
	assert.NotNil(t, markup)

	trip := &storages.Trip{
		HomeCountry: "Россия", DestCountry: "США",
		HomeCurrency: "RUB", DestCurrency: "USD",
		Rate: 0.011, BalanceHome: 8181.82, BalanceDest: 90,
	}
	text, _ = render(dialogue.View{
		Screen: dialogue.ScreenMainMenu,
		Trip:   trip,
		Totals: &storages.ExpenseTotals{Home: 1818.18, Dest: 20},
	})
	assert.Contains(t, text, "💸 Потрачено: $20.00")
	assert.Contains(t, text, "💰 Остаток: $90.00")
	assert.Contains(t, text, "в валюте USD")
}

func TestRenderTripList(t *testing.T) {
	trips := []storages.Trip{
		{ID: 2, HomeCountry: "Россия", DestCountry: "Китай", Active: true},
		{ID: 1, HomeCountry: "Россия", DestCountry: "США"},
	}

	_, markup := render(dialogue.View{Screen: dialogue.ScreenTripList, Trips: trips})
	assert.Equal(t, []string{
		"view_trip|2", "delete_trip|2",
		"switch_trip|1", "delete_trip|1",
		cbBackToMenu,
	}, inlineData(t, markup))
}

func TestRenderRates(t *testing.T) {
	text, _ := render(dialogue.View{
		Screen: dialogue.ScreenRateFound,
		Draft:  &dialogue.Draft{HomeCurrency: "RUB", DestCountry: "США", DestCurrency: "USD", Rate: 0.011, HasRate: true},
	})
	assert.Contains(t, text, "1 RUB = 0.011000 USD")

	_, markup := render(dialogue.View{Screen: dialogue.ScreenAskOrigin})
	assert.Nil(t, markup)
}

func TestRenderEmptyHistory(t *testing.T) {
	text, _ := render(dialogue.View{
		Screen: dialogue.ScreenHistory,
		Trip:   storagetest.NewTrip(1),
		Totals: &storages.ExpenseTotals{},
	})
	assert.Contains(t, text, "История расходов пуста")
}

func TestAlertText(t *testing.T) {
	text, show := alertText(dialogue.View{Screen: dialogue.ScreenInsufficientFunds})
	assert.Equal(t, "Недостаточно средств!", text)
	assert.True(t, show)

	_, show = alertText(dialogue.View{Screen: dialogue.ScreenTripSwitched})
	assert.False(t, show)

	text, _ = render(dialogue.View{Screen: dialogue.ScreenTripNotFound})
	assert.Equal(t, "Путешествие не найдено", text)
}
