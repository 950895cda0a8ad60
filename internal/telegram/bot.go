// Package telegram связывает Telegram Bot API с автоматом диалога.
package telegram

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/sirupsen/logrus"

	"travel-wallet/internal/dialogue"
)

// messenger методы Bot API, которые использует адаптер
type messenger interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	EditMessageText(ctx context.Context, params *bot.EditMessageTextParams) (*models.Message, error)
	DeleteMessage(ctx context.Context, params *bot.DeleteMessageParams) (bool, error)
	AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error)
}

// Config параметры подключения к Telegram
type Config struct {
	Token string
	Debug bool
}

// Bot Telegram-транспорт автомата диалога
type Bot struct {
	api     *bot.Bot
	out     messenger
	machine *dialogue.Machine
	logger  *logrus.Logger
}

// New создает бота и регистрирует обработчики
func New(cfg Config, machine *dialogue.Machine, logger *logrus.Logger) (*Bot, error) {
	if cfg.Token == "" {
		return nil, errors.New("telegram token is required")
	}

	b := &Bot{
		machine: machine,
		logger:  logger,
	}

	opts := []bot.Option{
		bot.WithDefaultHandler(b.handleMessage),
	}
	if cfg.Debug {
		opts = append(opts, bot.WithDebug())
	}

	api, err := bot.New(cfg.Token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b.api = api
	b.out = api
	b.registerHandlers()

	return b, nil
}

// Start запускает long polling и блокируется до отмены ctx
func (b *Bot) Start(ctx context.Context) error {
	me, err := b.api.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("failed to get bot info: %w", err)
	}

	b.logger.Infof("Telegram bot started: @%s (id %d)", me.Username, me.ID)
	b.api.Start(ctx)
	b.logger.Info("Telegram bot stopped")

	return nil
}

func (b *Bot) registerHandlers() {
	commands := map[string]bot.HandlerFunc{
		"/start":   b.handleCommand("start", b.machine.Start),
		"/newtrip": b.handleCommand("newtrip", b.machine.StartTrip),
		"/switch":  b.handleCommand("switch", b.machine.ShowTrips),
		"/balance": b.handleCommand("balance", b.machine.ShowBalance),
		"/history": b.handleCommand("history", b.machine.ShowHistory),
		"/setrate": b.handleCommand("setrate", b.machine.ChangeRate),
		"/cancel":  b.handleCommand("cancel", b.machine.Cancel),
		"/token":   b.handleCommand("token", b.machine.IssueAPIToken),
		"/help":    b.handleCommand("help", b.machine.Help),
	}

	for pattern, handler := range commands {
		b.api.RegisterHandler(bot.HandlerTypeMessageText, pattern, bot.MatchTypeExact, handler)
	}

	b.api.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, b.handleCallback)
}
