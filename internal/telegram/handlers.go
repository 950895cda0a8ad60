package telegram

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/sirupsen/logrus"

	"travel-wallet/internal/dialogue"
)

type entryPoint func(ctx context.Context, in dialogue.Input) dialogue.Reply

// handleCommand оборачивает точку входа автомата в обработчик команды
func (b *Bot) handleCommand(name string, fn entryPoint) bot.HandlerFunc {
	return func(ctx context.Context, _ *bot.Bot, update *models.Update) {
		msg := update.Message
		if msg == nil || msg.From == nil {
			return
		}

		commandsProcessed.WithLabelValues(name).Inc()
		b.logger.WithFields(logrus.Fields{
			"user_id": msg.From.ID,
			"command": name,
		}).Debug("Command received")

		in := dialogue.Input{UserID: msg.From.ID, Text: msg.Text, MessageID: msg.ID}
		b.apply(ctx, msg.Chat.ID, in, "", fn(ctx, in))
	}
}

// handleMessage обрабатывает все сообщения, не совпавшие с командами
func (b *Bot) handleMessage(ctx context.Context, _ *bot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Text == "" {
		return
	}

	in := dialogue.Input{UserID: msg.From.ID, Text: msg.Text, MessageID: msg.ID}

	if strings.HasPrefix(strings.TrimSpace(msg.Text), "/") {
		commandsProcessed.WithLabelValues("unknown").Inc()
		b.apply(ctx, msg.Chat.ID, in, "", b.machine.Help(ctx, in))
		return
	}

	messagesProcessed.Inc()
	b.apply(ctx, msg.Chat.ID, in, "", b.machine.HandleText(ctx, in))
}

func (b *Bot) handleCallback(ctx context.Context, _ *bot.Bot, update *models.Update) {
	cq := update.CallbackQuery
	if cq == nil {
		return
	}

	msg := cq.Message.Message
	if msg == nil {
		b.logger.Warnf("Callback without accessible message: UserID=%d, data=%s", cq.From.ID, cq.Data)
		b.answer(ctx, cq.ID, "", false)
		return
	}

	in := dialogue.Input{UserID: cq.From.ID, MessageID: msg.ID, Callback: true}
	reply, action := b.route(ctx, in, cq.Data)
	callbacksProcessed.WithLabelValues(action).Inc()

	b.apply(ctx, msg.Chat.ID, in, cq.ID, reply)
}

// route сопоставляет данные кнопки с точкой входа автомата
func (b *Bot) route(ctx context.Context, in dialogue.Input, data string) (dialogue.Reply, string) {
	action, arg, hasArg := strings.Cut(data, "|")

	switch action {
	case cbNewTrip:
		return b.machine.StartTrip(ctx, in), action
	case cbMyTrips:
		return b.machine.ShowTrips(ctx, in), action
	case cbBalance:
		return b.machine.ShowBalance(ctx, in), action
	case cbHistory:
		return b.machine.ShowHistory(ctx, in), action
	case cbSetRate:
		return b.machine.ChangeRate(ctx, in), action
	case cbBackToMenu:
		return b.machine.BackToMenu(ctx, in), action
	case cbExpenseYes:
		return b.machine.ConfirmExpense(ctx, in), action
	case cbExpenseNo:
		return b.machine.CancelExpense(ctx, in), action
	}

	if !hasArg {
		return dialogue.Reply{}, "unknown"
	}

	tripID, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		errorsTotal.WithLabelValues("bad_callback").Inc()
		b.logger.Warnf("Bad callback data: UserID=%d, data=%s", in.UserID, data)
		return dialogue.Reply{}, "unknown"
	}

	switch action {
	case cbSwitchTrip:
		return b.machine.SwitchTrip(ctx, in, tripID), action
	case cbViewTrip:
		return b.machine.ViewTrip(ctx, in, tripID), action
	case cbDeleteTrip:
		return b.machine.AskDeleteTrip(ctx, in, tripID), action
	case cbConfirmDelete:
		return b.machine.ConfirmDeleteTrip(ctx, in, tripID), action
	}

	return dialogue.Reply{}, "unknown"
}

// apply выполняет действия ответа по порядку.
// На нажатие кнопки отвечает ровно один раз: первым уведомлением или пустым ответом.
func (b *Bot) apply(ctx context.Context, chatID int64, in dialogue.Input, callbackID string, reply dialogue.Reply) {
	answered := false

	for _, d := range reply.Directives {
		if d.Action != dialogue.ActionDelete {
			track(d.View.Screen)
		}

		switch d.Action {
		case dialogue.ActionDelete:
			b.delete(ctx, chatID, d.MessageID)
		case dialogue.ActionAlert:
			if callbackID == "" {
				b.send(ctx, chatID, in.UserID, d.View)
				continue
			}
			if !answered {
				text, show := alertText(d.View)
				b.answer(ctx, callbackID, text, show)
				answered = true
			}
		case dialogue.ActionEditMenu:
			b.edit(ctx, chatID, in.UserID, d.MessageID, d.View)
		default:
			b.send(ctx, chatID, in.UserID, d.View)
		}
	}

	if callbackID != "" && !answered {
		b.answer(ctx, callbackID, "", false)
	}
}

func track(screen dialogue.Screen) {
	switch screen {
	case dialogue.ScreenTripCreated:
		tripsCreated.Inc()
	case dialogue.ScreenExpenseRecorded:
		expensesRecorded.Inc()
	case dialogue.ScreenFailure:
		errorsTotal.WithLabelValues("dialogue").Inc()
	}
}

func (b *Bot) send(ctx context.Context, chatID, userID int64, v dialogue.View) {
	text, markup := render(v)

	msg, err := b.out.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: markup,
	})
	if err != nil {
		errorsTotal.WithLabelValues("send").Inc()
		b.logger.Errorf("Failed to send %s: ChatID=%d: %v", v.Screen, chatID, err)
		return
	}

	if v.Screen == dialogue.ScreenMainMenu {
		b.remember(ctx, userID, msg.ID)
	}
}

// edit редактирует сообщение на месте; если не вышло, отправляет новое
func (b *Bot) edit(ctx context.Context, chatID, userID int64, messageID int, v dialogue.View) {
	if messageID == 0 {
		b.send(ctx, chatID, userID, v)
		return
	}

	text, markup := render(v)
	_, err := b.out.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      chatID,
		MessageID:   messageID,
		Text:        text,
		ReplyMarkup: markup,
	})
	if err != nil {
		errorsTotal.WithLabelValues("edit").Inc()
		b.logger.Warnf("Failed to edit message %d, sending new one: %v", messageID, err)
		b.send(ctx, chatID, userID, v)
		return
	}

	if v.Screen == dialogue.ScreenMainMenu {
		b.remember(ctx, userID, messageID)
	}
}

func (b *Bot) delete(ctx context.Context, chatID int64, messageID int) {
	if _, err := b.out.DeleteMessage(ctx, &bot.DeleteMessageParams{ChatID: chatID, MessageID: messageID}); err != nil {
		errorsTotal.WithLabelValues("delete").Inc()
		b.logger.Debugf("Failed to delete message %d: %v", messageID, err)
	}
}

func (b *Bot) answer(ctx context.Context, callbackID, text string, show bool) {
	_, err := b.out.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       show,
	})
	if err != nil {
		errorsTotal.WithLabelValues("answer").Inc()
		b.logger.Warnf("Failed to answer callback: %v", err)
	}
}

func (b *Bot) remember(ctx context.Context, userID int64, messageID int) {
	if err := b.machine.RememberMenu(ctx, userID, messageID); err != nil {
		b.logger.Errorf("Failed to save menu message: UserID=%d: %v", userID, err)
	}
}
