package telegram

import (
	"fmt"

	"github.com/go-telegram/bot/models"

	"travel-wallet/internal/storages"
)

// Callback data
const (
	cbNewTrip       = "new_trip"
	cbMyTrips       = "my_trips"
	cbBalance       = "balance"
	cbHistory       = "history"
	cbSetRate       = "set_rate"
	cbBackToMenu    = "back_to_menu"
	cbExpenseYes    = "expense_yes"
	cbExpenseNo     = "expense_no"
	cbSwitchTrip    = "switch_trip"
	cbViewTrip      = "view_trip"
	cbDeleteTrip    = "delete_trip"
	cbConfirmDelete = "confirm_delete"
)

func withTrip(action string, tripID int64) string {
	return fmt.Sprintf("%s|%d", action, tripID)
}

// mainMenuKeyboard возвращает клавиатуру главного меню
func mainMenuKeyboard() models.ReplyMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "✈️ Создать новое путешествие", CallbackData: cbNewTrip}},
			{{Text: "📋 Мои путешествия", CallbackData: cbMyTrips}},
			{{Text: "💰 Баланс", CallbackData: cbBalance}},
			{{Text: "📊 История расходов", CallbackData: cbHistory}},
			{{Text: "💱 Изменить курс", CallbackData: cbSetRate}},
		},
	}
}

// tripListKeyboard строка на каждую поездку: просмотр или активация и удаление
func tripListKeyboard(trips []storages.Trip) models.ReplyMarkup {
	rows := make([][]models.InlineKeyboardButton, 0, len(trips)+1)

	for _, trip := range trips {
		route := fmt.Sprintf("%s → %s", trip.HomeCountry, trip.DestCountry)

		open := models.InlineKeyboardButton{Text: "🔄 " + route, CallbackData: withTrip(cbSwitchTrip, trip.ID)}
		if trip.Active {
			open = models.InlineKeyboardButton{Text: "👁 " + route, CallbackData: withTrip(cbViewTrip, trip.ID)}
		}

		rows = append(rows, []models.InlineKeyboardButton{
			open,
			{Text: "🗑", CallbackData: withTrip(cbDeleteTrip, trip.ID)},
		})
	}

	rows = append(rows, []models.InlineKeyboardButton{{Text: "🔙 Назад", CallbackData: cbBackToMenu}})
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func backKeyboard(text, data string) models.ReplyMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: text, CallbackData: data}},
		},
	}
}

func expenseConfirmKeyboard() models.ReplyMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "✅ Да", CallbackData: cbExpenseYes}},
			{{Text: "❌ Нет", CallbackData: cbExpenseNo}},
		},
	}
}

func confirmDeleteKeyboard(tripID int64) models.ReplyMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "✅ Да, удалить", CallbackData: withTrip(cbConfirmDelete, tripID)}},
			{{Text: "❌ Отмена", CallbackData: cbMyTrips}},
		},
	}
}
