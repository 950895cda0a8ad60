package telegram

import (
	"fmt"
	"strings"

	"github.com/go-telegram/bot/models"

	"travel-wallet/internal/dialogue"
	"travel-wallet/internal/storages"
	"travel-wallet/pkg"
)

const helpText = `🧳 Travel Wallet помогает вести расходы в поездке в двух валютах.

Просто отправьте сумму в валюте страны пребывания, например "20" или "кофе 3,50", и подтвердите расход.

Команды:
/start - главное меню
/newtrip - новое путешествие
/switch - список путешествий
/balance - баланс активного путешествия
/history - история расходов
/setrate - изменить курс
/cancel - прервать текущий диалог
/token - токен для HTTP API
/help - эта справка`

func rateLine(home string, rate float64, dest string) string {
	return fmt.Sprintf("1 %s = %s %s", home, pkg.FormatRate(rate), dest)
}

func balanceLine(t *storages.Trip) string {
	return fmt.Sprintf("💰 Остаток: %s = %s",
		pkg.FormatMoney(t.BalanceDest, t.DestCurrency),
		pkg.FormatMoney(t.BalanceHome, t.HomeCurrency))
}

func tripCard(header string, t *storages.Trip) string {
	return fmt.Sprintf("%s\n\n📍 Из: %s (%s)\n📍 В: %s (%s)\n💱 Курс: %s\n\n%s",
		header,
		t.HomeCountry, t.HomeCurrency,
		t.DestCountry, t.DestCurrency,
		rateLine(t.HomeCurrency, t.Rate, t.DestCurrency),
		balanceLine(t))
}

func mainMenuText(v dialogue.View) string {
	var sb strings.Builder
	sb.WriteString("👋 Travel Wallet\n\n")

	t := v.Trip
	if t == nil {
		sb.WriteString("У вас нет активного путешествия.\nСоздайте новое путешествие!\n\nВыберите действие:")
		return sb.String()
	}

	var spentHome, spentDest float64
	if v.Totals != nil {
		spentHome, spentDest = v.Totals.Home, v.Totals.Dest
	}

	fmt.Fprintf(&sb, "📍 %s (%s) → %s (%s)\n\n", t.HomeCountry, t.HomeCurrency, t.DestCountry, t.DestCurrency)
	fmt.Fprintf(&sb, "💸 Потрачено: %s = %s\n\n",
		pkg.FormatMoney(spentDest, t.DestCurrency), pkg.FormatMoney(spentHome, t.HomeCurrency))
	fmt.Fprintf(&sb, "%s\n\n", balanceLine(t))
	fmt.Fprintf(&sb, "💡 Введите сумму расхода в валюте %s", t.DestCurrency)
	return sb.String()
}

func historyText(v dialogue.View) string {
	t := v.Trip
	if len(v.Expenses) == 0 {
		return "📊 История расходов пуста.\n\nВы еще не совершили ни одного расхода."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 История расходов (последние %d):\n\n", len(v.Expenses))
	for _, e := range v.Expenses {
		fmt.Fprintf(&sb, "📅 %s\n   %s = %s\n\n",
			e.CreatedAt.Format("02.01.2006"),
			pkg.FormatMoney(e.AmountDest, t.DestCurrency),
			pkg.FormatMoney(e.AmountHome, t.HomeCurrency))
	}

	if v.Totals != nil {
		fmt.Fprintf(&sb, "━━━━━━━━━━━━━━━━━━━━\n💸 Всего потрачено:\n%s = %s",
			pkg.FormatMoney(v.Totals.Dest, t.DestCurrency),
			pkg.FormatMoney(v.Totals.Home, t.HomeCurrency))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// render возвращает текст и клавиатуру экрана
func render(v dialogue.View) (string, models.ReplyMarkup) {
	switch v.Screen {
	case dialogue.ScreenMainMenu:
		return mainMenuText(v), mainMenuKeyboard()

	case dialogue.ScreenTripList:
		return "📋 Ваши путешествия:\n\n👁 - просмотр активного\n🔄 - активировать\n🗑 - удалить\n\nВыберите действие:",
			tripListKeyboard(v.Trips)

	case dialogue.ScreenTripDetails:
		header := "🧳 Путешествие:"
		if v.Trip.Active {
			header = "✅ Активное путешествие:"
		}
		return tripCard(header, v.Trip), backKeyboard("🔙 Назад", cbMyTrips)

	case dialogue.ScreenActiveTrip:
		return tripCard("✅ Активное путешествие:", v.Trip), backKeyboard("🔙 Назад в меню", cbBackToMenu)

	case dialogue.ScreenBalance:
		return tripCard("💰 Баланс путешествия:", v.Trip), backKeyboard("🔙 Назад", cbBackToMenu)

	case dialogue.ScreenHistory:
		return historyText(v), backKeyboard("🔙 Назад", cbBackToMenu)

	case dialogue.ScreenHelp:
		return helpText, nil

	case dialogue.ScreenAskOrigin:
		return "✈️ Создание нового путешествия\n\nВведите страну отправления (например: Россия, USA, Китай):", nil

	case dialogue.ScreenUnknownOrigin:
		return fmt.Sprintf("❌ Не удалось определить валюту для страны '%s'.\n"+
			"Пожалуйста, введите название страны еще раз (например: Россия, USA, Китай):", v.Input), nil

	case dialogue.ScreenAskDestination:
		return fmt.Sprintf("✅ Страна отправления: %s (%s)\n\nТеперь введите страну назначения:",
			v.Draft.HomeCountry, v.Draft.HomeCurrency), nil

	case dialogue.ScreenUnknownDest:
		return fmt.Sprintf("❌ Не удалось определить валюту для страны '%s'.\n"+
			"Пожалуйста, введите название страны еще раз:", v.Input), nil

	case dialogue.ScreenSameCurrency:
		return "❌ Валюты стран отправления и назначения совпадают!\nПожалуйста, выберите разные страны.", nil

	case dialogue.ScreenAskManualRate:
		return fmt.Sprintf("❌ Не удалось получить курс обмена через API.\n"+
			"Пожалуйста, введите курс вручную: сколько %s за 1 %s (например: 0.011):",
			v.Draft.DestCurrency, v.Draft.HomeCurrency), nil

	case dialogue.ScreenRateFound:
		d := v.Draft
		return fmt.Sprintf("✅ Страна назначения: %s (%s)\n💱 Курс: %s\n\n"+
			"Введите начальную сумму в валюте %s (вашей домашней валюте):",
			d.DestCountry, d.DestCurrency, rateLine(d.HomeCurrency, d.Rate, d.DestCurrency), d.HomeCurrency), nil

	case dialogue.ScreenAskInitialAmount:
		d := v.Draft
		return fmt.Sprintf("✅ Курс установлен: %s\n\nВведите начальную сумму в валюте %s (вашей домашней валюте):",
			rateLine(d.HomeCurrency, d.Rate, d.DestCurrency), d.HomeCurrency), nil

	case dialogue.ScreenInvalidRate:
		return "❌ Неверный формат курса. Введите положительное число (например: 0.08):", nil

	case dialogue.ScreenInvalidAmount:
		return "❌ Неверный формат суммы. Введите положительное число:", nil

	case dialogue.ScreenTripCreated:
		t := v.Trip
		return fmt.Sprintf("✅ Путешествие создано!\n\n📍 %s (%s) → %s (%s)\n💰 Начальный баланс: %s = %s",
			t.HomeCountry, t.HomeCurrency, t.DestCountry, t.DestCurrency,
			pkg.FormatMoney(v.Amount, t.HomeCurrency), pkg.FormatMoney(v.Converted, t.DestCurrency)), nil

	case dialogue.ScreenTripExists:
		return "❌ Путешествие по этому маршруту уже существует.\n" +
			"Переключитесь на него в /switch или прервите создание командой /cancel.", nil

	case dialogue.ScreenConfirmExpense:
		t, p := v.Trip, v.Pending
		return fmt.Sprintf("💸 Расход: %s = %s\n\nУчесть как расход?",
			pkg.FormatMoney(p.AmountDest, t.DestCurrency), pkg.FormatMoney(p.AmountHome, t.HomeCurrency)),
			expenseConfirmKeyboard()

	case dialogue.ScreenAskNewRate:
		t := v.Trip
		return fmt.Sprintf("💱 Изменение курса обмена\n\nТекущий курс: %s\n\nВведите новый курс (сколько %s за 1 %s):",
			rateLine(t.HomeCurrency, t.Rate, t.DestCurrency), t.DestCurrency, t.HomeCurrency), nil

	case dialogue.ScreenRateUpdated:
		t := v.Trip
		return fmt.Sprintf("✅ Курс обновлен!\n\nНовый курс: %s\n\n%s",
			rateLine(t.HomeCurrency, t.Rate, t.DestCurrency), balanceLine(t)), nil

	case dialogue.ScreenNoActiveTrip:
		return "❌ У вас нет активного путешествия. Создайте новое!", mainMenuKeyboard()

	case dialogue.ScreenConfirmDelete:
		t := v.Trip
		return fmt.Sprintf("⚠️ Подтвердите удаление путешествия:\n\n📍 Из: %s (%s)\n📍 В: %s (%s)\n"+
			"💰 Баланс: %s = %s\n\nЭто действие нельзя отменить!",
			t.HomeCountry, t.HomeCurrency, t.DestCountry, t.DestCurrency,
			pkg.FormatMoney(t.BalanceDest, t.DestCurrency), pkg.FormatMoney(t.BalanceHome, t.HomeCurrency)),
			confirmDeleteKeyboard(t.ID)

	case dialogue.ScreenCancelled:
		return "❎ Действие отменено.", nil

	case dialogue.ScreenNothingToCancel:
		return "Нечего отменять.", nil

	case dialogue.ScreenAPIToken:
		return "🔑 Токен для HTTP API:\n\n" + v.Token + "\n\nПередавайте его в заголовке Authorization: Bearer <token>.", nil
	}

	// экраны-уведомления, попавшие в обычное сообщение
	text, _ := alertText(v)
	return text, nil
}

// alertText текст ответа на нажатие кнопки и нужно ли показывать его окном
func alertText(v dialogue.View) (string, bool) {
	switch v.Screen {
	case dialogue.ScreenExpenseRecorded:
		if v.Trip != nil && v.Pending != nil {
			return "✅ Расход учтен: " + pkg.FormatMoney(v.Pending.AmountDest, v.Trip.DestCurrency), false
		}
		return "✅ Расход учтен", false
	case dialogue.ScreenExpenseCancelled:
		return "❌ Расход не учтен", false
	case dialogue.ScreenInsufficientFunds:
		return "Недостаточно средств!", true
	case dialogue.ScreenNoActiveTrip:
		return "У вас нет активного путешествия", false
	case dialogue.ScreenNoTrips:
		return "У вас пока нет путешествий", false
	case dialogue.ScreenTripNotFound:
		return "Путешествие не найдено", true
	case dialogue.ScreenTripSwitched:
		return "✅ Путешествие активировано!", false
	case dialogue.ScreenTripDeleted:
		return "✅ Путешествие удалено", false
	case dialogue.ScreenStateLost:
		return "Ошибка: состояние не найдено", false
	case dialogue.ScreenFailure:
		return "❌ Что-то пошло не так. Попробуйте еще раз.", true
	}
	return "", false
}
