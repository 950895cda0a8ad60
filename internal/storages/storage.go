package storages

import "context"

// Ledger определяет операции над поездками и расходами.
// Реализация обязана выполнять списание и запись расхода атомарно
// и сериализовать изменения балансов одной поездки.
type Ledger interface {
	// CreateTrip деактивирует остальные поездки пользователя и создает активную.
	// trip.Rate должен быть положительным; балансы вычисляются из initialAmount.
	CreateTrip(ctx context.Context, trip *Trip, initialAmount float64) error
	GetActiveTrip(ctx context.Context, userID int64) (*Trip, error)
	GetTrip(ctx context.Context, userID, tripID int64) (*Trip, error)
	// ListTrips возвращает поездки пользователя, новые первыми
	ListTrips(ctx context.Context, userID int64) ([]Trip, error)
	SwitchActiveTrip(ctx context.Context, userID, tripID int64) error
	DeleteTrip(ctx context.Context, userID, tripID int64) error

	RecordExpense(ctx context.Context, tripID int64, amountDest, amountHome float64, description string) (*Expense, error)
	// UpdateRate пересчитывает домашний баланс из баланса в валюте назначения
	UpdateRate(ctx context.Context, tripID int64, newRate float64) (*Trip, error)
	// ListExpenses возвращает не более limit последних расходов, новые первыми;
	// при limit <= 0 результат пустой
	ListExpenses(ctx context.Context, tripID int64, limit int) ([]Expense, error)
	TotalExpenses(ctx context.Context, tripID int64) (*ExpenseTotals, error)

	Ping(ctx context.Context) error
	Close() error
}

// StateStore хранит состояние диалога и ссылку на сообщение главного меню
type StateStore interface {
	// GetDialogueState возвращает nil без ошибки, если состояния нет
	GetDialogueState(ctx context.Context, userID int64) (*DialogueState, error)
	SetDialogueState(ctx context.Context, state *DialogueState) error
	ClearDialogueState(ctx context.Context, userID int64) error

	SaveMenuMessage(ctx context.Context, userID int64, messageID int) error
	// GetMenuMessage возвращает 0 без ошибки, если меню еще не отправлялось
	GetMenuMessage(ctx context.Context, userID int64) (int, error)
}
