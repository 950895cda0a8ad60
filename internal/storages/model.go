package storages

import "time"

// Trip представляет поездку пользователя с парой валют и двумя балансами
type Trip struct {
	ID           int64     `db:"id" json:"id"`
	UserID       int64     `db:"user_id" json:"user_id"`
	HomeCountry  string    `db:"from_country" json:"home_country"`
	DestCountry  string    `db:"to_country" json:"dest_country"`
	HomeCurrency string    `db:"from_currency" json:"home_currency"`
	DestCurrency string    `db:"to_currency" json:"dest_currency"`
	Rate         float64   `db:"exchange_rate" json:"rate"` // единиц валюты назначения за 1 единицу домашней
	BalanceHome  float64   `db:"balance_from" json:"balance_home"`
	BalanceDest  float64   `db:"balance_to" json:"balance_dest"`
	Active       bool      `db:"is_active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Expense представляет расход в рамках поездки
type Expense struct {
	ID          int64     `db:"id" json:"id"`
	TripID      int64     `db:"trip_id" json:"trip_id"`
	AmountHome  float64   `db:"amount_from" json:"amount_home"`
	AmountDest  float64   `db:"amount_to" json:"amount_dest"`
	Description string    `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// ExpenseTotals суммы всех расходов поездки в обеих валютах
type ExpenseTotals struct {
	Home float64 `json:"home"`
	Dest float64 `json:"dest"`
}

// DialogueState состояние диалога пользователя; Payload хранится как JSON
type DialogueState struct {
	UserID    int64     `db:"user_id"`
	Step      string    `db:"state"`
	Payload   []byte    `db:"data"`
	UpdatedAt time.Time `db:"updated_at"`
}
