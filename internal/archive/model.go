// Package archive описывает события по поездкам и их хранилище.
package archive

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Типы событий
const (
	EventTripCreated     = "trip_created"
	EventTripSwitched    = "trip_switched"
	EventTripDeleted     = "trip_deleted"
	EventRateUpdated     = "rate_updated"
	EventExpenseRecorded = "expense_recorded"
)

// Event событие изменения поездки
type Event struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Type         string             `bson:"type" json:"type"`
	UserID       int64              `bson:"user_id" json:"user_id"`
	TripID       int64              `bson:"trip_id" json:"trip_id"`
	HomeCurrency string             `bson:"home_currency,omitempty" json:"home_currency,omitempty"`
	DestCurrency string             `bson:"dest_currency,omitempty" json:"dest_currency,omitempty"`
	Rate         float64            `bson:"rate,omitempty" json:"rate,omitempty"`
	AmountHome   float64            `bson:"amount_home,omitempty" json:"amount_home,omitempty"`
	AmountDest   float64            `bson:"amount_dest,omitempty" json:"amount_dest,omitempty"`
	BalanceHome  float64            `bson:"balance_home" json:"balance_home"`
	BalanceDest  float64            `bson:"balance_dest" json:"balance_dest"`
	OccurredAt   time.Time          `bson:"occurred_at" json:"occurred_at"`
	ArchivedAt   time.Time          `bson:"archived_at" json:"-"`
}

// Statistics сводка по архиву
type Statistics struct {
	TotalEvents      int64     `bson:"total_events" json:"total_events"`
	TripsCreated     int64     `bson:"trips_created" json:"trips_created"`
	ExpensesRecorded int64     `bson:"expenses_recorded" json:"expenses_recorded"`
	RateUpdates      int64     `bson:"rate_updates" json:"rate_updates"`
	LastOccurredAt   time.Time `bson:"last_occurred_at" json:"last_occurred_at"`
}
