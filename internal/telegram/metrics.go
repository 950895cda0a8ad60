package telegram

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Счетчик обработанных команд по типам
	commandsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travelwallet_commands_processed_total",
			Help: "Total number of processed commands by type",
		},
		[]string{"command"},
	)

	// Счетчик нажатий на кнопки по действиям
	callbacksProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travelwallet_callbacks_processed_total",
			Help: "Total number of processed callback queries by action",
		},
		[]string{"action"},
	)

	messagesProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "travelwallet_messages_processed_total",
			Help: "Total number of processed free text messages",
		},
	)

	tripsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "travelwallet_trips_created_total",
			Help: "Total number of trips created",
		},
	)

	expensesRecorded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "travelwallet_expenses_recorded_total",
			Help: "Total number of confirmed expenses",
		},
	)

	// Счетчик ошибок по типам
	errorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travelwallet_errors_total",
			Help: "Total number of errors by type",
		},
		[]string{"type"}, // dialogue, send, edit, delete, answer, bad_callback
	)
)
