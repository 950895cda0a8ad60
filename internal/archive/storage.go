package archive

import "context"

// Store хранилище архива событий
type Store interface {
	// SaveEventBatch сохраняет пакет событий одной операцией
	SaveEventBatch(ctx context.Context, events []Event) error

	// EventsByTrip возвращает события поездки, новые первыми
	EventsByTrip(ctx context.Context, tripID int64, limit int) ([]Event, error)

	GetStatistics(ctx context.Context) (*Statistics, error)

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
