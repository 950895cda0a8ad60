package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// Config содержит конфигурацию для подключения к PostgreSQL
type Config struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN возвращает строку подключения lib/pq
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// PostgresStorage реализует storages.Ledger и storages.StateStore для PostgreSQL
type PostgresStorage struct {
	db     *sql.DB
	logger *logrus.Logger
}

// New подключается к PostgreSQL и применяет миграции
func New(cfg *Config, logger *logrus.Logger) (*PostgresStorage, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Successfully connected to PostgreSQL")

	if err := RunMigrations(cfg.DSN(), logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return NewWithDB(db, logger), nil
}

// NewWithDB оборачивает готовое подключение; схема должна быть уже создана
func NewWithDB(db *sql.DB, logger *logrus.Logger) *PostgresStorage {
	return &PostgresStorage{
		db:     db,
		logger: logger,
	}
}

// Close закрывает соединение с базой данных
func (s *PostgresStorage) Close() error {
	if s.db != nil {
		s.logger.Info("Closing database connection")
		return s.db.Close()
	}
	return nil
}

// Ping проверяет соединение с базой данных
func (s *PostgresStorage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
