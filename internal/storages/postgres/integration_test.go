//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"travel-wallet/internal/logger"
	"travel-wallet/internal/storages"
	"travel-wallet/internal/storages/storagetest"
)

func setupTestDatabase(t *testing.T) (*PostgresStorage, *Config) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		Env: map[string]string{
			"POSTGRES_DB":       "travel_wallet",
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
		},
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	var portNum int
	_, err = fmt.Sscanf(port.Port(), "%d", &portNum)
	require.NoError(t, err)

	cfg := &Config{
		Host:            host,
		Port:            portNum,
		User:            "test",
		Password:        "test",
		DBName:          "travel_wallet",
		SSLMode:         "disable",
		MaxOpenConns:    10,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Minute,
	}

	storage, err := New(cfg, logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { storage.Close() })

	return storage, cfg
}

func TestPostgresIntegration(t *testing.T) {
	storage, cfg := setupTestDatabase(t)

	truncate := func(t *testing.T) {
		_, err := storage.db.Exec(`TRUNCATE trips, expenses, user_states, user_menu_messages RESTART IDENTITY CASCADE`)
		require.NoError(t, err)
	}

	storagetest.RunLedger(t, func(t *testing.T) storages.Ledger {
		truncate(t)
		return storage
	})

	storagetest.RunStateStore(t, func(t *testing.T) storages.StateStore {
		truncate(t)
		return storage
	})

	// повторный запуск миграций ничего не применяет
	require.NoError(t, RunMigrations(cfg.DSN(), logger.Discard()))
}
