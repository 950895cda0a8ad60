package memory

import (
	"testing"

	"travel-wallet/internal/logger"
	"travel-wallet/internal/storages"
	"travel-wallet/internal/storages/storagetest"
)

func TestMemoryLedger(t *testing.T) {
	storagetest.RunLedger(t, func(t *testing.T) storages.Ledger {
		return New(logger.Discard())
	})
}

func TestMemoryStateStore(t *testing.T) {
	storagetest.RunStateStore(t, func(t *testing.T) storages.StateStore {
		return New(logger.Discard())
	})
}
