package wallet

import (
	"context"
	"fmt"
	"sync"

	"auction-rooms/internal/auctionerrors"
)

// WalletService provides the available balance used for funds checks
type WalletService interface {
	GetAvailableBalance(ctx context.Context, userID string) (float64, error)
}

// MemoryWallet is a concurrency-safe in-memory implementation of WalletService
type MemoryWallet struct {
	mu       sync.RWMutex
	balances map[string]float64 // key: userID -> value: available balance
}

// NewMemoryWallet creates a new in-memory wallet instance
func NewMemoryWallet() *MemoryWallet {
	return &MemoryWallet{balances: make(map[string]float64)}
}

// GetAvailableBalance returns the available balance for a user
func (w *MemoryWallet) GetAvailableBalance(_ context.Context, userID string) (float64, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	balance, ok := w.balances[userID]
	if !ok {
		return 0, fmt.Errorf("get balance for user %s: %w", userID, auctionerrors.ErrInvalidData)
	}
	return balance, nil
}

// SetBalance sets a user's available balance. This method is intended for tests and bootstrap only.
func (w *MemoryWallet) SetBalance(userID string, balance float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.balances[userID] = balance
}
