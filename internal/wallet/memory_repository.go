package wallet

import (
	"context"
	"sync"
)

type memoryRepository struct {
	mu       sync.RWMutex
	byPublic map[string]Wallet
	byOwner  map[string]string
}

// NewMemoryRepository constructs an in-memory repository for development and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{byPublic: make(map[string]Wallet), byOwner: make(map[string]string)}
}

func ownerKey(ownerType, ownerID string) string { return ownerType + ":" + ownerID }

func (r *memoryRepository) Create(_ context.Context, wallet Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byPublic[wallet.WalletID]; exists {
		return ErrWalletIDTaken
	}
	key := ownerKey(wallet.OwnerType, wallet.OwnerID)
	if _, exists := r.byOwner[key]; exists {
		return ErrWalletExists
	}
	r.byPublic[wallet.WalletID] = wallet
	r.byOwner[key] = wallet.WalletID
	return nil
}

func (r *memoryRepository) GetByOwner(_ context.Context, ownerType, ownerID string) (Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	walletID, ok := r.byOwner[ownerKey(ownerType, ownerID)]
	if !ok {
		return Wallet{}, ErrNotFound
	}
	return r.byPublic[walletID], nil
}

func (r *memoryRepository) GetByWalletID(_ context.Context, walletID string) (Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	wallet, ok := r.byPublic[walletID]
	if !ok {
		return Wallet{}, ErrNotFound
	}
	return wallet, nil
}
