package expense

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memoryRepository struct {
	mu       sync.RWMutex
	expenses []Expense
}

// NewMemoryRepository constructs an in-memory expense store for development and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{}
}

func (r *memoryRepository) Create(_ context.Context, e Expense) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expenses = append(r.expenses, e)
	return nil
}

func (r *memoryRepository) CountByMerchantSince(_ context.Context, userID, merchantName string, since time.Time) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, e := range r.expenses {
		if e.UserID == userID && e.MerchantName == merchantName && !e.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *memoryRepository) ListBetween(_ context.Context, userID string, from, to time.Time) ([]Expense, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Expense
	for _, e := range r.expenses {
		if e.UserID == userID && !e.CreatedAt.Before(from) && e.CreatedAt.Before(to) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memoryRepository) Recent(_ context.Context, userID string, limit int) ([]Expense, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Expense
	for _, e := range r.expenses {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memoryRepository) ByTransactionIDs(_ context.Context, txIDs []string) (map[string]Expense, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	want := make(map[string]struct{}, len(txIDs))
	for _, id := range txIDs {
		want[id] = struct{}{}
	}
	out := make(map[string]Expense)
	for _, e := range r.expenses {
		if _, ok := want[e.TransactionID]; ok && e.TransactionID != "" {
			out[e.TransactionID] = e
		}
	}
	return out, nil
}
