package ledger

import "github.com/shopspring/decimal"

// SeedBalance sets the balance of a wallet when using the in-memory ledger.
func SeedBalance(l Ledger, walletID string, amount decimal.Decimal) {
	if mem, ok := l.(*inMemoryLedger); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		mem.balances[walletID] = amount
	}
}

// TransactionCount reports how many transactions an in-memory ledger holds.
func TransactionCount(l Ledger) int {
	if mem, ok := l.(*inMemoryLedger); ok {
		mem.mu.RLock()
		defer mem.mu.RUnlock()
		return len(mem.transactions)
	}
	return -1
}
