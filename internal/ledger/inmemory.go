package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type inMemoryLedger struct {
	mu           sync.RWMutex
	balances     map[string]decimal.Decimal
	transactions []Transaction
	now          func() time.Time
}

// NewInMemory creates a concurrency-safe in-memory ledger for development and tests.
func NewInMemory() Ledger {
	return &inMemoryLedger{
		balances: make(map[string]decimal.Decimal),
		now:      time.Now,
	}
}

func (l *inMemoryLedger) EnsureAccount(_ context.Context, walletID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.balances[walletID]; !exists {
		l.balances[walletID] = decimal.Zero
	}
	return nil
}

func (l *inMemoryLedger) Balance(_ context.Context, walletID string) (decimal.Decimal, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	balance, exists := l.balances[walletID]
	if !exists {
		return decimal.Zero, ErrWalletNotFound
	}
	return balance, nil
}

func (l *inMemoryLedger) Deposit(_ context.Context, walletID string, amount decimal.Decimal) (decimal.Decimal, error) {
	amount = amount.Round(2)
	if !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	balance, exists := l.balances[walletID]
	if !exists {
		return decimal.Zero, ErrWalletNotFound
	}
	balance = balance.Add(amount)
	l.balances[walletID] = balance
	return balance, nil
}

func (l *inMemoryLedger) Transfer(_ context.Context, req TransferRequest) (TransactionResult, error) {
	req.Amount = req.Amount.Round(2)
	if err := validate(req); err != nil {
		return TransactionResult{}, err
	}
	amount := req.Amount

	l.mu.Lock()
	defer l.mu.Unlock()

	fromBalance, ok := l.balances[req.SenderWalletID]
	if !ok {
		return TransactionResult{}, ErrWalletNotFound
	}
	toBalance, ok := l.balances[req.ReceiverWalletID]
	if !ok {
		return TransactionResult{}, ErrWalletNotFound
	}
	if fromBalance.LessThan(amount) {
		return TransactionResult{}, ErrInsufficientFunds
	}

	before := fromBalance
	fromBalance = fromBalance.Sub(amount)
	toBalance = toBalance.Add(amount)
	l.balances[req.SenderWalletID] = fromBalance
	l.balances[req.ReceiverWalletID] = toBalance

	tx := Transaction{
		ID:               uuid.NewString(),
		SenderID:         req.SenderID,
		SenderWalletID:   req.SenderWalletID,
		ReceiverID:       req.ReceiverID,
		ReceiverWalletID: req.ReceiverWalletID,
		ReceiverType:     req.ReceiverType,
		Amount:           amount,
		Status:           StatusSuccess,
		CreatedAt:        l.now().UTC(),
	}
	l.transactions = append(l.transactions, tx)

	return TransactionResult{
		Transaction:         tx,
		SenderBalanceBefore: before,
		SenderBalance:       fromBalance,
		ReceiverBalance:     toBalance,
	}, nil
}

func (l *inMemoryLedger) History(_ context.Context, party Party) ([]Transaction, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []Transaction
	for _, tx := range l.transactions {
		if visibleTo(tx, party) {
			out = append(out, tx)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
