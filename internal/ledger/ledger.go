package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/apperr"
)

var (
	// ErrInvalidAmount rejects zero or negative postings.
	ErrInvalidAmount = apperr.Validation("Amount must be greater than zero")
	// ErrWalletNotFound occurs when either side of a posting has no wallet.
	ErrWalletNotFound = apperr.NotFound("Wallet not found")
	// ErrInsufficientFunds occurs when the sender lacks the balance to cover a transfer.
	ErrInsufficientFunds = apperr.Validation("Insufficient balance")
	// ErrSameWallet rejects transfers from a wallet to itself.
	ErrSameWallet = apperr.Validation("Cannot transfer to your own wallet")
)

// Owner types recorded on wallets and transactions.
const (
	OwnerUser   = "user"
	OwnerVendor = "vendor"
)

// StatusSuccess marks a committed transfer.
const StatusSuccess = "success"

// Transaction is the immutable record of a completed transfer.
type Transaction struct {
	ID               string
	SenderID         string
	SenderWalletID   string
	ReceiverID       string
	ReceiverWalletID string
	ReceiverType     string
	Amount           decimal.Decimal
	Status           string
	CreatedAt        time.Time
}

// TransferRequest describes a wallet-to-wallet payment. Wallet ids are the
// public WAL-* identifiers.
type TransferRequest struct {
	SenderID         string
	SenderWalletID   string
	ReceiverID       string
	ReceiverWalletID string
	ReceiverType     string
	Amount           decimal.Decimal
}

// TransactionResult captures the outcome of a committed transfer.
type TransactionResult struct {
	Transaction         Transaction
	SenderBalanceBefore decimal.Decimal
	SenderBalance       decimal.Decimal
	ReceiverBalance     decimal.Decimal
}

// Party selects the transactions visible to one wallet owner.
type Party struct {
	Type string
	ID   string
}

// Ledger holds wallet balances and the transaction log. Transfer is atomic:
// the balance check, debit, credit and transaction insert commit together or
// not at all.
type Ledger interface {
	EnsureAccount(ctx context.Context, walletID string) error
	Balance(ctx context.Context, walletID string) (decimal.Decimal, error)
	Deposit(ctx context.Context, walletID string, amount decimal.Decimal) (decimal.Decimal, error)
	Transfer(ctx context.Context, req TransferRequest) (TransactionResult, error)
	History(ctx context.Context, party Party) ([]Transaction, error)
}

func validate(req TransferRequest) error {
	if !req.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if req.SenderWalletID == "" || req.ReceiverWalletID == "" {
		return ErrWalletNotFound
	}
	if req.SenderWalletID == req.ReceiverWalletID {
		return ErrSameWallet
	}
	return nil
}

// visibleTo reports whether tx belongs in party's history: users see what they
// sent and what they received as a user, vendors see what they received.
func visibleTo(tx Transaction, party Party) bool {
	if tx.Status != StatusSuccess {
		return false
	}
	if party.Type == OwnerUser && tx.SenderID == party.ID {
		return true
	}
	return tx.ReceiverType == party.Type && tx.ReceiverID == party.ID
}
