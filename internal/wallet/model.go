package wallet

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet is the balance-bearing account of exactly one user or vendor.
// WalletID is the public WAL-{USR|VND}-NNNN identifier shared for scan & pay.
type Wallet struct {
	ID        string
	WalletID  string
	OwnerType string
	OwnerID   string
	CreatedAt time.Time
}

// Balance encapsulates available funds for a wallet.
type Balance struct {
	WalletID string
	Amount   decimal.Decimal
	AsOf     time.Time
}
