package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/apperr"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/ledger"
)

const maxIDAttempts = 10

var (
	// ErrNotFound is the ledger's error so lookups and postings report a
	// missing wallet the same way.
	ErrNotFound           = ledger.ErrWalletNotFound
	ErrWalletExists       = apperr.Conflict("Wallet already exists for this owner")
	ErrWalletIDTaken      = errors.New("wallet id already taken")
	ErrWalletIDExhausted  = errors.New("could not allocate a unique wallet id")
	ErrNegativeOpeningBal = apperr.Validation("Initial balance cannot be negative")
)

// Service exposes wallet operations backed by the ledger.
type Service struct {
	repo   Repository
	ledger ledger.Ledger
	suffix func() int
	now    func() time.Time
}

// NewService builds a wallet service instance.
func NewService(repo Repository, ledger ledger.Ledger) *Service {
	return &Service{
		repo:   repo,
		ledger: ledger,
		suffix: func() int { return 1000 + rand.IntN(9000) },
		now:    time.Now,
	}
}

// OpenInput captures data required to open a wallet.
type OpenInput struct {
	OwnerType      string
	OwnerID        string
	InitialBalance decimal.Decimal
}

// Open provisions the owner's wallet with a unique public id and credits the
// opening balance. Colliding ids are retried a bounded number of times.
func (s *Service) Open(ctx context.Context, in OpenInput) (Wallet, error) {
	if in.InitialBalance.IsNegative() {
		return Wallet{}, ErrNegativeOpeningBal
	}
	if _, err := uuid.Parse(in.OwnerID); err != nil {
		return Wallet{}, fmt.Errorf("owner id: %w", err)
	}
	prefix, err := prefixFor(in.OwnerType)
	if err != nil {
		return Wallet{}, err
	}

	var w Wallet
	for attempt := 0; ; attempt++ {
		if attempt == maxIDAttempts {
			return Wallet{}, ErrWalletIDExhausted
		}
		w = Wallet{
			ID:        uuid.NewString(),
			WalletID:  fmt.Sprintf("WAL-%s-%04d", prefix, s.suffix()),
			OwnerType: in.OwnerType,
			OwnerID:   in.OwnerID,
			CreatedAt: s.now().UTC(),
		}
		err := s.repo.Create(ctx, w)
		if err == nil {
			break
		}
		if !errors.Is(err, ErrWalletIDTaken) {
			return Wallet{}, err
		}
	}

	if err := s.ledger.EnsureAccount(ctx, w.WalletID); err != nil {
		return Wallet{}, err
	}
	if in.InitialBalance.IsPositive() {
		if _, err := s.ledger.Deposit(ctx, w.WalletID, in.InitialBalance); err != nil {
			return Wallet{}, err
		}
	}
	return w, nil
}

// GetByOwner returns the wallet of (ownerType, ownerID).
func (s *Service) GetByOwner(ctx context.Context, ownerType, ownerID string) (Wallet, error) {
	return s.repo.GetByOwner(ctx, ownerType, ownerID)
}

// GetByWalletID returns the wallet with the given public id.
func (s *Service) GetByWalletID(ctx context.Context, walletID string) (Wallet, error) {
	return s.repo.GetByWalletID(ctx, walletID)
}

// Balance returns the ledger balance of the owner's wallet.
func (s *Service) Balance(ctx context.Context, ownerType, ownerID string) (Balance, error) {
	w, err := s.repo.GetByOwner(ctx, ownerType, ownerID)
	if err != nil {
		return Balance{}, err
	}
	amount, err := s.ledger.Balance(ctx, w.WalletID)
	if err != nil {
		return Balance{}, err
	}
	return Balance{WalletID: w.WalletID, Amount: amount, AsOf: s.now().UTC()}, nil
}

// AddMoney credits amount to the user's wallet and returns the new balance.
func (s *Service) AddMoney(ctx context.Context, userID string, amount decimal.Decimal) (Balance, error) {
	if !amount.Round(2).IsPositive() {
		return Balance{}, ledger.ErrInvalidAmount
	}
	w, err := s.repo.GetByOwner(ctx, ledger.OwnerUser, userID)
	if err != nil {
		return Balance{}, err
	}
	balance, err := s.ledger.Deposit(ctx, w.WalletID, amount)
	if err != nil {
		return Balance{}, err
	}
	return Balance{WalletID: w.WalletID, Amount: balance, AsOf: s.now().UTC()}, nil
}

func prefixFor(ownerType string) (string, error) {
	switch ownerType {
	case ledger.OwnerUser:
		return "USR", nil
	case ledger.OwnerVendor:
		return "VND", nil
	default:
		return "", apperr.Validation("unknown wallet owner type " + ownerType)
	}
}
