package payments

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/classifier"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/expense"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/identity"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/ledger"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/notification"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/wallet"
)

// Payee categories used when the receiver is not a vendor.
const (
	CategoryOther    = "Other"
	CategoryTransfer = "Transfer"
)

// History item directions.
const (
	TypeSent     = "Sent"
	TypeReceived = "Received"
)

// Directory resolves the account behind a wallet.
type Directory interface {
	GetUser(ctx context.Context, id string) (identity.User, error)
	GetVendor(ctx context.Context, id string) (identity.Vendor, error)
}

// Classifier labels a payment with a predicted category and urgency.
type Classifier interface {
	Classify(in classifier.Input) classifier.Result
}

// Service runs scan & pay transfers and records the resulting expenses.
type Service struct {
	ledger     ledger.Ledger
	wallets    *wallet.Service
	directory  Directory
	expenses   expense.Repository
	classifier Classifier
	notifier   notification.Notifier
	logger     *slog.Logger
	now        func() time.Time
}

// NewService constructs a payment service.
func NewService(
	ledger ledger.Ledger,
	wallets *wallet.Service,
	directory Directory,
	expenses expense.Repository,
	classifier Classifier,
	notifier notification.Notifier,
	logger *slog.Logger,
) *Service {
	return &Service{
		ledger:     ledger,
		wallets:    wallets,
		directory:  directory,
		expenses:   expenses,
		classifier: classifier,
		notifier:   notifier,
		logger:     logger,
		now:        time.Now,
	}
}

// ScanPayInput captures a payment from a user to any wallet.
type ScanPayInput struct {
	UserID           string
	ReceiverWalletID string
	Amount           decimal.Decimal
}

// ScanPayResult describes the committed transfer and its classification.
type ScanPayResult struct {
	TransactionID    string
	ExpenseID        string
	RemainingBalance decimal.Decimal
	ExpenseCategory  string
	Urgency          string
}

type merchant struct {
	name     string
	category string
}

// ScanPay moves amount from the user's wallet to the receiver wallet, then
// classifies and stores the payment as an expense. Once the transfer commits
// the call succeeds even when classification or expense storage fails.
func (s *Service) ScanPay(ctx context.Context, in ScanPayInput) (ScanPayResult, error) {
	if !in.Amount.Round(2).IsPositive() {
		return ScanPayResult{}, ledger.ErrInvalidAmount
	}
	sender, err := s.wallets.GetByOwner(ctx, ledger.OwnerUser, in.UserID)
	if err != nil {
		return ScanPayResult{}, err
	}
	receiver, err := s.wallets.GetByWalletID(ctx, in.ReceiverWalletID)
	if err != nil {
		return ScanPayResult{}, err
	}

	res, err := s.ledger.Transfer(ctx, ledger.TransferRequest{
		SenderID:         in.UserID,
		SenderWalletID:   sender.WalletID,
		ReceiverID:       receiver.OwnerID,
		ReceiverWalletID: receiver.WalletID,
		ReceiverType:     receiver.OwnerType,
		Amount:           in.Amount,
	})
	if err != nil {
		return ScanPayResult{}, err
	}
	tx := res.Transaction

	payee := s.resolveMerchant(ctx, receiver)
	prior, err := s.expenses.CountByMerchantSince(ctx, in.UserID, payee.name, tx.CreatedAt.Add(-classifier.RecurrenceWindow))
	if err != nil {
		s.logger.Warn("recurrence lookup failed", slog.String("user_id", in.UserID), slog.Any("error", err))
		prior = 0
	}
	recurring := classifier.IsRecurring(prior)

	label := s.classifier.Classify(classifier.Input{
		MerchantName:     payee.name,
		MerchantCategory: payee.category,
		Amount:           tx.Amount,
		IsRecurring:      recurring,
		BalanceBefore:    res.SenderBalanceBefore,
		At:               tx.CreatedAt,
	})

	out := ScanPayResult{
		TransactionID:    tx.ID,
		RemainingBalance: res.SenderBalance,
		ExpenseCategory:  label.Category,
		Urgency:          label.Urgency,
	}

	exp := expense.Expense{
		ID:                uuid.NewString(),
		UserID:            in.UserID,
		TransactionID:     tx.ID,
		MerchantName:      payee.name,
		MerchantCategory:  payee.category,
		Amount:            tx.Amount,
		IsRecurring:       recurring,
		PredictedCategory: label.Category,
		Urgency:           label.Urgency,
		CreatedAt:         tx.CreatedAt,
	}
	if err := s.expenses.Create(ctx, exp); err != nil {
		s.logger.Error("expense record failed after transfer",
			slog.String("transaction_id", tx.ID), slog.Any("error", err))
	} else {
		out.ExpenseID = exp.ID
	}

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindPaymentReceived,
			Destination: receiver.OwnerID,
			Body:        fmt.Sprintf("You received %s from wallet %s", tx.Amount.StringFixed(2), sender.WalletID),
		})
	}
	return out, nil
}

func (s *Service) resolveMerchant(ctx context.Context, w wallet.Wallet) merchant {
	if w.OwnerType == ledger.OwnerVendor {
		v, err := s.directory.GetVendor(ctx, w.OwnerID)
		if err != nil {
			s.logger.Warn("vendor lookup failed", slog.String("vendor_id", w.OwnerID), slog.Any("error", err))
			return merchant{name: w.WalletID, category: CategoryOther}
		}
		return merchant{name: v.BusinessName, category: v.Category}
	}
	u, err := s.directory.GetUser(ctx, w.OwnerID)
	if err != nil {
		s.logger.Warn("user lookup failed", slog.String("user_id", w.OwnerID), slog.Any("error", err))
		return merchant{name: w.WalletID, category: CategoryOther}
	}
	return merchant{name: u.Username, category: CategoryOther}
}

// HistoryItem is one row of a transaction history.
type HistoryItem struct {
	ID              string    `json:"id"`
	Timestamp       time.Time `json:"timestamp"`
	Amount          float64   `json:"amount"`
	Type            string    `json:"type"`
	PartyName       string    `json:"party_name"`
	PartyWalletID   string    `json:"party_wallet_id"`
	Category        string    `json:"category"`
	ExpenseCategory *string   `json:"expense_category"`
	Urgency         *string   `json:"urgency"`
	Status          string    `json:"status"`
	IsExpense       bool      `json:"is_expense"`
}

// History lists the user's successful transfers, newest first.
func (s *Service) History(ctx context.Context, userID string) ([]HistoryItem, error) {
	if _, err := s.directory.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	txs, err := s.ledger.History(ctx, ledger.Party{Type: ledger.OwnerUser, ID: userID})
	if err != nil {
		return nil, err
	}
	linked, err := s.linkedExpenses(ctx, txs)
	if err != nil {
		return nil, err
	}

	names := newNameCache(s.directory)
	items := make([]HistoryItem, 0, len(txs))
	for _, tx := range txs {
		item := HistoryItem{
			ID:        tx.ID,
			Timestamp: tx.CreatedAt,
			Amount:    tx.Amount.InexactFloat64(),
			Status:    tx.Status,
			Category:  CategoryOther,
		}
		if tx.SenderID == userID {
			item.Type = TypeSent
			item.PartyWalletID = tx.ReceiverWalletID
			if tx.ReceiverType == ledger.OwnerVendor {
				item.PartyName, item.Category = names.vendor(ctx, tx.ReceiverID)
				item.IsExpense = true
			} else {
				item.PartyName = names.user(ctx, tx.ReceiverID, "Other User")
				item.Category = CategoryTransfer
			}
		} else {
			item.Type = TypeReceived
			item.PartyWalletID = tx.SenderWalletID
			item.PartyName = names.user(ctx, tx.SenderID, "External Source")
		}
		if e, ok := linked[tx.ID]; ok {
			category, urgency := e.PredictedCategory, e.Urgency
			item.ExpenseCategory = &category
			item.Urgency = &urgency
		}
		items = append(items, item)
	}
	return items, nil
}

// VendorHistory lists the payments a vendor received, newest first.
func (s *Service) VendorHistory(ctx context.Context, vendorID string) ([]HistoryItem, error) {
	vendor, err := s.directory.GetVendor(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	txs, err := s.ledger.History(ctx, ledger.Party{Type: ledger.OwnerVendor, ID: vendorID})
	if err != nil {
		return nil, err
	}
	names := newNameCache(s.directory)
	items := make([]HistoryItem, 0, len(txs))
	for _, tx := range txs {
		items = append(items, HistoryItem{
			ID:            tx.ID,
			Timestamp:     tx.CreatedAt,
			Amount:        tx.Amount.InexactFloat64(),
			Type:          TypeReceived,
			PartyName:     names.user(ctx, tx.SenderID, "External Source"),
			PartyWalletID: tx.SenderWalletID,
			Category:      vendor.Category,
			Status:        tx.Status,
		})
	}
	return items, nil
}

func (s *Service) linkedExpenses(ctx context.Context, txs []ledger.Transaction) (map[string]expense.Expense, error) {
	if len(txs) == 0 {
		return map[string]expense.Expense{}, nil
	}
	ids := make([]string, len(txs))
	for i, tx := range txs {
		ids[i] = tx.ID
	}
	return s.expenses.ByTransactionIDs(ctx, ids)
}

type nameCache struct {
	dir     Directory
	users   map[string]string
	vendors map[string]merchant
}

func newNameCache(dir Directory) *nameCache {
	return &nameCache{dir: dir, users: map[string]string{}, vendors: map[string]merchant{}}
}

func (c *nameCache) user(ctx context.Context, id, fallback string) string {
	if name, ok := c.users[id]; ok {
		return name
	}
	name := fallback
	if u, err := c.dir.GetUser(ctx, id); err == nil {
		name = u.Username
	}
	c.users[id] = name
	return name
}

func (c *nameCache) vendor(ctx context.Context, id string) (string, string) {
	if m, ok := c.vendors[id]; ok {
		return m.name, m.category
	}
	m := merchant{name: "Vendor", category: "General"}
	if v, err := c.dir.GetVendor(ctx, id); err == nil {
		m = merchant{name: v.BusinessName, category: v.Category}
	}
	c.vendors[id] = m
	return m.name, m.category
}
