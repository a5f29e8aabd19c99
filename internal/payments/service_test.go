package payments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/classifier"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/expense"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/identity"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/ledger"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/logging"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/notification"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/wallet"
)

type fixture struct {
	svc      *Service
	ledger   ledger.Ledger
	wallets  *wallet.Service
	ident    *identity.Service
	expenses expense.Repository
	notifier *notification.Recorder
}

func newFixture(t *testing.T, c Classifier) fixture {
	t.Helper()
	led := ledger.NewInMemory()
	wallets := wallet.NewService(wallet.NewMemoryRepository(), led)
	ident := identity.NewService(identity.NewMemoryRepository())
	expenses := expense.NewMemoryRepository()
	if c == nil {
		model, err := classifier.DefaultModel()
		if err != nil {
			t.Fatalf("load default model: %v", err)
		}
		c = classifier.NewModelAdapter(model, logging.Discard())
	}
	rec := &notification.Recorder{}
	svc := NewService(led, wallets, ident, expenses, c, rec, logging.Discard())
	return fixture{svc: svc, ledger: led, wallets: wallets, ident: ident, expenses: expenses, notifier: rec}
}

func (f fixture) user(t *testing.T, name, phone string, balance int64) (identity.User, wallet.Wallet) {
	t.Helper()
	ctx := context.Background()
	u, err := f.ident.RegisterUser(ctx, identity.UserRegistration{Username: name, Email: name + "@example.com", Phone: phone, Password: "secret123"})
	if err != nil {
		t.Fatalf("register user: %v", err)
	}
	w, err := f.wallets.Open(ctx, wallet.OpenInput{OwnerType: ledger.OwnerUser, OwnerID: u.ID, InitialBalance: decimal.NewFromInt(balance)})
	if err != nil {
		t.Fatalf("open wallet: %v", err)
	}
	return u, w
}

func (f fixture) vendor(t *testing.T, business, category, phone string) (identity.Vendor, wallet.Wallet) {
	t.Helper()
	ctx := context.Background()
	v, err := f.ident.RegisterVendor(ctx, identity.VendorRegistration{
		Username: business, BusinessName: business, Category: category,
		Email: phone + "@shop.example.com", Phone: phone, Password: "secret123",
	})
	if err != nil {
		t.Fatalf("register vendor: %v", err)
	}
	w, err := f.wallets.Open(ctx, wallet.OpenInput{OwnerType: ledger.OwnerVendor, OwnerID: v.ID})
	if err != nil {
		t.Fatalf("open wallet: %v", err)
	}
	return v, w
}

func TestScanPayGroceriesVendor(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	u, _ := f.user(t, "asha", "9876543210", 5000)
	v, vw := f.vendor(t, "FreshMart", "Groceries", "9000000001")

	res, err := f.svc.ScanPay(ctx, ScanPayInput{UserID: u.ID, ReceiverWalletID: vw.WalletID, Amount: decimal.NewFromInt(200)})
	if err != nil {
		t.Fatalf("scan pay failed: %v", err)
	}
	if !res.RemainingBalance.Equal(decimal.NewFromInt(4800)) {
		t.Fatalf("unexpected remaining balance: %s", res.RemainingBalance)
	}
	if res.ExpenseCategory != expense.CategoryOrange || res.Urgency != expense.UrgencyNecessary {
		t.Fatalf("unexpected classification: %+v", res)
	}
	if res.ExpenseID == "" || res.TransactionID == "" {
		t.Fatalf("expected ids in result: %+v", res)
	}

	vendorBalance, err := f.wallets.Balance(ctx, ledger.OwnerVendor, v.ID)
	if err != nil || !vendorBalance.Amount.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("vendor balance = %v, %v", vendorBalance.Amount, err)
	}

	linked, _ := f.expenses.ByTransactionIDs(ctx, []string{res.TransactionID})
	e, ok := linked[res.TransactionID]
	if !ok {
		t.Fatalf("expense not linked to transaction")
	}
	if e.MerchantName != "FreshMart" || e.MerchantCategory != "Groceries" || e.IsRecurring {
		t.Fatalf("unexpected expense: %+v", e)
	}
	txs, err := f.ledger.History(ctx, ledger.Party{Type: ledger.OwnerUser, ID: u.ID})
	if err != nil || len(txs) != 1 {
		t.Fatalf("history = %v, %v", txs, err)
	}
	if !e.CreatedAt.Equal(txs[0].CreatedAt) {
		t.Fatalf("expense stamped %v, transaction %v", e.CreatedAt, txs[0].CreatedAt)
	}

	msgs := f.notifier.Messages()
	if len(msgs) != 1 || msgs[0].Kind != notification.KindPaymentReceived || msgs[0].Destination != v.ID {
		t.Fatalf("expected receiver notification, got %+v", msgs)
	}
}

func TestScanPayInsufficientFundsLeavesNoTrace(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	u, _ := f.user(t, "asha", "9876543210", 100)
	_, vw := f.vendor(t, "FreshMart", "Groceries", "9000000001")

	_, err := f.svc.ScanPay(ctx, ScanPayInput{UserID: u.ID, ReceiverWalletID: vw.WalletID, Amount: decimal.NewFromInt(200)})
	if !errors.Is(err, ledger.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	if n := ledger.TransactionCount(f.ledger); n != 0 {
		t.Fatalf("expected no transactions, got %d", n)
	}
	from, to := expense.MonthRange(time.Now())
	if got, _ := f.expenses.ListBetween(ctx, u.ID, from, to); len(got) != 0 {
		t.Fatalf("expected no expenses, got %d", len(got))
	}
}

func TestScanPayRejectsBadInput(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	u, uw := f.user(t, "asha", "9876543210", 100)

	if _, err := f.svc.ScanPay(ctx, ScanPayInput{UserID: u.ID, ReceiverWalletID: uw.WalletID, Amount: decimal.Zero}); !errors.Is(err, ledger.ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}
	if _, err := f.svc.ScanPay(ctx, ScanPayInput{UserID: u.ID, ReceiverWalletID: "WAL-VND-0000", Amount: decimal.NewFromInt(1)}); !errors.Is(err, ledger.ErrWalletNotFound) {
		t.Fatalf("expected wallet not found, got %v", err)
	}
	if _, err := f.svc.ScanPay(ctx, ScanPayInput{UserID: u.ID, ReceiverWalletID: uw.WalletID, Amount: decimal.NewFromInt(1)}); !errors.Is(err, ledger.ErrSameWallet) {
		t.Fatalf("expected same wallet rejection, got %v", err)
	}
}

type failingPredictor struct{}

func (failingPredictor) Predict([]float64) (int, error) { return 0, errors.New("model offline") }

func TestScanPayClassifierFailureDefaultsToNecessary(t *testing.T) {
	model, err := classifier.DefaultModel()
	if err != nil {
		t.Fatalf("load default model: %v", err)
	}
	adapter := classifier.NewAdapter(failingPredictor{}, model.Merchants, model.Categories, logging.Discard())
	f := newFixture(t, adapter)
	u, _ := f.user(t, "asha", "9876543210", 500)
	_, vw := f.vendor(t, "CinemaMax", "Entertainment", "9000000002")

	res, err := f.svc.ScanPay(context.Background(), ScanPayInput{UserID: u.ID, ReceiverWalletID: vw.WalletID, Amount: decimal.NewFromInt(50)})
	if err != nil {
		t.Fatalf("scan pay failed: %v", err)
	}
	if res.Urgency != expense.UrgencyNecessary {
		t.Fatalf("expected necessary fallback, got %s", res.Urgency)
	}
}

func TestScanPayMarksThirdPaymentRecurring(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	u, _ := f.user(t, "asha", "9876543210", 1000)
	_, vw := f.vendor(t, "StreamFlix", "Subscriptions", "9000000003")

	var last ScanPayResult
	for i := 0; i < 3; i++ {
		res, err := f.svc.ScanPay(ctx, ScanPayInput{UserID: u.ID, ReceiverWalletID: vw.WalletID, Amount: decimal.NewFromInt(10)})
		if err != nil {
			t.Fatalf("payment %d failed: %v", i, err)
		}
		last = res
	}
	linked, _ := f.expenses.ByTransactionIDs(ctx, []string{last.TransactionID})
	if !linked[last.TransactionID].IsRecurring {
		t.Fatalf("third payment within the window should be recurring")
	}
	if last.Urgency != expense.UrgencyNecessary {
		t.Fatalf("recurring subscription should be necessary, got %s", last.Urgency)
	}
}

func TestHistoryForUserAndVendor(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	asha, _ := f.user(t, "asha", "9876543210", 1000)
	ravi, rw := f.user(t, "ravi", "9876543211", 0)
	v, vw := f.vendor(t, "FreshMart", "Groceries", "9000000001")

	if _, err := f.svc.ScanPay(ctx, ScanPayInput{UserID: asha.ID, ReceiverWalletID: vw.WalletID, Amount: decimal.NewFromInt(100)}); err != nil {
		t.Fatalf("pay vendor: %v", err)
	}
	if _, err := f.svc.ScanPay(ctx, ScanPayInput{UserID: asha.ID, ReceiverWalletID: rw.WalletID, Amount: decimal.NewFromInt(50)}); err != nil {
		t.Fatalf("pay user: %v", err)
	}

	items, err := f.svc.History(ctx, asha.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	byParty := map[string]HistoryItem{}
	for _, it := range items {
		byParty[it.PartyName] = it
	}
	shop := byParty["FreshMart"]
	if shop.Type != TypeSent || shop.Category != "Groceries" || !shop.IsExpense || shop.ExpenseCategory == nil {
		t.Fatalf("unexpected vendor row: %+v", shop)
	}
	peer := byParty["ravi"]
	if peer.Category != CategoryTransfer || peer.IsExpense || peer.PartyWalletID != rw.WalletID {
		t.Fatalf("unexpected transfer row: %+v", peer)
	}

	received, err := f.svc.History(ctx, ravi.ID)
	if err != nil || len(received) != 1 || received[0].Type != TypeReceived || received[0].PartyName != "asha" {
		t.Fatalf("unexpected receiver history: %+v, %v", received, err)
	}

	receipts, err := f.svc.VendorHistory(ctx, v.ID)
	if err != nil || len(receipts) != 1 || receipts[0].Amount != 100 {
		t.Fatalf("unexpected vendor history: %+v, %v", receipts, err)
	}

	if _, err := f.svc.History(ctx, "00000000-0000-0000-0000-000000000000"); !errors.Is(err, identity.ErrUserNotFound) {
		t.Fatalf("expected user not found, got %v", err)
	}
}
