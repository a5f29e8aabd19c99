package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PostgresLedger keeps balances on the wallets table and appends transfers to
// the transactions table.
type PostgresLedger struct {
	db *pgxpool.Pool
}

// NewPostgresLedger constructs a Postgres-backed ledger implementation.
func NewPostgresLedger(db *pgxpool.Pool) *PostgresLedger {
	return &PostgresLedger{db: db}
}

// EnsureAccount verifies the wallet row exists. Wallet rows are created by the
// wallet repository with a zero balance.
func (l *PostgresLedger) EnsureAccount(ctx context.Context, walletID string) error {
	var exists bool
	if err := l.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM wallets WHERE wallet_id = $1)`, walletID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrWalletNotFound
	}
	return nil
}

// Balance returns the current balance of the wallet.
func (l *PostgresLedger) Balance(ctx context.Context, walletID string) (decimal.Decimal, error) {
	var balance decimal.Decimal
	if err := l.db.QueryRow(ctx, `SELECT balance FROM wallets WHERE wallet_id = $1`, walletID).Scan(&balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, ErrWalletNotFound
		}
		return decimal.Zero, err
	}
	return balance, nil
}

// Deposit credits the wallet with amount.
func (l *PostgresLedger) Deposit(ctx context.Context, walletID string, amount decimal.Decimal) (decimal.Decimal, error) {
	amount = amount.Round(2)
	if !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	var balance decimal.Decimal
	err := l.db.QueryRow(ctx, `UPDATE wallets SET balance = balance + $2 WHERE wallet_id = $1 RETURNING balance`,
		walletID, amount).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, ErrWalletNotFound
		}
		return decimal.Zero, err
	}
	return balance, nil
}

// Transfer locks both wallet rows in wallet id order, checks the sender
// balance, moves the funds and records the transaction in one database
// transaction.
func (l *PostgresLedger) Transfer(ctx context.Context, req TransferRequest) (TransactionResult, error) {
	req.Amount = req.Amount.Round(2)
	if err := validate(req); err != nil {
		return TransactionResult{}, err
	}
	senderID, err := uuid.Parse(req.SenderID)
	if err != nil {
		return TransactionResult{}, ErrWalletNotFound
	}
	receiverID, err := uuid.Parse(req.ReceiverID)
	if err != nil {
		return TransactionResult{}, ErrWalletNotFound
	}

	tx, err := l.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return TransactionResult{}, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	rows, err := tx.Query(ctx, `SELECT wallet_id, balance FROM wallets
        WHERE wallet_id = ANY($1) ORDER BY wallet_id FOR UPDATE`,
		[]string{req.SenderWalletID, req.ReceiverWalletID})
	if err != nil {
		return TransactionResult{}, err
	}
	balances := make(map[string]decimal.Decimal, 2)
	for rows.Next() {
		var (
			walletID string
			balance  decimal.Decimal
		)
		if err := rows.Scan(&walletID, &balance); err != nil {
			rows.Close()
			return TransactionResult{}, err
		}
		balances[walletID] = balance
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return TransactionResult{}, err
	}

	before, ok := balances[req.SenderWalletID]
	if !ok {
		return TransactionResult{}, ErrWalletNotFound
	}
	receiverBefore, ok := balances[req.ReceiverWalletID]
	if !ok {
		return TransactionResult{}, ErrWalletNotFound
	}
	if before.LessThan(req.Amount) {
		return TransactionResult{}, ErrInsufficientFunds
	}

	if _, err := tx.Exec(ctx, `UPDATE wallets SET balance = balance - $2 WHERE wallet_id = $1`, req.SenderWalletID, req.Amount); err != nil {
		return TransactionResult{}, fmt.Errorf("debit sender: %w", err)
	}
	if _, err := tx.Exec(ctx, `UPDATE wallets SET balance = balance + $2 WHERE wallet_id = $1`, req.ReceiverWalletID, req.Amount); err != nil {
		return TransactionResult{}, fmt.Errorf("credit receiver: %w", err)
	}

	record := Transaction{
		ID:               uuid.NewString(),
		SenderID:         req.SenderID,
		SenderWalletID:   req.SenderWalletID,
		ReceiverID:       req.ReceiverID,
		ReceiverWalletID: req.ReceiverWalletID,
		ReceiverType:     req.ReceiverType,
		Amount:           req.Amount,
		Status:           StatusSuccess,
		CreatedAt:        time.Now().UTC(),
	}
	if _, err := tx.Exec(ctx, `INSERT INTO transactions
        (id, sender_id, sender_wallet_id, receiver_id, receiver_wallet_id, receiver_type, amount, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		uuid.MustParse(record.ID), senderID, record.SenderWalletID, receiverID, record.ReceiverWalletID,
		record.ReceiverType, record.Amount, record.Status, record.CreatedAt); err != nil {
		return TransactionResult{}, fmt.Errorf("insert transaction: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return TransactionResult{}, err
	}

	return TransactionResult{
		Transaction:         record,
		SenderBalanceBefore: before,
		SenderBalance:       before.Sub(req.Amount),
		ReceiverBalance:     receiverBefore.Add(req.Amount),
	}, nil
}

// History lists the successful transactions visible to party, newest first.
func (l *PostgresLedger) History(ctx context.Context, party Party) ([]Transaction, error) {
	id, err := uuid.Parse(party.ID)
	if err != nil {
		return nil, nil
	}
	const query = `
        SELECT id, sender_id, sender_wallet_id, receiver_id, receiver_wallet_id, receiver_type, amount, status, created_at
        FROM transactions
        WHERE status = 'success'
          AND (($2 = 'user' AND sender_id = $1) OR (receiver_type = $2 AND receiver_id = $1))
        ORDER BY created_at DESC`
	rows, err := l.db.Query(ctx, query, id, party.Type)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		var (
			tx                     Transaction
			txID, sender, receiver uuid.UUID
			createdAt              time.Time
		)
		if err := rows.Scan(&txID, &sender, &tx.SenderWalletID, &receiver, &tx.ReceiverWalletID,
			&tx.ReceiverType, &tx.Amount, &tx.Status, &createdAt); err != nil {
			return nil, err
		}
		tx.ID = txID.String()
		tx.SenderID = sender.String()
		tx.ReceiverID = receiver.String()
		tx.CreatedAt = createdAt.UTC()
		out = append(out, tx)
	}
	return out, rows.Err()
}
