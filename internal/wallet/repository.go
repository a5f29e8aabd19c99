package wallet

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists wallet metadata. Balances live in the ledger.
type Repository interface {
	Create(ctx context.Context, wallet Wallet) error
	GetByOwner(ctx context.Context, ownerType, ownerID string) (Wallet, error)
	GetByWalletID(ctx context.Context, walletID string) (Wallet, error)
}

// PostgresRepository stores wallets in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a wallet row with a zero balance.
func (r *PostgresRepository) Create(ctx context.Context, wallet Wallet) error {
	id, err := uuid.Parse(wallet.ID)
	if err != nil {
		return err
	}
	ownerID, err := uuid.Parse(wallet.OwnerID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO wallets (id, wallet_id, owner_type, owner_id, balance, created_at)
        VALUES ($1, $2, $3, $4, 0, $5)`, id, wallet.WalletID, wallet.OwnerType, ownerID, wallet.CreatedAt.UTC())
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		if pgErr.ConstraintName == "wallets_wallet_id_key" {
			return ErrWalletIDTaken
		}
		return ErrWalletExists
	}
	return err
}

// GetByOwner fetches the wallet owned by (ownerType, ownerID).
func (r *PostgresRepository) GetByOwner(ctx context.Context, ownerType, ownerID string) (Wallet, error) {
	oid, err := uuid.Parse(ownerID)
	if err != nil {
		return Wallet{}, ErrNotFound
	}
	return scanWallet(r.db.QueryRow(ctx, `SELECT id, wallet_id, owner_type, owner_id, created_at
        FROM wallets WHERE owner_type = $1 AND owner_id = $2`, ownerType, oid))
}

// GetByWalletID fetches a wallet by its public identifier.
func (r *PostgresRepository) GetByWalletID(ctx context.Context, walletID string) (Wallet, error) {
	return scanWallet(r.db.QueryRow(ctx, `SELECT id, wallet_id, owner_type, owner_id, created_at
        FROM wallets WHERE wallet_id = $1`, walletID))
}

func scanWallet(row pgx.Row) (Wallet, error) {
	var (
		w         Wallet
		id, owner uuid.UUID
		createdAt time.Time
	)
	if err := row.Scan(&id, &w.WalletID, &w.OwnerType, &owner, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Wallet{}, ErrNotFound
		}
		return Wallet{}, err
	}
	w.ID = id.String()
	w.OwnerID = owner.String()
	w.CreatedAt = createdAt.UTC()
	return w, nil
}
