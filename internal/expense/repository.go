package expense

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists classified expenses.
type Repository interface {
	Create(ctx context.Context, e Expense) error
	// CountByMerchantSince counts the user's expenses to merchantName at or after since.
	CountByMerchantSince(ctx context.Context, userID, merchantName string, since time.Time) (int, error)
	// ListBetween returns the user's expenses in [from, to), oldest first.
	ListBetween(ctx context.Context, userID string, from, to time.Time) ([]Expense, error)
	// Recent returns the user's latest expenses, newest first.
	Recent(ctx context.Context, userID string, limit int) ([]Expense, error)
	// ByTransactionIDs returns the expenses linked to the given transactions keyed by transaction id.
	ByTransactionIDs(ctx context.Context, txIDs []string) (map[string]Expense, error)
}

// PostgresRepository stores expenses in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const columns = `id, user_id, transaction_id, merchant_name, merchant_category, amount, is_recurring, predicted_category, urgency, created_at`

// Create inserts an expense row.
func (r *PostgresRepository) Create(ctx context.Context, e Expense) error {
	id, err := uuid.Parse(e.ID)
	if err != nil {
		return err
	}
	userID, err := uuid.Parse(e.UserID)
	if err != nil {
		return err
	}
	var txID *uuid.UUID
	if e.TransactionID != "" {
		parsed, err := uuid.Parse(e.TransactionID)
		if err != nil {
			return err
		}
		txID = &parsed
	}
	_, err = r.db.Exec(ctx, `INSERT INTO expenses (`+columns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		id, userID, txID, e.MerchantName, e.MerchantCategory, e.Amount, e.IsRecurring,
		e.PredictedCategory, e.Urgency, e.CreatedAt.UTC())
	return err
}

// CountByMerchantSince counts prior expenses for recurrence detection.
func (r *PostgresRepository) CountByMerchantSince(ctx context.Context, userID, merchantName string, since time.Time) (int, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return 0, nil
	}
	var n int
	err = r.db.QueryRow(ctx, `SELECT COUNT(*) FROM expenses
        WHERE user_id = $1 AND merchant_name = $2 AND created_at >= $3`, uid, merchantName, since.UTC()).Scan(&n)
	return n, err
}

// ListBetween returns expenses in [from, to) ordered by time.
func (r *PostgresRepository) ListBetween(ctx context.Context, userID string, from, to time.Time) ([]Expense, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, nil
	}
	rows, err := r.db.Query(ctx, `SELECT `+columns+` FROM expenses
        WHERE user_id = $1 AND created_at >= $2 AND created_at < $3
        ORDER BY created_at, id`, uid, from.UTC(), to.UTC())
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

// Recent returns the latest expenses for the user.
func (r *PostgresRepository) Recent(ctx context.Context, userID string, limit int) ([]Expense, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, nil
	}
	rows, err := r.db.Query(ctx, `SELECT `+columns+` FROM expenses
        WHERE user_id = $1 ORDER BY created_at DESC, id LIMIT $2`, uid, limit)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

// ByTransactionIDs returns expenses joined by their transaction foreign key.
func (r *PostgresRepository) ByTransactionIDs(ctx context.Context, txIDs []string) (map[string]Expense, error) {
	ids := make([]uuid.UUID, 0, len(txIDs))
	for _, raw := range txIDs {
		if id, err := uuid.Parse(raw); err == nil {
			ids = append(ids, id)
		}
	}
	out := make(map[string]Expense, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.db.Query(ctx, `SELECT `+columns+` FROM expenses WHERE transaction_id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	expenses, err := collect(rows)
	if err != nil {
		return nil, err
	}
	for _, e := range expenses {
		out[e.TransactionID] = e
	}
	return out, nil
}

func collect(rows pgx.Rows) ([]Expense, error) {
	defer rows.Close()
	var out []Expense
	for rows.Next() {
		var (
			e         Expense
			id, user  uuid.UUID
			txID      *uuid.UUID
			createdAt time.Time
		)
		if err := rows.Scan(&id, &user, &txID, &e.MerchantName, &e.MerchantCategory, &e.Amount,
			&e.IsRecurring, &e.PredictedCategory, &e.Urgency, &createdAt); err != nil {
			return nil, err
		}
		e.ID = id.String()
		e.UserID = user.String()
		if txID != nil {
			e.TransactionID = txID.String()
		}
		e.CreatedAt = createdAt.UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}
