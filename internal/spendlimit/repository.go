package spendlimit

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists the current limit set of each user.
type Repository interface {
	// Replace makes limits the user's complete limit set in one atomic step.
	Replace(ctx context.Context, userID string, limits []Limit) error
	List(ctx context.Context, userID string) ([]Limit, error)
}

// PostgresRepository stores limits in user_spend_limits.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a limit repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Replace upserts every (user, category) row and deletes categories no longer
// present inside a single transaction, so readers never see an empty set.
func (r *PostgresRepository) Replace(ctx context.Context, userID string, limits []Limit) error {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return err
	}
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	now := time.Now().UTC()
	keep := make([]string, 0, len(limits))
	batch := &pgx.Batch{}
	for _, l := range limits {
		keep = append(keep, l.Category)
		batch.Queue(`INSERT INTO user_spend_limits (id, user_id, category, limit_amount, alert_threshold, updated_at)
            VALUES ($1, $2, $3, $4, $5, $6)
            ON CONFLICT (user_id, category) DO UPDATE
            SET limit_amount = EXCLUDED.limit_amount, alert_threshold = EXCLUDED.alert_threshold, updated_at = EXCLUDED.updated_at`,
			uuid.New(), uid, l.Category, l.Limit, l.AlertThreshold, now)
	}
	batch.Queue(`DELETE FROM user_spend_limits WHERE user_id = $1 AND NOT (category = ANY($2))`, uid, keep)
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// List returns the user's limits, total row last.
func (r *PostgresRepository) List(ctx context.Context, userID string) ([]Limit, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, nil
	}
	rows, err := r.db.Query(ctx, `SELECT category, limit_amount, alert_threshold FROM user_spend_limits
        WHERE user_id = $1 ORDER BY (category = $2), category`, uid, TotalCategory)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Limit
	for rows.Next() {
		var l Limit
		if err := rows.Scan(&l.Category, &l.Limit, &l.AlertThreshold); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

type memoryRepository struct {
	mu     sync.RWMutex
	limits map[string][]Limit
}

// NewMemoryRepository constructs an in-memory limit store for development and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{limits: make(map[string][]Limit)}
}

func (r *memoryRepository) Replace(_ context.Context, userID string, limits []Limit) error {
	next := append([]Limit(nil), limits...)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.limits[userID] = next
	return nil
}

func (r *memoryRepository) List(_ context.Context, userID string) ([]Limit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := append([]Limit(nil), r.limits[userID]...)
	sort.SliceStable(out, func(i, j int) bool {
		if (out[i].Category == TotalCategory) != (out[j].Category == TotalCategory) {
			return out[j].Category == TotalCategory
		}
		return out[i].Category < out[j].Category
	})
	return out, nil
}
