package nudge

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository stores delivered nudges.
type Repository interface {
	// LastDelivered returns when the user last received a nudge of nudgeType.
	LastDelivered(ctx context.Context, userID, nudgeType string) (time.Time, bool, error)
	// CreateIfCooledDown stores n unless a nudge of the same type was delivered
	// to the user within cooldown of n.DeliveredAt. The check and insert are
	// atomic with respect to other callers.
	CreateIfCooledDown(ctx context.Context, n Nudge, cooldown time.Duration) (bool, error)
	// List returns the user's nudges, newest first.
	List(ctx context.Context, userID string) ([]Nudge, error)
}

func cooledDown(last, at time.Time, cooldown time.Duration) bool {
	return at.Sub(last) > cooldown
}

// PostgresRepository stores nudges in financial_nudges.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a nudge repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func lastDelivered(ctx context.Context, q querier, uid uuid.UUID, nudgeType string) (time.Time, bool, error) {
	var at time.Time
	err := q.QueryRow(ctx, `SELECT delivered_at FROM financial_nudges
        WHERE user_id = $1 AND nudge_type = $2 ORDER BY delivered_at DESC LIMIT 1`, uid, nudgeType).Scan(&at)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return at, true, nil
}

// LastDelivered implements Repository.
func (r *PostgresRepository) LastDelivered(ctx context.Context, userID, nudgeType string) (time.Time, bool, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return time.Time{}, false, err
	}
	return lastDelivered(ctx, r.db, uid, nudgeType)
}

// CreateIfCooledDown serializes writers per (user, type) with a
// transaction-scoped advisory lock.
func (r *PostgresRepository) CreateIfCooledDown(ctx context.Context, n Nudge, cooldown time.Duration) (bool, error) {
	uid, err := uuid.Parse(n.UserID)
	if err != nil {
		return false, err
	}
	id, err := uuid.Parse(n.ID)
	if err != nil {
		return false, err
	}
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, n.UserID+":"+n.Type); err != nil {
		return false, err
	}
	last, found, err := lastDelivered(ctx, tx, uid, n.Type)
	if err != nil {
		return false, err
	}
	if found && !cooledDown(last, n.DeliveredAt, cooldown) {
		return false, nil
	}
	if _, err := tx.Exec(ctx, `INSERT INTO financial_nudges (id, user_id, nudge_type, trigger, category, severity, message, delivered_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, uid, n.Type, n.Trigger, n.Category, n.Severity, n.Message, n.DeliveredAt.UTC()); err != nil {
		return false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// List implements Repository.
func (r *PostgresRepository) List(ctx context.Context, userID string) ([]Nudge, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, nil
	}
	rows, err := r.db.Query(ctx, `SELECT id, user_id, nudge_type, trigger, category, severity, message, delivered_at
        FROM financial_nudges WHERE user_id = $1 ORDER BY delivered_at DESC`, uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Nudge
	for rows.Next() {
		var (
			n       Nudge
			id, own uuid.UUID
		)
		if err := rows.Scan(&id, &own, &n.Type, &n.Trigger, &n.Category, &n.Severity, &n.Message, &n.DeliveredAt); err != nil {
			return nil, err
		}
		n.ID, n.UserID = id.String(), own.String()
		out = append(out, n)
	}
	return out, rows.Err()
}

type memoryRepository struct {
	mu     sync.Mutex
	nudges []Nudge
}

// NewMemoryRepository returns an in-memory nudge store.
func NewMemoryRepository() Repository {
	return &memoryRepository{}
}

func (r *memoryRepository) last(userID, nudgeType string) (time.Time, bool) {
	var (
		at    time.Time
		found bool
	)
	for _, n := range r.nudges {
		if n.UserID == userID && n.Type == nudgeType && (!found || n.DeliveredAt.After(at)) {
			at, found = n.DeliveredAt, true
		}
	}
	return at, found
}

func (r *memoryRepository) LastDelivered(_ context.Context, userID, nudgeType string) (time.Time, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	at, found := r.last(userID, nudgeType)
	return at, found, nil
}

func (r *memoryRepository) CreateIfCooledDown(_ context.Context, n Nudge, cooldown time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if last, found := r.last(n.UserID, n.Type); found && !cooledDown(last, n.DeliveredAt, cooldown) {
		return false, nil
	}
	r.nudges = append(r.nudges, n)
	return true, nil
}

func (r *memoryRepository) List(_ context.Context, userID string) ([]Nudge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Nudge
	for _, n := range r.nudges {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DeliveredAt.After(out[j].DeliveredAt) })
	return out, nil
}
