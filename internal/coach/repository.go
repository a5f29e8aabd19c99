package coach

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository stores coach conversations.
type Repository interface {
	Create(ctx context.Context, c Conversation) error
	// List returns the user's conversations, newest first.
	List(ctx context.Context, userID string) ([]Conversation, error)
}

// PostgresRepository stores conversations in coach_conversations.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a conversation repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a conversation.
func (r *PostgresRepository) Create(ctx context.Context, c Conversation) error {
	id, err := uuid.Parse(c.ID)
	if err != nil {
		return err
	}
	uid, err := uuid.Parse(c.UserID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO coach_conversations (id, user_id, user_message, ai_response, created_at)
        VALUES ($1, $2, $3, $4, $5)`, id, uid, c.UserMessage, c.AIResponse, c.CreatedAt.UTC())
	return err
}

// List returns conversations newest first.
func (r *PostgresRepository) List(ctx context.Context, userID string) ([]Conversation, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, nil
	}
	rows, err := r.db.Query(ctx, `SELECT id, user_id, user_message, ai_response, created_at
        FROM coach_conversations WHERE user_id = $1 ORDER BY created_at DESC`, uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Conversation
	for rows.Next() {
		var (
			c       Conversation
			id, own uuid.UUID
		)
		if err := rows.Scan(&id, &own, &c.UserMessage, &c.AIResponse, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.ID, c.UserID = id.String(), own.String()
		out = append(out, c)
	}
	return out, rows.Err()
}

type memoryRepository struct {
	mu    sync.RWMutex
	items []Conversation
}

// NewMemoryRepository returns an in-memory conversation store.
func NewMemoryRepository() Repository {
	return &memoryRepository{}
}

func (r *memoryRepository) Create(_ context.Context, c Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, c)
	return nil
}

func (r *memoryRepository) List(_ context.Context, userID string) ([]Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Conversation
	for _, c := range r.items {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
