package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// Repository persists users and vendors.
type Repository interface {
	CreateUser(ctx context.Context, user User) error
	FindUser(ctx context.Context, id string) (User, error)
	FindUserByIdentifier(ctx context.Context, identifier string) (User, error)
	UpdateProfile(ctx context.Context, id string, profile Profile) (User, error)
	ListUserIDs(ctx context.Context) ([]string, error)

	CreateVendor(ctx context.Context, vendor Vendor) error
	FindVendor(ctx context.Context, id string) (Vendor, error)
	FindVendorByIdentifier(ctx context.Context, identifier string) (Vendor, error)
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed identity repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, username, email, phone, password_hash, income, savings_goal, risk_tolerance, created_at`

// CreateUser inserts a new user.
func (r *PostgresRepository) CreateUser(ctx context.Context, user User) error {
	id, err := uuid.Parse(user.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO users (id, username, email, phone, password_hash, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`, id, user.Username, user.Email, user.Phone, user.PasswordHash, user.CreatedAt.UTC())
	return translate(err)
}

// FindUser fetches a user by id.
func (r *PostgresRepository) FindUser(ctx context.Context, id string) (User, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return User{}, ErrUserNotFound
	}
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, uid))
}

// FindUserByIdentifier fetches a user by email, phone or username.
func (r *PostgresRepository) FindUserByIdentifier(ctx context.Context, identifier string) (User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users
        WHERE email = $1 OR phone = $1 OR username = $1
        ORDER BY created_at LIMIT 1`, identifier))
}

// UpdateProfile stores the user's income, savings goal and risk tolerance.
func (r *PostgresRepository) UpdateProfile(ctx context.Context, id string, profile Profile) (User, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return User{}, ErrUserNotFound
	}
	return scanUser(r.db.QueryRow(ctx, `UPDATE users SET income = $2, savings_goal = $3, risk_tolerance = $4
        WHERE id = $1 RETURNING `+userColumns, uid, profile.Income, profile.SavingsGoal, profile.RiskTolerance))
}

// ListUserIDs returns the ids of every user in registration order.
func (r *PostgresRepository) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id.String())
	}
	return ids, rows.Err()
}

const vendorColumns = `id, username, business_name, category, email, phone, password_hash, created_at`

// CreateVendor inserts a new vendor.
func (r *PostgresRepository) CreateVendor(ctx context.Context, vendor Vendor) error {
	id, err := uuid.Parse(vendor.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO vendors (id, username, business_name, category, email, phone, password_hash, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`, id, vendor.Username, vendor.BusinessName, vendor.Category,
		vendor.Email, vendor.Phone, vendor.PasswordHash, vendor.CreatedAt.UTC())
	return translate(err)
}

// FindVendor fetches a vendor by id.
func (r *PostgresRepository) FindVendor(ctx context.Context, id string) (Vendor, error) {
	vid, err := uuid.Parse(id)
	if err != nil {
		return Vendor{}, ErrVendorNotFound
	}
	return scanVendor(r.db.QueryRow(ctx, `SELECT `+vendorColumns+` FROM vendors WHERE id = $1`, vid))
}

// FindVendorByIdentifier fetches a vendor by business name, email or phone.
func (r *PostgresRepository) FindVendorByIdentifier(ctx context.Context, identifier string) (Vendor, error) {
	return scanVendor(r.db.QueryRow(ctx, `SELECT `+vendorColumns+` FROM vendors
        WHERE business_name = $1 OR email = $1 OR phone = $1
        ORDER BY created_at LIMIT 1`, identifier))
}

func scanUser(row pgx.Row) (User, error) {
	var (
		id        uuid.UUID
		user      User
		risk      *string
		createdAt time.Time
	)
	if err := row.Scan(&id, &user.Username, &user.Email, &user.Phone, &user.PasswordHash,
		&user.Income, &user.SavingsGoal, &risk, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("scan user: %w", err)
	}
	user.ID = id.String()
	if risk != nil {
		user.RiskTolerance = *risk
	}
	user.CreatedAt = createdAt.UTC()
	return user, nil
}

func scanVendor(row pgx.Row) (Vendor, error) {
	var (
		id        uuid.UUID
		vendor    Vendor
		createdAt time.Time
	)
	if err := row.Scan(&id, &vendor.Username, &vendor.BusinessName, &vendor.Category, &vendor.Email,
		&vendor.Phone, &vendor.PasswordHash, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Vendor{}, ErrVendorNotFound
		}
		return Vendor{}, fmt.Errorf("scan vendor: %w", err)
	}
	vendor.ID = id.String()
	vendor.CreatedAt = createdAt.UTC()
	return vendor, nil
}

func translate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicateContact
	}
	return err
}
