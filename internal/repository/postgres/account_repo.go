// internal/repository/postgres/account_repo.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"galaxy-airline/internal/domain/auth"
	xerrors "galaxy-airline/internal/pkg/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

const accountColumns = `id, email, name, password_hash, roles, status, last_login, created_at, updated_at`

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create inserts a new account
func (r *AccountRepository) Create(ctx context.Context, a *auth.Account) error {
	query := `
		INSERT INTO accounts (id, email, name, password_hash, roles, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		a.ID, a.Email, a.Name, a.PasswordHash, pq.Array(a.Roles), a.Status,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return xerrors.ErrDuplicateEntry
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// FindByEmail retrieves an account by email
func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*auth.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE LOWER(email) = LOWER($1)`
	return r.findOne(ctx, query, email)
}

// FindByID retrieves an account by ID
func (r *AccountRepository) FindByID(ctx context.Context, id string) (*auth.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return r.findOne(ctx, query, id)
}

// UpdateLastLogin stamps a successful login
func (r *AccountRepository) UpdateLastLogin(ctx context.Context, id string) error {
	query := `UPDATE accounts SET last_login = NOW(), updated_at = NOW() WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	if n == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

func (r *AccountRepository) findOne(ctx context.Context, query string, arg any) (*auth.Account, error) {
	var (
		a         auth.Account
		lastLogin sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&a.ID, &a.Email, &a.Name, &a.PasswordHash, pq.Array(&a.Roles),
		&a.Status, &lastLogin, &a.CreatedAt, &a.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	if lastLogin.Valid {
		a.LastLogin = lastLogin.Time
	}
	return &a, nil
}
