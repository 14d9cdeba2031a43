// internal/domain/auth/repository.go
package auth

import "context"

// AccountRepository stores identity service accounts. Lookups by email are
// case-insensitive. Missing rows surface as xerrors.ErrNotFound and email
// collisions as xerrors.ErrDuplicateEntry.
type AccountRepository interface {
	Create(ctx context.Context, a *Account) error
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByID(ctx context.Context, id string) (*Account, error)
	UpdateLastLogin(ctx context.Context, id string) error
}
