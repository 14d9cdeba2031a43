// Package memory keeps accounts in process memory. It backs the identity
// service when no database is configured.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"galaxy-airline/internal/domain/auth"
	xerrors "galaxy-airline/internal/pkg/errors"
)

type AccountRepository struct {
	mu      sync.RWMutex
	byID    map[string]*auth.Account
	byEmail map[string]string
}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{
		byID:    make(map[string]*auth.Account),
		byEmail: make(map[string]string),
	}
}

func (r *AccountRepository) Create(ctx context.Context, a *auth.Account) error {
	key := strings.ToLower(a.Email)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[key]; ok {
		return xerrors.ErrDuplicateEntry
	}
	if _, ok := r.byID[a.ID]; ok {
		return xerrors.ErrDuplicateEntry
	}

	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now
	stored := *a
	stored.Roles = append([]string(nil), a.Roles...)
	r.byID[a.ID] = &stored
	r.byEmail[key] = a.ID
	return nil
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*auth.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return r.copyLocked(id), nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*auth.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.byID[id]; !ok {
		return nil, xerrors.ErrNotFound
	}
	return r.copyLocked(id), nil
}

func (r *AccountRepository) UpdateLastLogin(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok {
		return xerrors.ErrNotFound
	}
	now := time.Now().UTC()
	a.LastLogin, a.UpdatedAt = now, now
	return nil
}

func (r *AccountRepository) copyLocked(id string) *auth.Account {
	a := *r.byID[id]
	a.Roles = append([]string(nil), a.Roles...)
	return &a
}
