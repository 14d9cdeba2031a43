// internal/service/auth/seed.go
package auth

import (
	"context"
	"errors"
	"fmt"

	"galaxy-airline/internal/domain/auth"
	xerrors "galaxy-airline/internal/pkg/errors"

	"go.uber.org/zap"
)

// SeedAccount describes an account created at startup.
type SeedAccount struct {
	Email    string
	Password string
	Name     string
	Admin    bool
}

// EnsureSeedAccounts creates the demo accounts that do not exist yet.
// Existing accounts are left untouched.
func (s *AuthService) EnsureSeedAccounts(ctx context.Context, seeds []SeedAccount) error {
	for _, seed := range seeds {
		email := normalizeEmail(seed.Email)
		if email == "" || seed.Password == "" || seed.Name == "" {
			return fmt.Errorf("seed account email, password, and name must be provided")
		}

		_, err := s.accounts.FindByEmail(ctx, email)
		if err == nil {
			s.logger.Info("seed account already exists, skipping", zap.String("email", email))
			continue
		}
		if !errors.Is(err, xerrors.ErrNotFound) {
			return fmt.Errorf("failed to check seed account %s: %w", email, err)
		}

		roles := []string{string(auth.RoleStandard)}
		if seed.Admin {
			roles = append(roles, string(auth.RolePrivileged))
		}

		account, err := s.createAccount(ctx, email, seed.Password, seed.Name, roles)
		if errors.Is(err, xerrors.ErrDuplicateEntry) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to create seed account %s: %w", email, err)
		}

		s.logger.Info("seed account created",
			zap.String("email", email),
			zap.String("account_id", account.ID),
			zap.Bool("admin", seed.Admin),
		)
	}
	return nil
}
