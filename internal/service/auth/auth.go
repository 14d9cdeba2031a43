// internal/service/auth/auth.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"galaxy-airline/internal/domain/auth"
	xerrors "galaxy-airline/internal/pkg/errors"
	"galaxy-airline/internal/pkg/jwt"
	"galaxy-airline/internal/pkg/session"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = fmt.Errorf("invalid login credentials: %w", xerrors.ErrUnauthorized)
	ErrAccountDisabled    = fmt.Errorf("account is not active: %w", xerrors.ErrUnauthorized)
	ErrTooManyAttempts    = fmt.Errorf("too many login attempts, please try again in 15 minutes: %w", xerrors.ErrRateLimited)
)

// SessionStore tracks issued tokens so they can be revoked. A nil store
// makes tokens valid until they expire.
type SessionStore interface {
	CreateSession(ctx context.Context, s *session.SessionData) error
	GetSession(ctx context.Context, accountID, jti string) (*session.SessionData, error)
	InvalidateSession(ctx context.Context, accountID, jti string) error
	IsTokenBlacklisted(ctx context.Context, jti string) (bool, error)
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
}

// LoginLimiter throttles login attempts per client and email.
type LoginLimiter interface {
	CheckLoginAttempt(ctx context.Context, ip, email string) (bool, int64, error)
	ResetLoginAttempts(ctx context.Context, ip, email string) error
}

// EventRecorder counts auth outcomes.
type EventRecorder interface {
	AuthEvent(action, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) AuthEvent(string, string) {}

type Options struct {
	// PrivilegedEmails are granted the admin role at signup.
	PrivilegedEmails []string
	BcryptCost       int
}

type AuthService struct {
	accounts   auth.AccountRepository
	jwtManager *jwt.Manager
	sessions   SessionStore
	limiter    LoginLimiter
	events     EventRecorder
	privileged []string
	cost       int
	logger     *zap.Logger
}

func NewAuthService(
	accounts auth.AccountRepository,
	jwtManager *jwt.Manager,
	sessions SessionStore,
	limiter LoginLimiter,
	events EventRecorder,
	opts Options,
	logger *zap.Logger,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if events == nil {
		events = nopRecorder{}
	}
	cost := opts.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	privileged := make([]string, 0, len(opts.PrivilegedEmails))
	for _, e := range opts.PrivilegedEmails {
		if e = normalizeEmail(e); e != "" {
			privileged = append(privileged, e)
		}
	}
	return &AuthService{
		accounts:   accounts,
		jwtManager: jwtManager,
		sessions:   sessions,
		limiter:    limiter,
		events:     events,
		privileged: privileged,
		cost:       cost,
		logger:     logger,
	}
}

// ========== Registration ==========

// Signup creates an account and logs it in.
func (s *AuthService) Signup(ctx context.Context, req *auth.SignupRequest) (*auth.LoginResult, error) {
	email := normalizeEmail(req.Email)
	name := strings.TrimSpace(req.Name)
	if email == "" || req.Password == "" || name == "" {
		s.events.AuthEvent("signup", "invalid")
		return nil, xerrors.ErrInvalidInput
	}

	roles := []string{string(auth.RoleStandard)}
	if s.isPrivileged(email) {
		roles = append(roles, string(auth.RolePrivileged))
	}

	account, err := s.createAccount(ctx, email, req.Password, name, roles)
	if err != nil {
		if errors.Is(err, xerrors.ErrDuplicateEntry) {
			s.events.AuthEvent("signup", "duplicate")
		} else {
			s.events.AuthEvent("signup", "error")
		}
		return nil, err
	}

	s.logger.Info("account created",
		zap.String("account_id", account.ID),
		zap.String("email", email),
		zap.Strings("roles", roles),
	)
	s.events.AuthEvent("signup", "success")

	return s.issue(ctx, account, req.IPAddress, req.UserAgent)
}

func (s *AuthService) createAccount(ctx context.Context, email, password, name string, roles []string) (*auth.Account, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &auth.Account{
		ID:           ulid.Make().String(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hashed),
		Roles:        roles,
		Status:       "active",
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// ========== Login ==========

// Login authenticates with email and password.
func (s *AuthService) Login(ctx context.Context, req *auth.LoginRequest) (*auth.LoginResult, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		s.events.AuthEvent("login", "invalid")
		return nil, xerrors.ErrInvalidInput
	}

	if s.limiter != nil {
		allowed, _, err := s.limiter.CheckLoginAttempt(ctx, req.IPAddress, email)
		if err != nil {
			s.logger.Warn("rate limiter unavailable", zap.Error(err))
		} else if !allowed {
			s.events.AuthEvent("login", "rate_limited")
			return nil, ErrTooManyAttempts
		}
	}

	account, err := s.accounts.FindByEmail(ctx, email)
	if errors.Is(err, xerrors.ErrNotFound) {
		s.events.AuthEvent("login", "rejected")
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		s.events.AuthEvent("login", "error")
		return nil, fmt.Errorf("failed to find account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Info("login rejected", zap.String("email", email))
		s.events.AuthEvent("login", "rejected")
		return nil, ErrInvalidCredentials
	}
	if account.Status != "active" {
		s.events.AuthEvent("login", "rejected")
		return nil, ErrAccountDisabled
	}

	if err := s.accounts.UpdateLastLogin(ctx, account.ID); err != nil {
		s.logger.Error("failed to update last login", zap.Error(err))
	}
	if s.limiter != nil {
		if err := s.limiter.ResetLoginAttempts(ctx, req.IPAddress, email); err != nil {
			s.logger.Warn("failed to reset login attempts", zap.Error(err))
		}
	}

	s.events.AuthEvent("login", "success")
	return s.issue(ctx, account, req.IPAddress, req.UserAgent)
}

// issue signs an access token and records its session.
func (s *AuthService) issue(ctx context.Context, account *auth.Account, ip, userAgent string) (*auth.LoginResult, error) {
	token, jti, err := s.jwtManager.Generator.GenerateAccessToken(account.ID, account.Email, account.Roles)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	if s.sessions != nil {
		now := time.Now()
		data := &session.SessionData{
			JTI:            jti,
			AccountID:      account.ID,
			Email:          account.Email,
			Roles:          account.Roles,
			IPAddress:      ip,
			UserAgent:      userAgent,
			LoginAt:        now,
			LastActivityAt: now,
			ExpiresAt:      now.Add(s.jwtManager.Generator.Ttl),
		}
		if err := s.sessions.CreateSession(ctx, data); err != nil {
			return nil, fmt.Errorf("failed to create session: %w", err)
		}
	}

	return &auth.LoginResult{
		AccessToken: token,
		JTI:         jti,
		User:        account.Identity(),
	}, nil
}

// ========== Token checks ==========

// Authenticate verifies a bearer token and that its session is still live.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*jwt.Claims, error) {
	claims, err := s.jwtManager.Verifier.VerifyAccessToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", xerrors.ErrUnauthorized, err)
	}
	if s.sessions == nil {
		return claims, nil
	}

	blacklisted, err := s.sessions.IsTokenBlacklisted(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check token: %w", err)
	}
	if blacklisted {
		return nil, xerrors.ErrSessionExpired
	}
	if _, err := s.sessions.GetSession(ctx, claims.AccountID, claims.ID); err != nil {
		if errors.Is(err, xerrors.ErrSessionExpired) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return claims, nil
}

// Me returns the identity behind an authenticated account id.
func (s *AuthService) Me(ctx context.Context, accountID string) (*auth.Identity, error) {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	id := account.Identity()
	return &id, nil
}

// ========== Logout ==========

// Logout revokes the token identified by jti.
func (s *AuthService) Logout(ctx context.Context, claims *jwt.Claims) error {
	if s.sessions == nil {
		return nil
	}
	if err := s.sessions.InvalidateSession(ctx, claims.AccountID, claims.ID); err != nil {
		return fmt.Errorf("failed to invalidate session: %w", err)
	}

	var ttl time.Duration
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if err := s.sessions.BlacklistToken(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("failed to blacklist token: %w", err)
	}

	s.events.AuthEvent("logout", "success")
	return nil
}

func (s *AuthService) isPrivileged(email string) bool {
	return slices.Contains(s.privileged, email)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
