// Package sessionstore persists the single authenticated session of a client
// installation. Construct one Store per process and pass it to every
// component that needs to read or change the session.
package sessionstore

import (
	"context"
	"encoding/json"
	"fmt"

	"galaxy-airline/internal/domain/auth"
	xerrors "galaxy-airline/internal/pkg/errors"
	"galaxy-airline/internal/prefs"

	"go.uber.org/zap"
)

// Preference keys. Every write replaces all three together.
const (
	KeyUser        = "user"
	KeyAccessToken = "access_token"
	KeyLoggedIn    = "is_logged_in"
)

const storageFaultMessage = "Session storage unavailable"

type Store struct {
	prefs  prefs.Store
	logger *zap.Logger
}

func New(p prefs.Store, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{prefs: p, logger: logger}
}

// Save overwrites the stored session with a logged-in record.
func (s *Store) Save(ctx context.Context, identity auth.Identity, accessToken string) error {
	if identity.ID == "" || accessToken == "" {
		return xerrors.NewAuthError(xerrors.ErrValidation, "Session requires an identity and an access token", nil)
	}

	data, err := json.Marshal(identity)
	if err != nil {
		return xerrors.NewAuthError(xerrors.ErrStorage, storageFaultMessage, fmt.Errorf("marshal identity: %w", err))
	}

	edit := prefs.NewEdit().
		Clear().
		PutString(KeyUser, string(data)).
		PutString(KeyAccessToken, accessToken).
		PutBool(KeyLoggedIn, true)

	if err := s.prefs.Commit(ctx, edit); err != nil {
		s.logger.Error("failed to persist session",
			zap.String("identity_id", identity.ID),
			zap.Error(err),
		)
		return xerrors.NewAuthError(xerrors.ErrStorage, storageFaultMessage, err)
	}

	s.logger.Debug("session saved",
		zap.String("identity_id", identity.ID),
		zap.String("role", string(identity.Role)),
	)
	return nil
}

// Current returns the persisted session, or the empty session when nobody
// has logged in. A persisted record that is only partly present is reported
// as a storage fault rather than silently repaired.
func (s *Store) Current(ctx context.Context) (auth.Session, error) {
	v, err := s.prefs.Snapshot(ctx)
	if err != nil {
		return auth.Session{}, xerrors.NewAuthError(xerrors.ErrStorage, storageFaultMessage, err)
	}

	userJSON, hasUser := v.String(KeyUser)
	token, hasToken := v.String(KeyAccessToken)
	loggedIn := v.Bool(KeyLoggedIn)

	if !hasUser && !hasToken && !loggedIn {
		return auth.Session{}, nil
	}
	if !hasUser || !hasToken || !loggedIn || token == "" {
		return auth.Session{}, xerrors.NewAuthError(xerrors.ErrStorage, storageFaultMessage,
			fmt.Errorf("partial session record (user=%t token=%t logged_in=%t)", hasUser, hasToken && token != "", loggedIn))
	}

	var identity auth.Identity
	if err := json.Unmarshal([]byte(userJSON), &identity); err != nil {
		return auth.Session{}, xerrors.NewAuthError(xerrors.ErrStorage, storageFaultMessage, fmt.Errorf("decode identity: %w", err))
	}
	if identity.ID == "" {
		return auth.Session{}, xerrors.NewAuthError(xerrors.ErrStorage, storageFaultMessage, fmt.Errorf("stored identity has no id"))
	}

	return auth.Session{
		Identity:    &identity,
		AccessToken: token,
		LoggedIn:    true,
	}, nil
}

// Clear resets to the empty session. Clearing an empty store succeeds.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.prefs.Commit(ctx, prefs.NewEdit().Clear()); err != nil {
		s.logger.Error("failed to clear session", zap.Error(err))
		return xerrors.NewAuthError(xerrors.ErrStorage, storageFaultMessage, err)
	}
	return nil
}

func (s *Store) IsLoggedIn(ctx context.Context) (bool, error) {
	sess, err := s.Current(ctx)
	if err != nil {
		return false, err
	}
	return sess.LoggedIn, nil
}

// AccessToken returns the bearer token of the current session, or "".
func (s *Store) AccessToken(ctx context.Context) (string, error) {
	sess, err := s.Current(ctx)
	if err != nil {
		return "", err
	}
	return sess.AccessToken, nil
}
