package gateway

import (
	"context"

	"galaxy-airline/internal/domain/auth"

	"go.uber.org/zap"
)

// BootstrapConfig holds the demo administrator credentials and the local
// identity used when the identity service cannot be reached at all.
type BootstrapConfig struct {
	Email       string
	Password    string
	DisplayName string
	LocalID     string
	LocalToken  string
}

// DefaultBootstrapConfig returns the demo administrator shipped with the app.
func DefaultBootstrapConfig() BootstrapConfig {
	return BootstrapConfig{
		Email:       "admin@galaxy.com",
		Password:    "admin123",
		DisplayName: "Galaxy Admin",
		LocalID:     "admin-id",
		LocalToken:  "demo-token",
	}
}

// BootstrapPath records which escalation step produced the result.
type BootstrapPath string

const (
	PathRemoteLogin   BootstrapPath = "remote-login"
	PathProvisioned   BootstrapPath = "provisioned"
	PathLocalFallback BootstrapPath = "local-fallback"
)

type BootstrapResult struct {
	Identity auth.Identity
	Path     BootstrapPath
	// NeedsReauth is set when the account was just created remotely and no
	// session was stored. The user has to sign in again.
	NeedsReauth bool
}

// Message is the text shown to the user after a bootstrap.
func (r BootstrapResult) Message() string {
	if r.NeedsReauth {
		return MsgReauth
	}
	return ""
}

// BootstrapPrivileged signs in as the demo administrator. It tries a remote
// login, then a remote signup, then falls back to a local session. The round
// trips are strictly sequential and never retried.
func (g *Gateway) BootstrapPrivileged(ctx context.Context) (BootstrapResult, error) {
	return run(ctx, g, actionBootstrap, g.bootstrap)
}

func (g *Gateway) bootstrap(ctx context.Context, gen uint64) (BootstrapResult, error) {
	cfg := g.admin
	log := g.logger.With(zap.String("email", cfg.Email))

	resp, err := g.submitLogin(ctx, cfg.Email, cfg.Password)
	if err == nil && resp.Authenticated() {
		// The demo account always opens the admin surface, whatever role
		// the service assigned it.
		id := *resp.User
		id.Role = auth.RolePrivileged
		if err := g.commit(ctx, gen, id, resp.AccessToken); err != nil {
			return BootstrapResult{}, err
		}
		log.Info("admin demo signed in")
		return BootstrapResult{Identity: id, Path: PathRemoteLogin}, nil
	}
	log.Info("admin demo login failed, provisioning account", zap.Error(err))

	resp, err = g.submitSignup(ctx, cfg.Email, cfg.Password, cfg.DisplayName)
	if err == nil && resp.Authenticated() {
		log.Info("admin demo account provisioned")
		return BootstrapResult{Identity: *resp.User, Path: PathProvisioned, NeedsReauth: true}, nil
	}
	log.Warn("admin demo provisioning failed, using local session", zap.Error(err))

	local := auth.Identity{
		ID:          cfg.LocalID,
		Email:       cfg.Email,
		DisplayName: cfg.DisplayName,
		Role:        auth.RolePrivileged,
	}
	if err := g.commit(ctx, gen, local, cfg.LocalToken); err != nil {
		return BootstrapResult{}, err
	}
	return BootstrapResult{Identity: local, Path: PathLocalFallback}, nil
}
