package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"galaxy-airline/internal/client"
	"galaxy-airline/internal/config"
	"galaxy-airline/internal/domain/auth"
	"galaxy-airline/internal/gateway"
	xerrors "galaxy-airline/internal/pkg/errors"
	"galaxy-airline/internal/pkg/jwt"
	"galaxy-airline/internal/prefs"
	"galaxy-airline/internal/sessionstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.AppConfig {
	return config.AppConfig{
		HTTPAddr:         "127.0.0.1:0",
		ShutdownTimeout:  time.Second,
		CORSOrigins:      []string{"*"},
		JWT:              jwt.Config{Issuer: "galaxy-identity", Audience: "galaxy-app", TTL: time.Hour},
		PrivilegedEmails: []string{"admin@galaxy.com"},
		SeedAccounts:     true,
		AdminEmail:       "admin@galaxy.com",
		AdminPassword:    "admin123",
		AdminName:        "Galaxy Admin",
		DemoEmail:        "demo@galaxy.com",
		DemoPassword:     "demo123",
		DemoName:         "Demo User",
		BcryptCost:       4,
	}
}

type harness struct {
	api   *client.Client
	gw    *gateway.Gateway
	store *sessionstore.Store
}

func newHarness(t *testing.T, cfg config.AppConfig) harness {
	t.Helper()
	srv := NewServer(cfg, nil)
	require.NoError(t, srv.Init(context.Background()))
	t.Cleanup(func() { _ = srv.Close() })

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	api, err := client.New(ts.URL, 5*time.Second)
	require.NoError(t, err)

	p, err := prefs.NewFileStore(filepath.Join(t.TempDir(), "session.json"), "session")
	require.NoError(t, err)
	store := sessionstore.New(p, nil)

	gw := gateway.New(api, store, gateway.DefaultBootstrapConfig())
	t.Cleanup(gw.Wait)
	return harness{api: api, gw: gw, store: store}
}

func TestLoginAgainstIdentityService(t *testing.T) {
	h := newHarness(t, testConfig())
	ctx := context.Background()

	id, err := h.gw.Login(ctx, "demo@galaxy.com", "demo123")
	require.NoError(t, err)
	assert.Equal(t, "Demo User", id.DisplayName)
	assert.Equal(t, auth.RoleStandard, id.Role)

	token, err := h.store.AccessToken(ctx)
	require.NoError(t, err)
	me, err := h.api.Me(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, id, *me)

	_, err = h.gw.Login(ctx, "demo@galaxy.com", "wrong")
	assert.True(t, errors.Is(err, xerrors.ErrRejected))
	assert.Equal(t, "Invalid login credentials", err.Error())
}

func TestSignupAgainstIdentityService(t *testing.T) {
	h := newHarness(t, testConfig())
	ctx := context.Background()

	id, err := h.gw.Signup(ctx, "new@galaxy.com", "pw123", "New Flyer")
	require.NoError(t, err)
	assert.Equal(t, "new@galaxy.com", id.Email)

	_, err = h.gw.Signup(ctx, "new@galaxy.com", "pw123", "New Flyer")
	assert.True(t, errors.Is(err, xerrors.ErrRejected))
	assert.Equal(t, "Signup failed: User already registered", err.Error())
}

func TestAdminDemoSignsInWhenSeeded(t *testing.T) {
	h := newHarness(t, testConfig())

	res, err := h.gw.BootstrapPrivileged(context.Background())
	require.NoError(t, err)
	assert.Equal(t, gateway.PathRemoteLogin, res.Path)
	assert.True(t, res.Identity.IsPrivileged())
}

func TestAdminDemoProvisionsWhenNotSeeded(t *testing.T) {
	cfg := testConfig()
	cfg.SeedAccounts = false
	h := newHarness(t, cfg)
	ctx := context.Background()

	res, err := h.gw.BootstrapPrivileged(ctx)
	require.NoError(t, err)
	assert.Equal(t, gateway.PathProvisioned, res.Path)
	assert.True(t, res.NeedsReauth)
	assert.True(t, res.Identity.IsPrivileged())

	loggedIn, err := h.store.IsLoggedIn(ctx)
	require.NoError(t, err)
	assert.False(t, loggedIn)

	res, err = h.gw.BootstrapPrivileged(ctx)
	require.NoError(t, err)
	assert.Equal(t, gateway.PathRemoteLogin, res.Path)
}

func TestLogoutRevokesNothingWithoutRedis(t *testing.T) {
	h := newHarness(t, testConfig())
	ctx := context.Background()

	_, err := h.gw.Login(ctx, "demo@galaxy.com", "demo123")
	require.NoError(t, err)
	require.NoError(t, h.gw.Logout(ctx))

	sess, err := h.store.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, auth.Session{}, sess)
}

func TestHealthAndMetrics(t *testing.T) {
	srv := NewServer(testConfig(), nil)
	require.NoError(t, srv.Init(context.Background()))

	for _, path := range []string{"/api/v1/health", "/metrics"} {
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRunStopsOnCancel(t *testing.T) {
	srv := NewServer(testConfig(), nil)
	require.NoError(t, srv.Init(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
