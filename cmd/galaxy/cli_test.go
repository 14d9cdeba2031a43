package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"galaxy-airline/internal/app"
	"galaxy-airline/internal/config"
	"galaxy-airline/internal/gateway"
	"galaxy-airline/internal/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startIdentityService(t *testing.T) string {
	t.Helper()
	srv := app.NewServer(config.AppConfig{
		ShutdownTimeout:  time.Second,
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
	}, nil)
	require.NoError(t, srv.Init(context.Background()))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts.URL
}

func setEnv(t *testing.T) {
	t.Setenv("GALAXY_CONFIG", "")
	t.Setenv("GALAXY_SESSION_BACKEND", "file")
	t.Setenv("GALAXY_SESSION_PATH", filepath.Join(t.TempDir(), "session.json"))
	t.Setenv("GALAXY_REQUEST_TIMEOUT", "5s")
}

func run(t *testing.T, apiURL string, args ...string) (string, error) {
	t.Helper()
	cmd, e := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--api-url", apiURL}, args...))
	err := cmd.ExecuteContext(context.Background())
	require.NoError(t, e.close())
	return out.String(), err
}

func TestLoginStatusLogout(t *testing.T) {
	setEnv(t)
	url := startIdentityService(t)

	out, err := run(t, url, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Not signed in")

	out, err = run(t, url, "login", "--email", "demo@galaxy.com", "--password", "demo123")
	require.NoError(t, err)
	assert.Contains(t, out, "Welcome back, Demo User!")
	assert.Contains(t, out, string(gateway.DestUserDashboard))

	out, err = run(t, url, "whoami", "--remote")
	require.NoError(t, err)
	assert.Contains(t, out, "email: demo@galaxy.com")

	out, err = run(t, url, "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed out")

	out, err = run(t, url, "status")
	require.NoError(t, err)
	assert.Contains(t, out, string(gateway.DestLogin))
}

func TestLoginFailureMessages(t *testing.T) {
	setEnv(t)
	url := startIdentityService(t)

	_, err := run(t, url, "login", "--email", "demo@galaxy.com")
	require.Error(t, err)
	assert.Equal(t, gateway.MsgMissingFields, gateway.Message(err))

	_, err = run(t, url, "login", "--quick")
	require.Error(t, err)
	assert.Equal(t, "Invalid login credentials", gateway.Message(err))
}

func TestAdminDemoRoutesToAdminDashboard(t *testing.T) {
	setEnv(t)
	url := startIdentityService(t)

	out, err := run(t, url, "admin-demo")
	require.NoError(t, err)
	assert.Contains(t, out, "Welcome, Galaxy Admin!")
	assert.Contains(t, out, string(gateway.DestAdminDashboard))
}

func TestAdminDemoFallsBackWhenServiceIsDown(t *testing.T) {
	setEnv(t)
	ts := httptest.NewServer(nil)
	url := ts.URL
	ts.Close()

	out, err := run(t, url, "admin-demo")
	require.NoError(t, err)
	assert.Contains(t, out, "local admin session")

	out, err = run(t, url, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "id:    admin-id")
}

func TestSignupPrintsConfirmation(t *testing.T) {
	setEnv(t)
	url := startIdentityService(t)

	out, err := run(t, url, "signup", "--name", "Ada", "--email", "ada@galaxy.com", "--password", "pw")
	require.NoError(t, err)
	assert.Contains(t, out, "Account created successfully!")
}
