package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"galaxy-airline/internal/domain/auth"
	xerrors "galaxy-airline/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL, 2*time.Second)
	require.NoError(t, err)
	return c
}

func TestSubmitLoginSuccess(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/auth/login", r.URL.Path)

		var req auth.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "demo@galaxy.com", req.Email)
		assert.Equal(t, "demo123", req.Password)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(auth.AuthResponse{
			Success:     true,
			User:        &auth.Identity{ID: "u1", Email: req.Email, DisplayName: "Demo User", Role: auth.RoleStandard},
			AccessToken: "tok-1",
		})
	})

	resp, err := c.SubmitLogin(context.Background(), "demo@galaxy.com", "demo123")
	require.NoError(t, err)
	assert.True(t, resp.Authenticated())
	assert.Equal(t, "tok-1", resp.AccessToken)
	assert.Equal(t, "Demo User", resp.User.DisplayName)
}

func TestSubmitSignupSendsName(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/signup", r.URL.Path)
		var req auth.SignupRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Ada", req.Name)
		_, _ = w.Write([]byte(`{"success":true,"user":{"id":"u2","email":"ada@x.io","name":"Ada","role":"user"},"accessToken":"t"}`))
	})

	resp, err := c.SubmitSignup(context.Background(), "ada@x.io", "pw", "Ada")
	require.NoError(t, err)
	assert.True(t, resp.Authenticated())
}

func TestRejectionWithBodyIsNotTransportFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"success":true,"message":"invalid credentials"}`))
	})

	resp, err := c.SubmitLogin(context.Background(), "a@b.c", "bad")
	require.NoError(t, err)
	assert.False(t, resp.Success, "non-2xx responses are never successful")
	assert.Equal(t, "invalid credentials", resp.Message)
}

func TestTransportFailures(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "non-2xx without body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
		},
		{
			name: "non-2xx with html body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte("<html>oops</html>"))
			},
		},
		{
			name: "malformed 2xx body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"success":tru`))
			},
		},
		{
			name: "empty 2xx body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, tc.handler)
			resp, err := c.SubmitLogin(context.Background(), "a@b.c", "pw")
			assert.Nil(t, resp)
			require.Error(t, err)
			assert.True(t, errors.Is(err, xerrors.ErrTransport))
			var te *TransportError
			require.True(t, errors.As(err, &te))
			assert.Equal(t, "login", te.Op)
		})
	}
}

func TestConnectionRefusedIsTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(url, time.Second)
	require.NoError(t, err)
	_, err = c.SubmitSignup(context.Background(), "a@b.c", "pw", "A")
	assert.True(t, errors.Is(err, xerrors.ErrTransport))
}

func TestTimeoutIsTransportFailure(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c, err := New(srv.URL, 50*time.Millisecond)
	require.NoError(t, err)
	_, err = c.SubmitLogin(context.Background(), "a@b.c", "pw")
	assert.True(t, errors.Is(err, xerrors.ErrTransport))
}

func TestMe(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/me", r.URL.Path)
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"success":false,"message":"invalid or expired token"}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"message":"ok","data":{"id":"u1","email":"demo@galaxy.com","name":"Demo User","role":"user"}}`))
	})

	id, err := c.Me(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, "u1", id.ID)

	_, err = c.Me(context.Background(), "bad")
	assert.True(t, errors.Is(err, xerrors.ErrUnauthorized))
}

func TestNewValidatesURL(t *testing.T) {
	_, err := New("ftp://example.com", time.Second)
	assert.Error(t, err)

	c, err := New("https://id.example.com/prefix", 0)
	require.NoError(t, err)
	assert.Equal(t, "https://id.example.com/prefix/api/v1/auth/login", c.resolve(loginPath))
}
