package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	xerrors "galaxy-airline/internal/pkg/errors"
	"galaxy-airline/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubAuthenticator map[string]*jwt.Claims

func (s stubAuthenticator) Authenticate(_ context.Context, token string) (*jwt.Claims, error) {
	if c, ok := s[token]; ok {
		return c, nil
	}
	return nil, xerrors.ErrUnauthorized
}

func newRouter() *gin.Engine {
	auth := NewAuthMiddleware(stubAuthenticator{
		"user":  {AccountID: "u1", Roles: []string{"user"}},
		"admin": {AccountID: "a1", Roles: []string{"user", "admin"}},
	})

	r := gin.New()
	r.Use(RequestID(), RecoveryMiddleware(zap.NewNop()))
	r.GET("/me", auth.Auth(), func(c *gin.Context) {
		c.String(http.StatusOK, MustGetAccountID(c))
	})
	r.GET("/admin", append(auth.AdminOnly(), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})...)
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	return r
}

func do(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := newRouter()

	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", "forged").Code)

	w := do(r, "/me", "user")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", w.Body.String())
	assert.NotEmpty(t, w.Header().Get(headerRequestID))
}

func TestAdminOnly(t *testing.T) {
	r := newRouter()
	assert.Equal(t, http.StatusForbidden, do(r, "/admin", "user").Code)
	assert.Equal(t, http.StatusOK, do(r, "/admin", "admin").Code)
}

func TestRecoveryReturns500(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, do(newRouter(), "/panic", "").Code)
}

func TestCORSPreflight(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://app.galaxy.com"}))
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://app.galaxy.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.galaxy.com", w.Header().Get("Access-Control-Allow-Origin"))
}
