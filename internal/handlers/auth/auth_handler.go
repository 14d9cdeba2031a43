// internal/handlers/auth/auth_handler.go
package auth

import (
	"errors"
	"net/http"

	"galaxy-airline/internal/domain/auth"
	"galaxy-airline/internal/middleware"
	xerrors "galaxy-airline/internal/pkg/errors"
	"galaxy-airline/internal/pkg/response"
	authUsecase "galaxy-airline/internal/service/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *authUsecase.AuthService
	logger      *zap.Logger
}

func NewAuthHandler(authService *authUsecase.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// ========== Registration ==========

// Signup handles account creation (public endpoint)
func (h *AuthHandler) Signup(c *gin.Context) {
	var req auth.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.AuthFailure(c, http.StatusBadRequest, "Signup failed: email, password and name are required")
		return
	}

	req.IPAddress = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	result, err := h.authService.Signup(c.Request.Context(), &req)
	switch {
	case err == nil:
	case errors.Is(err, xerrors.ErrDuplicateEntry):
		response.AuthFailure(c, http.StatusConflict, "Signup failed: User already registered")
		return
	case errors.Is(err, xerrors.ErrInvalidInput):
		response.AuthFailure(c, http.StatusBadRequest, "Signup failed: email, password and name are required")
		return
	default:
		h.logger.Error("signup failed",
			zap.String("email", req.Email),
			zap.Error(err),
		)
		response.AuthFailure(c, http.StatusInternalServerError, "Internal server error during signup")
		return
	}

	response.Auth(c, http.StatusCreated, &result.User, result.AccessToken, "Account created successfully")
}

// ========== Login ==========

// Login handles email/password login
func (h *AuthHandler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.AuthFailure(c, http.StatusBadRequest, "Email and password are required")
		return
	}

	req.IPAddress = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	result, err := h.authService.Login(c.Request.Context(), &req)
	switch {
	case err == nil:
	case errors.Is(err, authUsecase.ErrAccountDisabled):
		response.AuthFailure(c, http.StatusForbidden, "Account is not active")
		return
	case errors.Is(err, xerrors.ErrUnauthorized):
		response.AuthFailure(c, http.StatusUnauthorized, "Invalid login credentials")
		return
	case errors.Is(err, xerrors.ErrRateLimited):
		response.AuthFailure(c, http.StatusTooManyRequests, "Too many login attempts, please try again in 15 minutes")
		return
	case errors.Is(err, xerrors.ErrInvalidInput):
		response.AuthFailure(c, http.StatusBadRequest, "Email and password are required")
		return
	default:
		h.logger.Error("login failed",
			zap.String("email", req.Email),
			zap.String("ip", req.IPAddress),
			zap.Error(err),
		)
		response.AuthFailure(c, http.StatusInternalServerError, "Internal server error during login")
		return
	}

	h.logger.Info("user logged in",
		zap.String("account_id", result.User.ID),
		zap.String("email", result.User.Email),
	)

	response.Auth(c, http.StatusOK, &result.User, result.AccessToken, "")
}

// ========== Session ==========

// Me returns the caller's identity (requires auth)
func (h *AuthHandler) Me(c *gin.Context) {
	accountID := middleware.MustGetAccountID(c)

	identity, err := h.authService.Me(c.Request.Context(), accountID)
	if errors.Is(err, xerrors.ErrNotFound) {
		response.Unauthorized(c, "account no longer exists")
		return
	}
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to load account", err)
		return
	}

	response.Success(c, http.StatusOK, "ok", identity)
}

// Logout revokes the caller's token (requires auth)
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.MustGetClaims(c)

	if err := h.authService.Logout(c.Request.Context(), claims); err != nil {
		h.logger.Error("logout failed",
			zap.String("account_id", claims.AccountID),
			zap.Error(err),
		)
		response.Error(c, http.StatusInternalServerError, "logout failed", err)
		return
	}

	response.Success(c, http.StatusOK, "logout successful", nil)
}
