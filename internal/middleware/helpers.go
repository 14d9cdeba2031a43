// internal/middleware/helpers.go
package middleware

import (
	"slices"

	"galaxy-airline/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
)

// GetClaims returns the verified token claims set by Auth().
func GetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get(ctxClaims)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	return claims, ok
}

// MustGetClaims gets the claims from context or panics
func MustGetClaims(c *gin.Context) *jwt.Claims {
	claims, ok := GetClaims(c)
	if !ok {
		panic("claims not found in context")
	}
	return claims
}

// MustGetAccountID gets the account ID from context or panics
func MustGetAccountID(c *gin.Context) string {
	id := c.GetString(ctxAccountID)
	if id == "" {
		panic("account_id not found in context")
	}
	return id
}

// GetRoles gets user roles from context
func GetRoles(c *gin.Context) []string {
	roles, ok := c.Get(ctxRoles)
	if !ok {
		return []string{}
	}
	list, ok := roles.([]string)
	if !ok {
		return []string{}
	}
	return list
}

// IsAdmin checks if user is an admin
func IsAdmin(c *gin.Context) bool {
	return slices.Contains(GetRoles(c), "admin")
}
