// internal/domain/auth/entity.go
package auth

import (
	"time"
)

// Role is the permission tier of an identity. The string values are the
// wire values used by the identity service.
type Role string

const (
	RoleStandard   Role = "user"
	RolePrivileged Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleStandard || r == RolePrivileged
}

// Identity represents an authenticated principal as seen by the client.
type Identity struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"name"`
	Role        Role   `json:"role"`
}

// IsPrivileged reports whether the identity routes to the admin surface.
func (i Identity) IsPrivileged() bool {
	return i.Role == RolePrivileged
}

// IsZero reports whether no identity is present.
func (i Identity) IsZero() bool {
	return i == Identity{}
}

// Session is the single persisted authentication record. It is either fully
// populated (LoggedIn) or empty.
type Session struct {
	Identity    *Identity `json:"identity,omitempty"`
	AccessToken string    `json:"access_token,omitempty"`
	LoggedIn    bool      `json:"logged_in"`
}

// Account is the identity service's stored record for a principal.
type Account struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Name         string    `json:"name" db:"name"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Roles        []string  `json:"roles" db:"roles"`
	Status       string    `json:"status" db:"status"` // active, inactive, suspended
	LastLogin    time.Time `json:"last_login" db:"last_login"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// HasRole checks if the account holds a specific role
func (a *Account) HasRole(role string) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Identity projects the account onto the client-facing identity.
func (a *Account) Identity() Identity {
	role := RoleStandard
	if a.HasRole(string(RolePrivileged)) {
		role = RolePrivileged
	}
	return Identity{
		ID:          a.ID,
		Email:       a.Email,
		DisplayName: a.Name,
		Role:        role,
	}
}
