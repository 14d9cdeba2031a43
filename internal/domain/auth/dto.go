// internal/domain/auth/dto.go
package auth

// SignupRequest for account creation
type SignupRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
	Name      string `json:"name" binding:"required"`
	IPAddress string `json:"-"`
	UserAgent string `json:"-"`
}

// LoginRequest for user login
type LoginRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
	IPAddress string `json:"-"`
	UserAgent string `json:"-"`
}

// AuthResponse is the wire shape returned by the login and signup endpoints.
type AuthResponse struct {
	Success     bool      `json:"success"`
	Message     string    `json:"message,omitempty"`
	User        *Identity `json:"user,omitempty"`
	AccessToken string    `json:"accessToken,omitempty"`
}

// Authenticated reports whether the response carries a usable session.
func (r *AuthResponse) Authenticated() bool {
	return r != nil && r.Success && r.User != nil && r.AccessToken != ""
}

// LoginResult is what the identity service's auth use case hands back to
// the transport layer.
type LoginResult struct {
	AccessToken string
	JTI         string
	User        Identity
}
