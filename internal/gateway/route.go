package gateway

import "galaxy-airline/internal/domain/auth"

// Destination is the screen a session routes to.
type Destination string

const (
	DestLogin          Destination = "login"
	DestUserDashboard  Destination = "user-dashboard"
	DestAdminDashboard Destination = "admin-dashboard"
)

// Route picks the landing screen for sess.
func Route(sess auth.Session) Destination {
	switch {
	case !sess.LoggedIn || sess.Identity == nil:
		return DestLogin
	case sess.Identity.IsPrivileged():
		return DestAdminDashboard
	default:
		return DestUserDashboard
	}
}
