package models

import "time"

// Invite offers a club role to an email address until it expires or is accepted.
// Role carries the role name on the way in and the resolved name on the way out.
type Invite struct {
	ID        string    `json:"id"`
	ClubID    string    `json:"club_id"`
	Email     string    `json:"email"`
	RoleID    string    `json:"role_id"`
	Role      string    `json:"role"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Accepted  bool      `json:"accepted"`
	CreatedAt time.Time `json:"created_at"`
}
