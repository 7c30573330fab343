package models

import "time"

const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Club is one tenant.
type Club struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	TrialEndsAt *time.Time `json:"trial_ends_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Role is a named permission level scoped to a club.
type Role struct {
	ID     string `json:"id"`
	ClubID string `json:"club_id"`
	Name   string `json:"name"`
}

// ClubUser links one identity to one club. Role holds the resolved role name.
type ClubUser struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ClubID    string    `json:"club_id"`
	RoleID    string    `json:"role_id"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// ClubMembership is a ClubUser joined with its club's display name.
type ClubMembership struct {
	ClubID   string `json:"club_id"`
	ClubName string `json:"club_name"`
	Role     string `json:"role"`
}
