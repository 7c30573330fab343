package models

import "time"

// Identity is the authenticated principal issued by the auth provider.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// User captures the auth provider's stored account for self-hosted deployments.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Identity returns the principal view of the account.
func (u User) Identity() Identity {
	return Identity{ID: u.ID, Email: u.Email}
}
