package dto

import "time"

type CreateClubRequest struct {
	Name string `json:"name"`
}

type GrantAccessRequest struct {
	UserID string `json:"user_id"`
}

type TrialStatus struct {
	ClubID      string     `json:"club_id"`
	TrialEndsAt *time.Time `json:"trial_ends_at"`
	DaysLeft    int        `json:"days_left"`
	Active      bool       `json:"active"`
}

type PermissionsResponse struct {
	Role        string                         `json:"role"`
	Permissions map[string]map[string][]string `json:"permissions"`
	Can         map[string]map[string]bool     `json:"can"`
}

type CreateInviteRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}
