package dto

import "github.com/hongminglow/clubcore/internal/models"

type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SessionTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type SetSessionRequest struct {
	Event   string         `json:"event"`
	Session *SessionTokens `json:"session"`
}

type SessionResponse struct {
	SessionTokens
	User models.Identity `json:"user"`
}
