package handlers

import (
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/clubcore/internal/auth"
	"github.com/hongminglow/clubcore/internal/http/respond"
	"github.com/hongminglow/clubcore/internal/models"
	"github.com/hongminglow/clubcore/internal/models/dto"
	"github.com/hongminglow/clubcore/internal/storage"
)

// AuthHandler owns the session endpoints: the auth provider's set-session
// callback, plus signup/login/logout for self-hosted deployments.
type AuthHandler struct {
	store    storage.UserStore
	tokens   *auth.TokenManager
	sessions *auth.SessionResolver
	log      *logrus.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(store storage.UserStore, tokens *auth.TokenManager, sessions *auth.SessionResolver, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{store: store, tokens: tokens, sessions: sessions, log: log}
}

// Register attaches auth routes under /api/auth.
func (h *AuthHandler) Register(r *mux.Router) {
	r.HandleFunc("/api/auth/set-session", h.handleSetSession)
	r.HandleFunc("/api/auth/signup", h.handleSignup)
	r.HandleFunc("/api/auth/login", h.handleLogin)
	r.HandleFunc("/api/auth/logout", h.handleLogout)
}

func (h *AuthHandler) handleSetSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respond.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	var req dto.SetSessionRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if req.Session == nil || req.Session.AccessToken == "" || req.Session.RefreshToken == "" {
		respond.Error(w, http.StatusBadRequest, "Missing tokens")
		return
	}
	h.sessions.SetSessionCookies(w, req.Session.AccessToken, req.Session.RefreshToken)
	h.log.WithField("event", req.Event).Debug("session cookies set")
	respond.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *AuthHandler) handleSignup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respond.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	var req dto.CredentialsRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if problem := credentialsProblem(req.Email, req.Password); problem != "" {
		respond.Error(w, http.StatusBadRequest, problem)
		return
	}
	passwordHash, err := hashPassword(req.Password)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	user, err := h.store.CreateUser(r.Context(), models.User{
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: passwordHash,
	})
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrAlreadyExists):
			respond.Error(w, http.StatusConflict, "User already exists")
		default:
			h.log.WithError(err).Error("create user failed")
			respond.Error(w, http.StatusInternalServerError, "Failed to create user")
		}
		return
	}
	h.issueSession(w, http.StatusCreated, user.Identity())
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respond.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	var req dto.CredentialsRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		respond.Error(w, http.StatusBadRequest, "Email and password are required")
		return
	}
	user, err := h.store.FindByEmail(r.Context(), strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		h.log.WithError(err).Error("login: fetch user failed")
		respond.Error(w, http.StatusInternalServerError, "Failed to fetch user")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		respond.Error(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	h.issueSession(w, http.StatusOK, user.Identity())
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respond.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	h.sessions.ClearSessionCookies(w)
	respond.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *AuthHandler) issueSession(w http.ResponseWriter, status int, id models.Identity) {
	access, err := h.tokens.Generate(id)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}
	refresh, err := h.tokens.GenerateRefresh(id)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}
	h.sessions.SetSessionCookies(w, access, refresh)
	respond.JSON(w, status, dto.SessionResponse{
		SessionTokens: dto.SessionTokens{AccessToken: access, RefreshToken: refresh},
		User:          id,
	})
}

// credentialsProblem returns a client-facing message, or "" when the credentials are acceptable.
func credentialsProblem(email, password string) string {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return "A valid email is required"
	}
	if !utf8.ValidString(password) || utf8.RuneCountInString(password) < 8 {
		return "Password must be at least 8 characters"
	}
	return ""
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
