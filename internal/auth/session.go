package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/hongminglow/clubcore/internal/models"
	"github.com/sirupsen/logrus"
)

// Cookie names holding the provider-issued tokens.
const (
	AccessCookie  = "clubcore-access-token"
	RefreshCookie = "clubcore-refresh-token"
)

// SessionResolver reads the current identity from request cookies or the
// Authorization header. It never fails: an absent or invalid session yields nil.
type SessionResolver struct {
	tokens *TokenManager
	secure bool
	log    *logrus.Logger
}

// NewSessionResolver creates a resolver. secure controls the Secure flag on refreshed cookies.
func NewSessionResolver(tokens *TokenManager, secure bool, log *logrus.Logger) *SessionResolver {
	return &SessionResolver{tokens: tokens, secure: secure, log: log}
}

// Session returns the authenticated identity or nil. When the access token is
// missing or expired but the refresh cookie is valid, a fresh access token is
// minted and written to w (when w is non-nil).
func (s *SessionResolver) Session(w http.ResponseWriter, r *http.Request) *models.Identity {
	if r == nil {
		return nil
	}
	if access := accessToken(r); access != "" {
		id, err := s.tokens.Parse(access, KindAccess)
		if err == nil {
			return &id
		}
		s.log.WithError(err).Debug("session: access token rejected")
	}

	refresh, err := r.Cookie(RefreshCookie)
	if err != nil || refresh.Value == "" {
		return nil
	}
	id, err := s.tokens.Parse(refresh.Value, KindRefresh)
	if err != nil {
		s.log.WithError(err).Debug("session: refresh token rejected")
		return nil
	}
	if w != nil {
		token, err := s.tokens.Generate(id)
		if err != nil {
			s.log.WithError(err).Warn("session: refresh failed")
			return nil
		}
		http.SetCookie(w, s.cookie(AccessCookie, token, s.tokens.ttl))
	}
	return &id
}

// SetSessionCookies persists both tokens for subsequent requests.
func (s *SessionResolver) SetSessionCookies(w http.ResponseWriter, access, refresh string) {
	http.SetCookie(w, s.cookie(AccessCookie, access, s.tokens.ttl))
	http.SetCookie(w, s.cookie(RefreshCookie, refresh, s.tokens.refreshTTL))
}

// ClearSessionCookies expires both session cookies.
func (s *SessionResolver) ClearSessionCookies(w http.ResponseWriter) {
	for _, name := range []string{AccessCookie, RefreshCookie} {
		c := s.cookie(name, "", 0)
		c.MaxAge = -1
		http.SetCookie(w, c)
	}
}

func (s *SessionResolver) cookie(name, value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func accessToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.Fields(header)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
		return ""
	}
	if c, err := r.Cookie(AccessCookie); err == nil {
		return c.Value
	}
	return ""
}
