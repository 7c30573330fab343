package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hongminglow/clubcore/internal/models"
)

// Token kinds carried in the "typ" claim.
const (
	KindAccess  = "access"
	KindRefresh = "refresh"
)

// ErrWrongTokenKind is returned when a refresh token is presented as an access token or vice versa.
var ErrWrongTokenKind = errors.New("wrong token kind")

// Claims is the JWT payload issued for a session.
type Claims struct {
	Email string `json:"email"`
	Kind  string `json:"typ"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies signed JWTs for authenticated users.
type TokenManager struct {
	secret     []byte
	issuer     string
	ttl        time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenManager creates a manager with the provided secret, issuer, and lifetimes.
func NewTokenManager(secret, issuer string, ttl, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:     []byte(secret),
		issuer:     issuer,
		ttl:        ttl,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// Generate issues an access token for the identity.
func (t *TokenManager) Generate(id models.Identity) (string, error) {
	return t.sign(id, KindAccess, t.ttl)
}

// GenerateRefresh issues a refresh token for the identity.
func (t *TokenManager) GenerateRefresh(id models.Identity) (string, error) {
	return t.sign(id, KindRefresh, t.refreshTTL)
}

// Parse verifies signature, issuer, expiry and kind, and returns the identity.
func (t *TokenManager) Parse(tokenString, kind string) (models.Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(tok *jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return models.Identity{}, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return models.Identity{}, errors.New("parse token: invalid")
	}
	if claims.Kind != kind {
		return models.Identity{}, ErrWrongTokenKind
	}
	if claims.Subject == "" {
		return models.Identity{}, errors.New("parse token: missing subject")
	}
	return models.Identity{ID: claims.Subject, Email: claims.Email}, nil
}

func (t *TokenManager) sign(id models.Identity, kind string, ttl time.Duration) (string, error) {
	now := t.now()
	claims := Claims{
		Email: id.Email,
		Kind:  kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   id.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}
