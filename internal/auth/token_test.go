package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/clubcore/internal/models"
	"github.com/hongminglow/clubcore/internal/observability"
)

var alice = models.Identity{ID: "7d0b6f0e-3c1a-4a51-9b7a-2f7f0f6f1a11", Email: "alice@example.com"}

func newTestManager() *TokenManager {
	return NewTokenManager("test-secret", "clubcore", time.Hour, 24*time.Hour)
}

func TestTokenRoundTrip(t *testing.T) {
	tm := newTestManager()

	access, err := tm.Generate(alice)
	require.NoError(t, err)
	id, err := tm.Parse(access, KindAccess)
	require.NoError(t, err)
	assert.Equal(t, alice, id)

	_, err = tm.Parse(access, KindRefresh)
	assert.ErrorIs(t, err, ErrWrongTokenKind)
}

func TestTokenRejections(t *testing.T) {
	tm := newTestManager()
	access, err := tm.Generate(alice)
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokenManager("other-secret", "clubcore", time.Hour, time.Hour)
		_, err := other.Parse(access, KindAccess)
		assert.Error(t, err)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewTokenManager("test-secret", "someone-else", time.Hour, time.Hour)
		_, err := other.Parse(access, KindAccess)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		later := newTestManager()
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := later.Parse(access, KindAccess)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := tm.Parse("not-a-jwt", KindAccess)
		assert.Error(t, err)
	})
}

func TestSessionResolver(t *testing.T) {
	tm := newTestManager()
	resolver := NewSessionResolver(tm, false, observability.Discard())
	access, err := tm.Generate(alice)
	require.NoError(t, err)
	refresh, err := tm.GenerateRefresh(alice)
	require.NoError(t, err)

	t.Run("anonymous", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		assert.Nil(t, resolver.Session(httptest.NewRecorder(), req))
	})

	t.Run("nil request", func(t *testing.T) {
		assert.Nil(t, resolver.Session(nil, nil))
	})

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+access)
		id := resolver.Session(httptest.NewRecorder(), req)
		require.NotNil(t, id)
		assert.Equal(t, alice.ID, id.ID)
	})

	t.Run("access cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: AccessCookie, Value: access})
		id := resolver.Session(httptest.NewRecorder(), req)
		require.NotNil(t, id)
		assert.Equal(t, alice.Email, id.Email)
	})

	t.Run("refresh token is not an access token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: AccessCookie, Value: refresh})
		assert.Nil(t, resolver.Session(httptest.NewRecorder(), req))
	})

	t.Run("refreshes from refresh cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: AccessCookie, Value: "expired"})
		req.AddCookie(&http.Cookie{Name: RefreshCookie, Value: refresh})
		rec := httptest.NewRecorder()

		id := resolver.Session(rec, req)
		require.NotNil(t, id)
		assert.Equal(t, alice.ID, id.ID)

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, AccessCookie, cookies[0].Name)
		minted, err := tm.Parse(cookies[0].Value, KindAccess)
		require.NoError(t, err)
		assert.Equal(t, alice.ID, minted.ID)
	})
}

func TestSessionCookies(t *testing.T) {
	resolver := NewSessionResolver(newTestManager(), true, observability.Discard())

	rec := httptest.NewRecorder()
	resolver.SetSessionCookies(rec, "a", "r")
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 2)
	for _, c := range cookies {
		assert.True(t, c.HttpOnly)
		assert.True(t, c.Secure)
	}

	rec = httptest.NewRecorder()
	resolver.ClearSessionCookies(rec)
	for _, c := range rec.Result().Cookies() {
		assert.Empty(t, c.Value)
		assert.True(t, c.MaxAge < 0)
	}
}
