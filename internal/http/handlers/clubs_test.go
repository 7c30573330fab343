package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTrialStatusDaysLeft(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	h := &ClubsHandler{now: func() time.Time { return now }}

	at := func(d time.Duration) *time.Time {
		v := now.Add(d)
		return &v
	}

	s := h.trialStatus("c", at(36*time.Hour))
	assert.True(t, s.Active)
	assert.Equal(t, 2, s.DaysLeft)

	s = h.trialStatus("c", at(time.Minute))
	assert.Equal(t, 1, s.DaysLeft)

	s = h.trialStatus("c", at(-time.Hour))
	assert.False(t, s.Active)
	assert.Zero(t, s.DaysLeft)

	s = h.trialStatus("c", nil)
	assert.False(t, s.Active)
	assert.Nil(t, s.TrialEndsAt)
}

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealth(t *testing.T) {
	h := NewHealthHandler(time.Now(), pingFunc(func(context.Context) error { return nil }))
	rec := httptest.NewRecorder()
	h.handle(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"database":"ok"`)

	h = NewHealthHandler(time.Now(), pingFunc(func(context.Context) error { return errors.New("down") }))
	rec = httptest.NewRecorder()
	h.handle(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
