package access

import (
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/hongminglow/clubcore/internal/models"
	"github.com/hongminglow/clubcore/internal/observability"
	"github.com/hongminglow/clubcore/internal/storage/memory"
)

// fakeSessions returns the identity whose id is in the X-Test-User header.
type fakeSessions struct{}

func (fakeSessions) Session(_ http.ResponseWriter, r *http.Request) *models.Identity {
	if r == nil {
		return nil
	}
	id := r.Header.Get("X-Test-User")
	if id == "" {
		return nil
	}
	return &models.Identity{ID: id, Email: id + "@example.com"}
}

type fixture struct {
	store   *memory.Store
	metrics *observability.Metrics
	deps    Deps
	now     time.Time
}

func newFixture() *fixture {
	store := memory.New()
	metrics := observability.NewMetrics()
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	return &fixture{
		store:   store,
		metrics: metrics,
		now:     now,
		deps: Deps{
			Sessions:    fakeSessions{},
			Memberships: store,
			Trials:      store,
			Logger:      observability.Discard(),
			Metrics:     metrics,
			Now:         func() time.Time { return now },
		},
	}
}

func request(userID, clubID string) Request {
	r := httptest.NewRequest(http.MethodGet, "/"+clubID+"/events", nil)
	if userID != "" {
		r.Header.Set("X-Test-User", userID)
	}
	return Request{Writer: httptest.NewRecorder(), Req: r, ClubID: clubID}
}

func ptr(t time.Time) *time.Time { return &t }

const userA = "0b5b1d2e-8a4f-4c1e-9d53-6f0f3c2b7a10"
