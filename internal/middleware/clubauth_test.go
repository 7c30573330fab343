package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/clubcore/internal/access"
	"github.com/hongminglow/clubcore/internal/models"
	"github.com/hongminglow/clubcore/internal/observability"
	"github.com/hongminglow/clubcore/internal/storage/memory"
)

type headerSessions struct{}

func (headerSessions) Session(_ http.ResponseWriter, r *http.Request) *models.Identity {
	if id := r.Header.Get("X-Test-User"); id != "" {
		return &models.Identity{ID: id}
	}
	return nil
}

const (
	admin  = "a1a1a1a1-0000-4000-8000-000000000001"
	member = "b2b2b2b2-0000-4000-8000-000000000002"
)

type harness struct {
	store  *memory.Store
	router *mux.Router
	club   models.Club
}

func newHarness(t *testing.T, trialEndsAt *time.Time) *harness {
	t.Helper()
	store := memory.New()
	club := store.AddClub("Harbour", trialEndsAt)
	store.AddMembership(admin, club.ID, models.RoleAdmin)
	store.AddMembership(member, club.ID, models.RoleMember)

	deps := access.Deps{
		Sessions:    headerSessions{},
		Memberships: store,
		Trials:      store,
		Logger:      observability.Discard(),
	}
	guard := NewClubAuth(access.NewGate(deps), access.NewTrialGuard(deps), []string{"reminders"}, observability.Discard())

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		props, found := access.PropsFrom(r.Context())
		require.True(t, found)
		w.Header().Set("X-Role", props.ClubUser.Role)
		w.WriteHeader(http.StatusOK)
	})

	r := mux.NewRouter()
	r.Handle("/api/{clubId}/checkout/success", guard.API("members", "edit")(ok))
	r.Handle("/api/{clubId}/{section}/{id}", guard.API("", "delete")(ok)).Methods(http.MethodDelete)
	r.Handle("/api/{clubId}/{section}", guard.API("", "add")(ok)).Methods(http.MethodPost)
	r.Handle("/{clubId}", guard.Page("")(ok))
	r.Handle("/{clubId}/{section}", guard.Page("")(ok))
	return &harness{store: store, router: r, club: club}
}

func (h *harness) do(method, path, user string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func future() *time.Time {
	t := time.Now().Add(72 * time.Hour)
	return &t
}

func TestPageRedirects(t *testing.T) {
	h := newHarness(t, future())

	rec := h.do(http.MethodGet, "/"+h.club.ID+"/events", "")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec = h.do(http.MethodGet, "/"+h.club.ID+"/events", "c3c3c3c3-0000-4000-8000-000000000003")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/not-authorized", rec.Header().Get("Location"))

	rec = h.do(http.MethodGet, "/clubA/events", admin)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/not-authorized", rec.Header().Get("Location"))

	rec = h.do(http.MethodGet, "/"+h.club.ID+"/events", admin)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin", rec.Header().Get("X-Role"))

	rec = h.do(http.MethodGet, "/"+h.club.ID, member)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPageRequiresViewPermission(t *testing.T) {
	h := newHarness(t, future())

	rec := h.do(http.MethodGet, "/"+h.club.ID+"/ads-manager", member)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/not-authorized", rec.Header().Get("Location"))

	rec = h.do(http.MethodGet, "/"+h.club.ID+"/ads-manager", admin)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(http.MethodGet, "/"+h.club.ID+"/payroll", admin)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTrialGatedPage(t *testing.T) {
	past := time.Now().Add(-24 * time.Hour)
	h := newHarness(t, &past)

	rec := h.do(http.MethodGet, "/"+h.club.ID+"/reminders", admin)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/checkout", rec.Header().Get("Location"))

	rec = h.do(http.MethodGet, "/"+h.club.ID+"/reminders", "")
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	// Sections outside the trial-gated list stay reachable.
	rec = h.do(http.MethodGet, "/"+h.club.ID+"/events", admin)
	assert.Equal(t, http.StatusOK, rec.Code)

	// A malformed id or an outsider is not sent to pay for someone else's club.
	rec = h.do(http.MethodGet, "/clubA/reminders", admin)
	assert.Equal(t, "/not-authorized", rec.Header().Get("Location"))
	rec = h.do(http.MethodGet, "/"+h.club.ID+"/reminders", "c3c3c3c3-0000-4000-8000-000000000003")
	assert.Equal(t, "/not-authorized", rec.Header().Get("Location"))

	// Checkout itself must work for an expired club, for admins only.
	rec = h.do(http.MethodPost, "/api/"+h.club.ID+"/checkout/success", admin)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = h.do(http.MethodPost, "/api/"+h.club.ID+"/checkout/success", member)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"No permission"}`, rec.Body.String())
}

func TestAPIPermissions(t *testing.T) {
	h := newHarness(t, future())
	vendor := "/api/" + h.club.ID + "/vendors/d4d4d4d4-0000-4000-8000-000000000004"

	rec := h.do(http.MethodDelete, vendor, member)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"No permission"}`, rec.Body.String())

	rec = h.do(http.MethodDelete, vendor, admin)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(http.MethodDelete, vendor, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"Access denied"}`, rec.Body.String())

	// finance has no delete action, so deleting needs edit.
	rec = h.do(http.MethodDelete, "/api/"+h.club.ID+"/finance/x", member)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = h.do(http.MethodDelete, "/api/"+h.club.ID+"/finance/x", admin)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(http.MethodPost, "/api/"+h.club.ID+"/payroll", admin)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPITenantIsolation(t *testing.T) {
	h := newHarness(t, future())
	other := h.store.AddClub("Other", future())

	rec := h.do(http.MethodPost, "/api/"+other.ID+"/events", admin)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"Access denied"}`, rec.Body.String())
}
