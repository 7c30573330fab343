package access

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/clubcore/internal/models"
)

func TestWithClubAuthAnonymous(t *testing.T) {
	f := newFixture()
	club := f.store.AddClub("A", nil)
	gate := NewGate(f.deps)

	res := gate.WithClubAuth(request("", club.ID))

	require.NotNil(t, res.Redirect)
	assert.Equal(t, Redirect{Destination: "/login", Permanent: false}, *res.Redirect)
	assert.Nil(t, res.Props)
	assert.Equal(t, OutcomeNoSession, res.Outcome)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.GateDecisionsTotal.WithLabelValues("access", "no_session")))
}

func TestWithClubAuthNonMember(t *testing.T) {
	f := newFixture()
	club := f.store.AddClub("A", nil)
	gate := NewGate(f.deps)

	res := gate.WithClubAuth(request(userA, club.ID))

	require.NotNil(t, res.Redirect)
	assert.Equal(t, NotAuthorizedPath, res.Redirect.Destination)
	assert.False(t, res.Redirect.Permanent)
	assert.Equal(t, OutcomeNoMembership, res.Outcome)
}

func TestWithClubAuthAdmin(t *testing.T) {
	f := newFixture()
	club := f.store.AddClub("A", nil)
	f.store.AddMembership(userA, club.ID, models.RoleAdmin)
	gate := NewGate(f.deps)

	res := gate.WithClubAuth(request(userA, club.ID))

	require.True(t, res.Allowed())
	assert.Nil(t, res.Redirect)
	assert.Equal(t, "admin", res.Props.ClubUser.Role)
	assert.Equal(t, club.ID, res.Props.ClubID)
	assert.Equal(t, userA, res.Props.User.ID)
	assert.Equal(t, DefaultTable(), res.Props.Permissions)
	assert.True(t, HasAccess(&res.Props.ClubUser, res.Props.Permissions, "events", "edit"))
}

func TestWithClubAuthUppercaseClubID(t *testing.T) {
	f := newFixture()
	club := f.store.AddClub("A", nil)
	f.store.AddMembership(userA, club.ID, models.RoleMember)
	gate := NewGate(f.deps)

	res := gate.WithClubAuth(request(userA, strings.ToUpper(club.ID)))

	require.True(t, res.Allowed())
	assert.Equal(t, club.ID, res.Props.ClubID)
	assert.Equal(t, "member", res.Props.ClubUser.Role)
}

func TestWithClubAuthMemberCannotDeleteVendors(t *testing.T) {
	f := newFixture()
	club := f.store.AddClub("A", nil)
	f.store.AddMembership(userA, club.ID, models.RoleMember)
	gate := NewGate(f.deps)

	res := gate.WithClubAuth(request(userA, club.ID))

	require.True(t, res.Allowed())
	assert.Equal(t, "member", res.Props.ClubUser.Role)
	assert.False(t, HasAccess(&res.Props.ClubUser, res.Props.Permissions, "vendors", "delete"))
	assert.True(t, HasAccess(&res.Props.ClubUser, res.Props.Permissions, "vendors", "view"))
}

func TestWithClubAuthTenantIsolation(t *testing.T) {
	f := newFixture()
	clubA := f.store.AddClub("A", nil)
	clubB := f.store.AddClub("B", nil)
	f.store.AddMembership(userA, clubA.ID, models.RoleAdmin)
	gate := NewGate(f.deps)

	res := gate.WithClubAuth(request(userA, clubB.ID))
	require.NotNil(t, res.Redirect)
	assert.Equal(t, NotAuthorizedPath, res.Redirect.Destination)

	res = gate.WithClubAuth(request(userA, clubA.ID))
	require.True(t, res.Allowed())
	assert.Equal(t, clubA.ID, res.Props.ClubUser.ClubID)
}

func TestWithClubAuthMalformedClubID(t *testing.T) {
	f := newFixture()
	gate := NewGate(f.deps)

	for _, id := range []string{"clubA", "favicon.ico", "", "6ba7b8109dad11d180b400c04fd430c8"} {
		res := gate.WithClubAuth(request(userA, id))
		require.NotNil(t, res.Redirect, id)
		assert.Equal(t, NotAuthorizedPath, res.Redirect.Destination, id)
		assert.Equal(t, OutcomeInvalidTenant, res.Outcome, id)
	}
}

func TestWithClubAuthDefaultsRoleToMember(t *testing.T) {
	f := newFixture()
	club := f.store.AddClub("A", nil)
	f.store.AddMembership(userA, club.ID, "")
	gate := NewGate(f.deps)

	res := gate.WithClubAuth(request(userA, club.ID))

	require.True(t, res.Allowed())
	assert.Equal(t, models.RoleMember, res.Props.ClubUser.Role)
}

func TestWithClubAuthBackendFailureFailsClosed(t *testing.T) {
	f := newFixture()
	club := f.store.AddClub("A", nil)
	f.store.AddMembership(userA, club.ID, models.RoleAdmin)
	f.store.FailWith(errors.New("connection refused"))
	gate := NewGate(f.deps)

	res := gate.WithClubAuth(request(userA, club.ID))

	require.NotNil(t, res.Redirect)
	assert.Equal(t, NotAuthorizedPath, res.Redirect.Destination)
	assert.Equal(t, OutcomeBackendError, res.Outcome)
	assert.ErrorIs(t, res.Err, ErrBackend)
}

// blockingStore waits for the context to end.
type blockingStore struct{}

func (blockingStore) FindMembership(ctx context.Context, _, _ string) (models.ClubUser, error) {
	<-ctx.Done()
	return models.ClubUser{}, ctx.Err()
}

func (blockingStore) FindFirstMembership(ctx context.Context, _ string) (models.ClubUser, error) {
	<-ctx.Done()
	return models.ClubUser{}, ctx.Err()
}

func (blockingStore) TrialEndsAt(ctx context.Context, _ string) (*time.Time, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestWithClubAuthTimeout(t *testing.T) {
	f := newFixture()
	f.deps.Memberships = blockingStore{}
	f.deps.Timeout = 20 * time.Millisecond
	gate := NewGate(f.deps)

	done := make(chan Result, 1)
	go func() { done <- gate.WithClubAuth(request(userA, uuid.NewString())) }()

	select {
	case res := <-done:
		require.NotNil(t, res.Redirect)
		assert.Equal(t, NotAuthorizedPath, res.Redirect.Destination)
		assert.Equal(t, OutcomeBackendError, res.Outcome)
	case <-time.After(2 * time.Second):
		t.Fatal("gate did not honour its timeout")
	}
}

func TestGatePropsCannotMutateTable(t *testing.T) {
	f := newFixture()
	club := f.store.AddClub("A", nil)
	f.store.AddMembership(userA, club.ID, models.RoleMember)
	gate := NewGate(f.deps)

	res := gate.WithClubAuth(request(userA, club.ID))
	require.True(t, res.Allowed())
	res.Props.Permissions["events"]["edit"] = []string{"member"}

	again := gate.WithClubAuth(request(userA, club.ID))
	require.True(t, again.Allowed())
	assert.False(t, HasAccess(&again.Props.ClubUser, again.Props.Permissions, "events", "edit"))
}

func TestPropsContext(t *testing.T) {
	_, ok := PropsFrom(context.Background())
	assert.False(t, ok)

	props := &Props{ClubID: "x"}
	got, ok := PropsFrom(WithProps(context.Background(), props))
	require.True(t, ok)
	assert.Same(t, props, got)
}
