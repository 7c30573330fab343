package access

import (
	"context"
	"net/http"
	"time"

	"github.com/hongminglow/clubcore/internal/models"
	"github.com/hongminglow/clubcore/internal/observability"
	"github.com/sirupsen/logrus"
)

// DefaultTimeout bounds one gate evaluation when Deps.Timeout is zero.
const DefaultTimeout = 5 * time.Second

// Sessions resolves the current identity; nil means anonymous.
type Sessions interface {
	Session(w http.ResponseWriter, r *http.Request) *models.Identity
}

// Deps are the collaborators shared by Gate and TrialGuard.
type Deps struct {
	Sessions    Sessions
	Memberships Memberships
	Trials      Trials
	Table       Table
	Timeout     time.Duration
	Logger      *logrus.Logger
	Metrics     *observability.Metrics
	Now         func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Timeout <= 0 {
		d.Timeout = DefaultTimeout
	}
	if d.Logger == nil {
		d.Logger = logrus.StandardLogger()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Table == nil {
		d.Table = DefaultTable()
	}
	return d
}

// Gate is the access gate run at the start of every club-scoped request.
type Gate struct {
	deps Deps
}

// NewGate builds the access gate.
func NewGate(deps Deps) *Gate {
	return &Gate{deps: deps.withDefaults()}
}

// Table returns a copy of the permission table the gate hands out.
func (g *Gate) Table() Table {
	return g.deps.Table.Clone()
}

// WithClubAuth runs session, club id and membership checks in that order and
// returns either a redirect or the props bundle.
func (g *Gate) WithClubAuth(req Request) Result {
	start := g.deps.Now()
	res := g.evaluate(req)
	record(g.deps, "access", req, res, g.deps.Now().Sub(start))
	return res
}

func (g *Gate) evaluate(req Request) Result {
	id := g.deps.Sessions.Session(req.Writer, req.Req)
	if id == nil {
		return redirectTo(LoginPath, OutcomeNoSession, ErrNoSession)
	}

	if !ValidTenantID(req.ClubID) {
		return redirectTo(NotAuthorizedPath, OutcomeInvalidTenant, ErrInvalidTenant)
	}

	ctx, cancel := context.WithTimeout(req.Req.Context(), g.deps.Timeout)
	defer cancel()

	cu, err := ResolveMembership(ctx, g.deps.Memberships, id.ID, req.ClubID)
	if err != nil {
		return redirectTo(NotAuthorizedPath, outcomeFor(err), err)
	}

	return Result{
		Outcome: OutcomeOK,
		Props: &Props{
			User:        *id,
			ClubUser:    *cu,
			ClubID:      cu.ClubID,
			Permissions: g.deps.Table.Clone(),
		},
	}
}

// record logs and counts one decision.
func record(deps Deps, gate string, req Request, res Result, elapsed time.Duration) {
	deps.Metrics.ObserveGate(gate, res.Outcome.String(), elapsed)

	entry := deps.Logger.WithFields(logrus.Fields{
		"gate":    gate,
		"outcome": res.Outcome.String(),
		"club_id": req.ClubID,
	})
	if res.Props != nil {
		entry = entry.WithField("user_id", res.Props.User.ID)
	}
	if res.Err != nil {
		entry = entry.WithError(res.Err)
	}

	switch res.Outcome {
	case OutcomeOK, OutcomeNoSession:
		entry.Debug("gate decision")
	case OutcomeInvalidTenant:
		if IsIgnoredSegment(req.ClubID) {
			entry.Debug("gate decision")
		} else {
			entry.Warn("invalid club id")
		}
	case OutcomeBackendError:
		entry.Error("gate backend failure")
	default:
		entry.Warn("gate denied")
	}
}
