package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/hongminglow/clubcore/internal/storage"
)

var errMissingRequest = fmt.Errorf("%w: request or response missing", ErrNoSession)

// TrialGuard admits only clubs whose trial or subscription has not expired.
type TrialGuard struct {
	deps Deps
}

// NewTrialGuard builds the trial gate.
func NewTrialGuard(deps Deps) *TrialGuard {
	return &TrialGuard{deps: deps.withDefaults()}
}

// Check reports whether the request's club has an active trial. When the
// request names a club, only the caller's membership in that club counts;
// otherwise the caller's first membership selects the club.
func (t *TrialGuard) Check(req Request) bool {
	return t.run(req).Outcome == OutcomeOK
}

// WithTrialGuard wraps next so it only runs for clubs with an active trial.
// No session goes to the login page, a bad club id or a caller outside the
// club goes to not-authorized, and every other failure goes to checkout.
func (t *TrialGuard) WithTrialGuard(next PageFunc) PageFunc {
	return func(req Request) Result {
		res := t.run(req)
		switch res.Outcome {
		case OutcomeOK:
			return next(req)
		case OutcomeNoSession:
			return redirectTo(LoginPath, res.Outcome, res.Err)
		case OutcomeInvalidTenant, OutcomeNoMembership:
			return redirectTo(NotAuthorizedPath, res.Outcome, res.Err)
		default:
			return redirectTo(CheckoutPath, res.Outcome, res.Err)
		}
	}
}

func (t *TrialGuard) run(req Request) Result {
	start := t.deps.Now()
	res := Result{Outcome: OutcomeOK}
	if err := t.evaluate(req); err != nil {
		res = Result{Outcome: outcomeFor(err), Err: err}
	}
	record(t.deps, "trial", req, res, t.deps.Now().Sub(start))
	return res
}

func (t *TrialGuard) evaluate(req Request) error {
	if req.Writer == nil || req.Req == nil {
		return errMissingRequest
	}
	id := t.deps.Sessions.Session(req.Writer, req.Req)
	if id == nil {
		return ErrNoSession
	}

	ctx, cancel := context.WithTimeout(req.Req.Context(), t.deps.Timeout)
	defer cancel()

	resolve := func() (string, error) {
		if req.ClubID == "" {
			cu, err := resolveFirstMembership(ctx, t.deps.Memberships, id.ID)
			if err != nil {
				return "", err
			}
			return cu.ClubID, nil
		}
		cu, err := ResolveMembership(ctx, t.deps.Memberships, id.ID, req.ClubID)
		if err != nil {
			return "", err
		}
		return cu.ClubID, nil
	}
	clubID, err := resolve()
	if err != nil {
		return err
	}

	endsAt, err := t.deps.Trials.TrialEndsAt(ctx, clubID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%w: club not found", ErrTrialExpired)
		}
		return fmt.Errorf("%w: %v", ErrBackend, err)
	}
	if endsAt == nil {
		return fmt.Errorf("%w: no trial end set", ErrTrialExpired)
	}
	if !endsAt.After(t.deps.Now()) {
		return fmt.Errorf("%w: ended %s", ErrTrialExpired, endsAt.UTC().Format("2006-01-02T15:04:05Z"))
	}
	return nil
}

// Chain composes the single guard order used by every club route: the trial
// guard first (when given), then the access gate.
func Chain(trial *TrialGuard, gate *Gate) PageFunc {
	if trial == nil {
		return gate.WithClubAuth
	}
	return trial.WithTrialGuard(gate.WithClubAuth)
}
