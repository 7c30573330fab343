package access

import (
	"errors"
	"net/http"

	"github.com/hongminglow/clubcore/internal/models"
)

// Redirect destinations.
const (
	LoginPath         = "/login"
	NotAuthorizedPath = "/not-authorized"
	CheckoutPath      = "/checkout"
)

var (
	ErrNoSession     = errors.New("no session")
	ErrInvalidTenant = errors.New("invalid club id")
	ErrNoMembership  = errors.New("no club membership")
	ErrTrialExpired  = errors.New("trial expired")
	ErrBackend       = errors.New("backend failure")
)

// Outcome classifies a gate decision.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeNoSession
	OutcomeInvalidTenant
	OutcomeNoMembership
	OutcomeTrialExpired
	OutcomeBackendError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeNoSession:
		return "no_session"
	case OutcomeInvalidTenant:
		return "invalid_tenant"
	case OutcomeNoMembership:
		return "no_membership"
	case OutcomeTrialExpired:
		return "trial_expired"
	case OutcomeBackendError:
		return "backend_error"
	default:
		return "unknown"
	}
}

// outcomeFor maps a resolution error to its outcome; unknown errors are backend failures.
func outcomeFor(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, ErrNoSession):
		return OutcomeNoSession
	case errors.Is(err, ErrInvalidTenant):
		return OutcomeInvalidTenant
	case errors.Is(err, ErrNoMembership):
		return OutcomeNoMembership
	case errors.Is(err, ErrTrialExpired):
		return OutcomeTrialExpired
	default:
		return OutcomeBackendError
	}
}

// Redirect tells the caller where to send the visitor.
type Redirect struct {
	Destination string `json:"destination"`
	Permanent   bool   `json:"permanent"`
}

// Props is the bundle handed to a page or API handler after a successful gate.
type Props struct {
	User        models.Identity `json:"user"`
	ClubUser    models.ClubUser `json:"clubUser"`
	ClubID      string          `json:"clubId"`
	Permissions Table           `json:"permissions"`
}

// Result holds exactly one of Redirect or Props.
type Result struct {
	Redirect *Redirect `json:"redirect,omitempty"`
	Props    *Props    `json:"props,omitempty"`

	Outcome Outcome `json:"-"`
	Err     error   `json:"-"`
}

// Allowed reports whether the result carries props.
func (r Result) Allowed() bool {
	return r.Redirect == nil && r.Props != nil
}

func redirectTo(destination string, outcome Outcome, err error) Result {
	return Result{
		Redirect: &Redirect{Destination: destination, Permanent: false},
		Outcome:  outcome,
		Err:      err,
	}
}

// Request mirrors the { req, res, params: { clubId } } triple a guard receives.
type Request struct {
	Writer http.ResponseWriter
	Req    *http.Request
	ClubID string
}

// PageFunc is anything that turns a Request into a Result: a guard, or a guarded handler.
type PageFunc func(Request) Result
