package middleware

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/hongminglow/clubcore/internal/access"
	"github.com/hongminglow/clubcore/internal/http/respond"
)

// Route variables read by the club guards.
const (
	ClubIDVar  = "clubId"
	SectionVar = "section"
)

// ClubAuth adapts the access gates to HTTP handlers. Pages get redirects,
// API routes get 403 JSON.
type ClubAuth struct {
	gate       *access.Gate
	trial      *access.TrialGuard
	table      access.Table
	trialGated map[string]bool
	log        *logrus.Logger
}

// NewClubAuth wires the gates. Sections listed in trialGated run the trial
// guard before the access gate.
func NewClubAuth(gate *access.Gate, trial *access.TrialGuard, trialGated []string, log *logrus.Logger) *ClubAuth {
	gated := make(map[string]bool, len(trialGated))
	for _, s := range trialGated {
		gated[s] = true
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ClubAuth{gate: gate, trial: trial, table: gate.Table(), trialGated: gated, log: log}
}

// TrialGated reports whether section runs behind the trial guard.
func (c *ClubAuth) TrialGated(section string) bool {
	return c.trialGated[section]
}

func (c *ClubAuth) chain(section string) access.PageFunc {
	if c.trialGated[section] {
		return access.Chain(c.trial, c.gate)
	}
	return access.Chain(nil, c.gate)
}

// Page guards a page route. An empty section means the club home page when
// the route has no {section} variable, or the routed section otherwise.
func (c *ClubAuth) Page(section string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sec := sectionOf(r, section)
			if sec != "" && !c.known(sec) {
				respond.Error(w, http.StatusNotFound, "Not found")
				return
			}

			res := c.chain(sec)(access.Request{Writer: w, Req: r, ClubID: mux.Vars(r)[ClubIDVar]})
			if !res.Allowed() {
				redirect(w, r, res.Redirect)
				return
			}
			if sec != "" && !access.HasAccess(&res.Props.ClubUser, res.Props.Permissions, sec, access.DefaultAction) {
				c.log.WithFields(logrus.Fields{"club_id": res.Props.ClubID, "section": sec, "role": res.Props.ClubUser.Role}).
					Warn("page view denied")
				redirect(w, r, &access.Redirect{Destination: access.NotAuthorizedPath})
				return
			}
			next.ServeHTTP(w, r.WithContext(access.WithProps(r.Context(), res.Props)))
		})
	}
}

// API guards an API route with a section/action permission check. An empty
// section is read from the {section} route variable.
func (c *ClubAuth) API(section, action string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sec := sectionOf(r, section)
			if !c.known(sec) {
				respond.Error(w, http.StatusNotFound, "Not found")
				return
			}

			props, ok := c.admit(w, r, sec)
			if !ok {
				return
			}
			act := c.table.ResolveAction(sec, action)
			if !access.HasAccess(&props.ClubUser, props.Permissions, sec, act) {
				respond.Error(w, http.StatusForbidden, "No permission")
				return
			}
			next.ServeHTTP(w, r.WithContext(access.WithProps(r.Context(), props)))
		})
	}
}

// Member guards an API route that only needs club membership.
func (c *ClubAuth) Member() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			props, ok := c.admit(w, r, "")
			if !ok {
				return
			}
			next.ServeHTTP(w, r.WithContext(access.WithProps(r.Context(), props)))
		})
	}
}

func (c *ClubAuth) admit(w http.ResponseWriter, r *http.Request, section string) (*access.Props, bool) {
	res := c.chain(section)(access.Request{Writer: w, Req: r, ClubID: mux.Vars(r)[ClubIDVar]})
	if !res.Allowed() {
		respond.Error(w, http.StatusForbidden, "Access denied")
		return nil, false
	}
	return res.Props, true
}

func (c *ClubAuth) known(section string) bool {
	_, ok := c.table[section]
	return ok
}

func sectionOf(r *http.Request, fixed string) string {
	if fixed != "" {
		return fixed
	}
	return mux.Vars(r)[SectionVar]
}

func redirect(w http.ResponseWriter, r *http.Request, to *access.Redirect) {
	status := http.StatusFound
	if to.Permanent {
		status = http.StatusPermanentRedirect
	}
	http.Redirect(w, r, to.Destination, status)
}
