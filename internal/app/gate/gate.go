/*
Package gate decides whether a protected screen may be shown for the current session.

Evaluate is a pure function of a session snapshot and a required role. Middleware and Require
adapt its decision to the local portal and to CLI commands.
*/
package gate

import (
	"errors"
	"net/http"

	"complaintportal/internal/app/identity"
	"complaintportal/internal/app/session"
	"complaintportal/internal/metrics"
	"complaintportal/internal/pkg/errs"
	"complaintportal/internal/pkg/logx"
	"complaintportal/internal/pkg/resp"
)

// Routes of the portal screens.
const (
	LandingRoute          = "/"
	StudentDashboardRoute = "/student-dashboard"
	AdminDashboardRoute   = "/admin-dashboard"
)

// DashboardRoute is where a freshly logged-in identity of role goes.
func DashboardRoute(role identity.Role) string {
	if role == identity.RoleAdmin {
		return AdminDashboardRoute
	}
	return StudentDashboardRoute
}

// Outcome is what the caller of Evaluate should do.
type Outcome int

const (
	RenderLoading Outcome = iota
	Redirect
	RenderChildren
)

func (o Outcome) String() string {
	switch o {
	case RenderLoading:
		return "loading"
	case Redirect:
		return "redirect"
	case RenderChildren:
		return "allow"
	}
	return "unknown"
}

// Decision is the result of Evaluate. Target is set only for Redirect.
type Decision struct {
	Outcome Outcome
	Target  string
}

// SnapshotSource is satisfied by *session.Store.
type SnapshotSource interface {
	Snapshot() session.Snapshot
}

var (
	// ErrAccessDenied means the caller has no session or the wrong role.
	ErrAccessDenied = errors.New("please log in with an account that can open this page")

	// ErrNotReady means the session store has not finished its startup read.
	ErrNotReady = errors.New("session is still loading")
)

// Evaluate decides access. A zero required role admits any authenticated identity.
// A missing identity and a role mismatch produce the same redirect.
func Evaluate(snap session.Snapshot, required identity.Role) Decision {
	if snap.Loading() {
		return Decision{Outcome: RenderLoading}
	}
	if snap.Identity == nil {
		return Decision{Outcome: Redirect, Target: LandingRoute}
	}
	if required != identity.RoleNone && snap.Identity.Role != required {
		return Decision{Outcome: Redirect, Target: LandingRoute}
	}
	return Decision{Outcome: RenderChildren}
}

func evaluate(src SnapshotSource, required identity.Role) Decision {
	d := Evaluate(src.Snapshot(), required)
	metrics.GateDecisionsTotal.WithLabelValues(required.String(), d.Outcome.String()).Inc()
	return d
}

// Middleware guards an HTTP handler. While loading it answers 503 with Retry-After, a redirect
// becomes a 302 to the landing route.
func Middleware(src SnapshotSource, required identity.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := evaluate(src, required)

			switch d.Outcome {
			case RenderLoading:
				w.Header().Set("Retry-After", "1")
				resp.RespondError(w, r, errs.NewError(errs.ErrSessionLoading))
			case Redirect:
				logx.Debug("Gate redirect", "path", r.URL.Path, "required_role", required.String())
				http.Redirect(w, r, d.Target, http.StatusFound)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

// Require guards a CLI command. It returns ErrAccessDenied for a redirect and ErrNotReady
// if called before the store settled.
func Require(src SnapshotSource, required identity.Role) error {
	switch evaluate(src, required).Outcome {
	case RenderLoading:
		return ErrNotReady
	case Redirect:
		return ErrAccessDenied
	}
	return nil
}
