package gate

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"complaintportal/internal/app/identity"
	"complaintportal/internal/app/session"
	"complaintportal/internal/pkg/errs"
)

type fixedSource session.Snapshot

func (f fixedSource) Snapshot() session.Snapshot { return session.Snapshot(f) }

func authed(role identity.Role) session.Snapshot {
	return session.Snapshot{
		State:    session.Authenticated,
		Identity: &identity.Identity{Name: "Alice", Role: role, Credential: "t1"},
	}
}

func TestEvaluate(t *testing.T) {
	loggedOut := session.Snapshot{State: session.Unauthenticated}
	redirect := Decision{Outcome: Redirect, Target: "/"}
	allow := Decision{Outcome: RenderChildren}
	loading := Decision{Outcome: RenderLoading}

	tests := []struct {
		name     string
		snap     session.Snapshot
		required identity.Role
		want     Decision
	}{
		{name: "uninitialized", snap: session.Snapshot{}, required: identity.RoleAdmin, want: loading},
		{name: "loading ignores identity", snap: session.Snapshot{State: session.Loading, Identity: authed(identity.RoleAdmin).Identity}, required: identity.RoleAdmin, want: loading},
		{name: "logged out, any role", snap: loggedOut, required: identity.RoleNone, want: redirect},
		{name: "logged out, admin", snap: loggedOut, required: identity.RoleAdmin, want: redirect},
		{name: "student on admin page", snap: authed(identity.RoleStudent), required: identity.RoleAdmin, want: redirect},
		{name: "admin on student page", snap: authed(identity.RoleAdmin), required: identity.RoleStudent, want: redirect},
		{name: "student on student page", snap: authed(identity.RoleStudent), required: identity.RoleStudent, want: allow},
		{name: "admin on admin page", snap: authed(identity.RoleAdmin), required: identity.RoleAdmin, want: allow},
		{name: "any role", snap: authed(identity.RoleStudent), required: identity.RoleNone, want: allow},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Evaluate(tc.snap, tc.required))
		})
	}
}

func TestMismatchIsIndistinguishableFromLoggedOut(t *testing.T) {
	mismatch := Evaluate(authed(identity.RoleStudent), identity.RoleAdmin)
	absent := Evaluate(session.Snapshot{State: session.Unauthenticated}, identity.RoleAdmin)
	assert.Equal(t, absent, mismatch)
}

func TestMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	t.Run("loading", func(t *testing.T) {
		rec := httptest.NewRecorder()
		Middleware(fixedSource(session.Snapshot{State: session.Loading}), identity.RoleAdmin)(next).
			ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin-dashboard", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "1", rec.Header().Get("Retry-After"))

		var body struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, errs.ErrSessionLoading, body.Code)
		assert.Equal(t, "Loading...", body.Message)
	})

	t.Run("redirect", func(t *testing.T) {
		rec := httptest.NewRecorder()
		Middleware(fixedSource(authed(identity.RoleStudent)), identity.RoleAdmin)(next).
			ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin-dashboard", nil))

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("Location"))
	})

	t.Run("allow", func(t *testing.T) {
		rec := httptest.NewRecorder()
		Middleware(fixedSource(authed(identity.RoleAdmin)), identity.RoleAdmin)(next).
			ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin-dashboard", nil))

		assert.Equal(t, http.StatusTeapot, rec.Code)
	})
}

func TestRequire(t *testing.T) {
	assert.NoError(t, Require(fixedSource(authed(identity.RoleStudent)), identity.RoleStudent))
	assert.ErrorIs(t, Require(fixedSource(authed(identity.RoleStudent)), identity.RoleAdmin), ErrAccessDenied)
	assert.ErrorIs(t, Require(fixedSource(session.Snapshot{State: session.Unauthenticated}), identity.RoleNone), ErrAccessDenied)
	assert.ErrorIs(t, Require(fixedSource(session.Snapshot{State: session.Loading}), identity.RoleNone), ErrNotReady)
}

func TestDashboardRoute(t *testing.T) {
	assert.Equal(t, "/admin-dashboard", DashboardRoute(identity.RoleAdmin))
	assert.Equal(t, "/student-dashboard", DashboardRoute(identity.RoleStudent))
}
