/*
Package handler provides HTTP handler functions for logging in, registering and logging out.
*/
package handler

import (
	"errors"
	"net/http"
	"strings"

	"complaintportal/internal/app/api"
	"complaintportal/internal/app/gate"
	"complaintportal/internal/app/identity"
	"complaintportal/internal/app/session"
	"complaintportal/internal/pkg/errs"
	"complaintportal/internal/pkg/logx"
	"complaintportal/internal/pkg/req"
	"complaintportal/internal/pkg/resp"
)

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type sessionView struct {
	State    string             `json:"state"`
	Identity *identity.Identity `json:"identity,omitempty"`
}

func viewOf(snap session.Snapshot) sessionView {
	return sessionView{State: snap.State.String(), Identity: snap.Identity}
}

// HandleLanding describes the landing screen: the login form, or a pointer to the dashboard
// when a session is already present.
func HandleLanding(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := deps.Session.Snapshot()

		data := map[string]any{
			"screen":  "login",
			"session": viewOf(snap),
		}
		if snap.Identity != nil {
			data["dashboard"] = gate.DashboardRoute(snap.Identity.Role)
		}
		resp.RespondSuccess(w, r, data)
	}
}

// HandleSession returns the current session snapshot. It never exposes the credential.
func HandleSession(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, viewOf(deps.Session.Snapshot()))
	}
}

// HandleLogin logs in and tells the caller which dashboard to open.
func HandleLogin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input LoginInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		ctx, cancel := deps.remoteContext(r)
		defer cancel()

		role, err := deps.Session.Login(ctx, input.Email, input.Password)
		if err != nil {
			resp.RespondError(w, r, asCustomError(err))
			return
		}

		snap := deps.Session.Snapshot()
		resp.RespondSuccess(w, r, map[string]any{
			"role":     role,
			"redirect": gate.DashboardRoute(role),
			"session":  viewOf(snap),
		})
	}
}

// HandleRegister creates an account. The caller stays logged out. Invalid input is answered
// with the failing fields in data, keyed by field name.
func HandleRegister(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input RegisterInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		role, err := identity.ParseRole(input.Role)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidRole))
			return
		}

		form := api.RegisterInput{
			Name:     strings.TrimSpace(input.Name),
			Email:    strings.TrimSpace(input.Email),
			Password: input.Password,
			Role:     string(role),
		}
		if err := api.Validate(form); err != nil {
			resp.RespondErrorWithData(w, r, asCustomError(err), api.FieldErrors(form))
			return
		}

		ctx, cancel := deps.remoteContext(r)
		defer cancel()

		if err := deps.Session.Register(ctx, input.Name, input.Email, input.Password, role); err != nil {
			resp.RespondError(w, r, asCustomError(err))
			return
		}

		resp.RespondCreated(w, r, map[string]string{
			"notice":   "Registration successful! Please login.",
			"redirect": gate.LandingRoute,
		})
	}
}

// HandleLogout clears the session. Logging out twice is fine.
func HandleLogout(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Session.Logout(r.Context()); err != nil {
			logx.Warn("Logout left stored session fields behind", "error", err.Error())
		}
		resp.RespondSuccess(w, r, map[string]string{"redirect": gate.LandingRoute})
	}
}

func asCustomError(err error) *errs.CustomError {
	var customErr *errs.CustomError
	if errors.As(err, &customErr) {
		return customErr
	}
	return errs.NewError(errs.ErrUnknown, err)
}
