package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"complaintportal/internal/app/api"
	"complaintportal/internal/pkg/errs"
	"complaintportal/internal/pkg/logx"
	"complaintportal/internal/pkg/req"
	"complaintportal/internal/pkg/resp"
)

type StatusInput struct {
	Status string `json:"status"`
}

func displayName(deps *AppDeps) string {
	if id := deps.Session.Snapshot().Identity; id != nil {
		return id.Name
	}
	return ""
}

// complaintError turns a remote failure into the message shown on a dashboard. Local
// validation errors pass through unchanged.
func complaintError(err error, code int) *errs.CustomError {
	var customErr *errs.CustomError
	if errors.As(err, &customErr) {
		return customErr
	}
	if re, ok := api.AsRemote(err); ok {
		if re.Status == http.StatusNotFound {
			return errs.NewError(errs.ErrComplaintNotFound)
		}
		if re.Kind == api.KindRejected {
			return errs.WithMessage(code, re.Message)
		}
	}
	return errs.NewError(code)
}

// HandleStudentDashboard lists the complaints filed by the logged-in student.
func HandleStudentDashboard(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := deps.remoteContext(r)
		defer cancel()

		list, err := deps.Complaints.MyComplaints(ctx)
		if err != nil {
			logx.Warn("Fetching own complaints failed", "error", err.Error())
			resp.RespondError(w, r, complaintError(err, errs.ErrComplaintFetchFailed))
			return
		}
		if list == nil {
			list = []api.Complaint{}
		}

		resp.RespondSuccess(w, r, map[string]any{
			"name":       displayName(deps),
			"categories": api.Categories,
			"priorities": api.Priorities,
			"complaints": list,
		})
	}
}

// HandleCreateComplaint files a complaint for the logged-in student. Invalid input is
// answered with the failing fields in data.
func HandleCreateComplaint(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input api.NewComplaint
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}
		if input.Category == "" {
			input.Category = api.CategoryElectrical
		}
		if input.Priority == "" {
			input.Priority = api.PriorityMedium
		}
		input.Description = strings.TrimSpace(input.Description)
		if err := api.Validate(input); err != nil {
			resp.RespondErrorWithData(w, r, complaintError(err, errs.ErrComplaintSubmitFailed), api.FieldErrors(input))
			return
		}

		ctx, cancel := deps.remoteContext(r)
		defer cancel()

		created, err := deps.Complaints.CreateComplaint(ctx, input)
		if err != nil {
			logx.Warn("Submitting complaint failed", "category", string(input.Category), "error", err.Error())
			resp.RespondError(w, r, complaintError(err, errs.ErrComplaintSubmitFailed))
			return
		}

		resp.RespondCreated(w, r, created)
	}
}

// parseFilter reads ?category=&status=. "All" and empty values mean no filter.
func parseFilter(r *http.Request) (api.Filter, *errs.CustomError) {
	var f api.Filter
	q := r.URL.Query()

	if v := strings.TrimSpace(q.Get("category")); v != "" && !strings.EqualFold(v, "all") {
		c, err := api.ParseCategory(v)
		if err != nil {
			return f, errs.NewError(errs.ErrComplaintInvalid, "category")
		}
		f.Category = string(c)
	}
	if v := strings.TrimSpace(q.Get("status")); v != "" && !strings.EqualFold(v, "all") {
		s, err := api.ParseStatus(v)
		if err != nil {
			return f, errs.NewError(errs.ErrComplaintInvalid, "status")
		}
		f.Status = string(s)
	}
	return f, nil
}

// HandleAdminDashboard lists complaints matching the filter together with statistics over
// every complaint. Both listings are fetched concurrently.
func HandleAdminDashboard(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, customErr := parseFilter(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		ctx, cancel := deps.remoteContext(r)
		defer cancel()

		var filtered, all []api.Complaint
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			filtered, err = deps.Complaints.ListComplaints(gctx, filter)
			return err
		})
		g.Go(func() error {
			var err error
			all, err = deps.Complaints.ListComplaints(gctx, api.Filter{})
			return err
		})
		if err := g.Wait(); err != nil {
			logx.Warn("Fetching complaints failed", "category", filter.Category, "status", filter.Status, "error", err.Error())
			resp.RespondError(w, r, complaintError(err, errs.ErrComplaintFetchFailed))
			return
		}
		if filtered == nil {
			filtered = []api.Complaint{}
		}

		resp.RespondSuccess(w, r, map[string]any{
			"name":       displayName(deps),
			"filter":     map[string]string{"category": filter.Category, "status": filter.Status},
			"statuses":   api.Statuses,
			"stats":      api.Summarize(all),
			"complaints": filtered,
		})
	}
}

// HandleUpdateStatus moves one complaint to a new status.
func HandleUpdateStatus(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := api.ComplaintID(chi.URLParam(r, "id"))

		var input StatusInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}
		status, err := api.ParseStatus(input.Status)
		if err != nil {
			resp.RespondError(w, r, complaintError(err, errs.ErrStatusUpdateFailed))
			return
		}

		ctx, cancel := deps.remoteContext(r)
		defer cancel()

		updated, err := deps.Complaints.UpdateStatus(ctx, id, status)
		if err != nil {
			logx.Warn("Updating complaint status failed", "id", string(id), "status", string(status), "error", err.Error())
			resp.RespondError(w, r, complaintError(err, errs.ErrStatusUpdateFailed))
			return
		}

		logx.Info("Complaint status updated", "id", string(id), "status", string(status))
		resp.RespondSuccess(w, r, updated)
	}
}
