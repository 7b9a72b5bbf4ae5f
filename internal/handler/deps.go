package handler

import (
	"context"
	"net/http"
	"time"

	"complaintportal/internal/app/api"
	"complaintportal/internal/app/session"
	"complaintportal/internal/configs"
)

// ComplaintService is the complaint side of the remote service. *api.Client satisfies it.
type ComplaintService interface {
	ListComplaints(ctx context.Context, f api.Filter) ([]api.Complaint, error)
	MyComplaints(ctx context.Context) ([]api.Complaint, error)
	CreateComplaint(ctx context.Context, nc api.NewComplaint) (*api.Complaint, error)
	UpdateStatus(ctx context.Context, id api.ComplaintID, status api.Status) (*api.Complaint, error)
}

type AppDeps struct {
	Config     *configs.AppConfig
	Session    *session.Store
	Complaints ComplaintService
}

// remoteContext bounds a remote call made on behalf of r by the configured request timeout.
func (d *AppDeps) remoteContext(r *http.Request) (context.Context, context.CancelFunc) {
	timeout := 15 * time.Second
	if d.Config != nil && d.Config.RequestTimeout > 0 {
		timeout = d.Config.RequestTimeout
	}
	return context.WithTimeout(r.Context(), timeout)
}
