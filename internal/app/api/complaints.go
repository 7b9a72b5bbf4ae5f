package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"complaintportal/internal/pkg/errs"
)

// Category is the facility area a complaint concerns.
type Category string

const (
	CategoryElectrical Category = "Electrical"
	CategoryPlumbing   Category = "Plumbing"
	CategoryFurniture  Category = "Furniture"
	CategoryCleaning   Category = "Cleaning"
	CategoryOther      Category = "Other"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryElectrical, CategoryPlumbing, CategoryFurniture, CategoryCleaning, CategoryOther}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Priority of a complaint.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Priorities lists every priority from lowest to highest.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

func (p Priority) Valid() bool {
	for _, known := range Priorities {
		if p == known {
			return true
		}
	}
	return false
}

// Status is the resolution state of a complaint.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In Progress"
	StatusResolved   Status = "Resolved"
)

// Statuses lists every status in workflow order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusResolved}

func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// canonical folds case, spaces, dashes and underscores so "in-progress" matches "In Progress".
func canonical(s string) string {
	r := strings.NewReplacer(" ", "", "-", "", "_", "")
	return strings.ToLower(r.Replace(strings.TrimSpace(s)))
}

// ParseCategory accepts a category name in any letter case.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if canonical(string(c)) == canonical(s) {
			return c, nil
		}
	}
	return "", errs.NewError(errs.ErrComplaintInvalid, "category")
}

// ParsePriority accepts a priority name in any letter case.
func ParsePriority(s string) (Priority, error) {
	for _, p := range Priorities {
		if canonical(string(p)) == canonical(s) {
			return p, nil
		}
	}
	return "", errs.NewError(errs.ErrComplaintInvalid, "priority")
}

// ParseStatus accepts "In Progress", "in-progress", "in_progress" and similar spellings.
func ParseStatus(s string) (Status, error) {
	for _, st := range Statuses {
		if canonical(string(st)) == canonical(s) {
			return st, nil
		}
	}
	return "", errs.NewError(errs.ErrComplaintInvalid, "status")
}

// ComplaintID accepts both string and numeric ids from the service.
type ComplaintID string

func (id *ComplaintID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ComplaintID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("complaint id: %w", err)
	}
	*id = ComplaintID(n.String())
	return nil
}

// Complaint is owned by the remote service; the client only displays it.
type Complaint struct {
	ID          ComplaintID `json:"id"`
	StudentName string      `json:"studentName"`
	Category    Category    `json:"category"`
	Description string      `json:"description"`
	Priority    Priority    `json:"priority"`
	Status      Status      `json:"status"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// NewComplaint is the body of POST /complaints.
type NewComplaint struct {
	Category    Category `json:"category" validate:"portal_category"`
	Description string   `json:"description" validate:"required,max=2000"`
	Priority    Priority `json:"priority" validate:"portal_priority"`
}

// Filter narrows the admin listing. Empty fields and "All" are omitted from the query.
type Filter struct {
	Category string
	Status   string
}

func (f Filter) query() url.Values {
	q := url.Values{}
	if v := strings.TrimSpace(f.Category); v != "" && !strings.EqualFold(v, "all") {
		q.Set("category", v)
	}
	if v := strings.TrimSpace(f.Status); v != "" && !strings.EqualFold(v, "all") {
		q.Set("status", v)
	}
	return q
}

type statusUpdate struct {
	Status Status `json:"status" validate:"portal_status"`
}

// ListComplaints returns every complaint matching f (admin).
func (c *Client) ListComplaints(ctx context.Context, f Filter) ([]Complaint, error) {
	var out []Complaint
	if err := c.do(ctx, "list_complaints", http.MethodGet, "/complaints", f.query(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MyComplaints returns the complaints filed by the current student.
func (c *Client) MyComplaints(ctx context.Context) ([]Complaint, error) {
	var out []Complaint
	if err := c.do(ctx, "my_complaints", http.MethodGet, "/complaints/my", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateComplaint validates nc locally, then files it.
func (c *Client) CreateComplaint(ctx context.Context, nc NewComplaint) (*Complaint, error) {
	nc.Description = strings.TrimSpace(nc.Description)
	if err := Validate(nc); err != nil {
		return nil, err
	}
	var out Complaint
	if err := c.do(ctx, "create_complaint", http.MethodPost, "/complaints", nil, nc, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateStatus moves complaint id to status (admin).
func (c *Client) UpdateStatus(ctx context.Context, id ComplaintID, status Status) (*Complaint, error) {
	if strings.TrimSpace(string(id)) == "" {
		return nil, errs.NewError(errs.ErrInvalidParams)
	}
	body := statusUpdate{Status: status}
	if err := Validate(body); err != nil {
		return nil, err
	}
	var out Complaint
	path := "/complaints/" + url.PathEscape(string(id))
	if err := c.do(ctx, "update_status", http.MethodPut, path, nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
