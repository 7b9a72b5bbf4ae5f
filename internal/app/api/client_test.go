package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"complaintportal/internal/pkg/errs"
)

type staticCreds string

func (s staticCreds) Credential() string { return string(s) }

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/api/", opts...)
}

func TestLoginSendsCredentialsAndDecodesBody(t *testing.T) {
	var gotAuth, gotRequestID string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")

		var in LoginInput
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, LoginInput{Email: "alice@campus.edu", Password: "pw"}, in)

		_ = json.NewEncoder(w).Encode(map[string]string{"token": "t1", "role": "admin", "name": "Alice"})
	})

	out, err := c.Login(context.Background(), LoginInput{Email: "alice@campus.edu", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, &LoginOutput{Token: "t1", Role: "admin", Name: "Alice"}, out)
	assert.Empty(t, gotAuth, "no credential source means no Authorization header")
	assert.Len(t, gotRequestID, 36)
}

func TestBearerHeaderFromCredentialSource(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[]`))
	})

	c.UseCredentials(staticCreds("secret-token"))
	_, err := c.MyComplaints(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret-token", gotAuth)

	c.UseCredentials(staticCreds(""))
	_, err = c.MyComplaints(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestRejectedCarriesMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Invalid password"}`))
	})

	_, err := c.Login(context.Background(), LoginInput{Email: "a@b.c", Password: "x"})
	re, ok := AsRemote(err)
	require.True(t, ok)
	assert.Equal(t, KindRejected, re.Kind)
	assert.Equal(t, http.StatusUnauthorized, re.Status)
	assert.Equal(t, "Invalid password", re.Message)
	assert.Equal(t, http.StatusUnauthorized, StatusOf(err))
}

func TestServerFailureWithoutMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	})

	err := c.Register(context.Background(), RegisterInput{Name: "Bob", Email: "bob@campus.edu", Password: "pw", Role: "student"})
	re, ok := AsRemote(err)
	require.True(t, ok)
	assert.Equal(t, KindFailure, re.Kind)
	assert.Empty(t, re.Message)
}

func TestMalformedSuccessBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	})

	_, err := c.MyComplaints(context.Background())
	re, ok := AsRemote(err)
	require.True(t, ok)
	assert.Equal(t, KindMalformed, re.Kind)
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url).MyComplaints(context.Background())
	re, ok := AsRemote(err)
	require.True(t, ok)
	assert.Equal(t, KindTransport, re.Kind)
	assert.Zero(t, re.Status)
}

func TestListComplaintsFilterQuery(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`[{"id":7,"studentName":"Bob","category":"Plumbing","description":"Leak","priority":"High","status":"In Progress","createdAt":"2026-10-01T08:30:00Z"}]`))
	})

	list, err := c.ListComplaints(context.Background(), Filter{Category: "All", Status: "In Progress"})
	require.NoError(t, err)
	assert.Equal(t, "status=In+Progress", gotQuery)
	require.Len(t, list, 1)
	assert.Equal(t, ComplaintID("7"), list[0].ID)
	assert.Equal(t, StatusInProgress, list[0].Status)
	assert.Equal(t, time.Date(2026, 10, 1, 8, 30, 0, 0, time.UTC), list[0].CreatedAt)

	_, err = c.ListComplaints(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Empty(t, gotQuery)
}

func TestCreateComplaintValidatesLocally(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"c1","category":"Electrical","description":"Socket sparks","priority":"Medium","status":"Pending"}`))
	})

	_, err := c.CreateComplaint(context.Background(), NewComplaint{Category: CategoryElectrical, Description: "   ", Priority: PriorityMedium})
	assert.Equal(t, errs.ErrComplaintDescriptionRequired, errs.CodeOf(err))
	assert.Equal(t, "Please describe your complaint", errs.UserMessage(err))

	_, err = c.CreateComplaint(context.Background(), NewComplaint{Category: "Roof", Description: "Hole", Priority: PriorityMedium})
	assert.Equal(t, "Invalid category.", errs.UserMessage(err))

	assert.Zero(t, calls.Load())

	created, err := c.CreateComplaint(context.Background(), NewComplaint{Category: CategoryElectrical, Description: "Socket sparks", Priority: PriorityMedium})
	require.NoError(t, err)
	assert.Equal(t, ComplaintID("c1"), created.ID)
	assert.Equal(t, StatusPending, created.Status)
	assert.EqualValues(t, 1, calls.Load())
}

func TestUpdateStatus(t *testing.T) {
	var gotPath, gotMethod string
	var gotBody map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotMethod = r.URL.Path, r.Method
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"id":"c1","status":"Resolved"}`))
	})

	out, err := c.UpdateStatus(context.Background(), "c1", StatusResolved)
	require.NoError(t, err)
	assert.Equal(t, "/api/complaints/c1", gotPath)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, map[string]string{"status": "Resolved"}, gotBody)
	assert.Equal(t, StatusResolved, out.Status)

	_, err = c.UpdateStatus(context.Background(), "c1", "Closed")
	assert.Equal(t, errs.ErrComplaintInvalid, errs.CodeOf(err))
}

func TestParseHelpers(t *testing.T) {
	st, err := ParseStatus("in-progress")
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, st)

	cat, err := ParseCategory("plumbing")
	require.NoError(t, err)
	assert.Equal(t, CategoryPlumbing, cat)

	p, err := ParsePriority("HIGH")
	require.NoError(t, err)
	assert.Equal(t, PriorityHigh, p)

	_, err = ParseStatus("closed")
	assert.Error(t, err)
}

func TestValidateRegisterInput(t *testing.T) {
	assert.NoError(t, Validate(RegisterInput{Name: "Bob", Email: "bob@campus.edu", Password: "pw", Role: "student"}))
	assert.Equal(t, errs.ErrInvalidRole, errs.CodeOf(Validate(RegisterInput{Name: "Bob", Email: "bob@campus.edu", Password: "pw", Role: "janitor"})))
	assert.Equal(t, errs.ErrInvalidParams, errs.CodeOf(Validate(RegisterInput{Name: "Bob", Email: "not-an-email", Password: "pw", Role: "student"})))

	fields := FieldErrors(RegisterInput{Role: "student"})
	assert.Equal(t, "required", fields["name"])
	assert.Equal(t, "required", fields["email"])
}

func TestSummarize(t *testing.T) {
	st := Summarize([]Complaint{
		{Category: CategoryPlumbing, Priority: PriorityHigh, Status: StatusPending},
		{Category: CategoryPlumbing, Priority: PriorityHigh, Status: StatusResolved},
		{Category: CategoryCleaning, Priority: PriorityLow, Status: StatusInProgress},
	})

	assert.Equal(t, 3, st.Total)
	assert.Equal(t, map[Status]int{StatusPending: 1, StatusInProgress: 1, StatusResolved: 1}, st.ByStatus)
	assert.Equal(t, 2, st.ByCategory[CategoryPlumbing])
	assert.Equal(t, 0, st.ByCategory[CategoryElectrical])
	assert.Equal(t, 1, st.HighOpen)

	empty := Summarize(nil)
	assert.Zero(t, empty.Total)
	assert.Len(t, empty.ByStatus, len(Statuses))
}
