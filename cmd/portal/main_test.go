package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"complaintportal/internal/app/gate"
	"complaintportal/internal/pkg/errs"
)

func TestExitCodeForError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantOut  string
	}{
		{name: "plain", err: errors.New("boom"), wantCode: exitFailure, wantOut: "boom\n"},
		{name: "custom error shows message", err: errs.WithMessage(errs.ErrLoginFailed, "Invalid password"), wantCode: exitFailure, wantOut: "Invalid password\n"},
		{name: "canceled", err: fmt.Errorf("login: %w", context.Canceled), wantCode: exitCanceled, wantOut: "canceled\n"},
		{name: "access denied", err: gate.ErrAccessDenied, wantCode: exitAccessDenied, wantOut: gate.ErrAccessDenied.Error() + "\n"},
		{name: "exit error", err: &exitError{code: 7, err: errors.New("seven")}, wantCode: 7, wantOut: "seven\n"},
		{name: "silent exit error", err: &exitError{code: 2, silent: true}, wantCode: 2, wantOut: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			assert.Equal(t, tc.wantCode, exitCodeForError(tc.err, &out))
			assert.Equal(t, tc.wantOut, out.String())
		})
	}
}

func TestRunMain(t *testing.T) {
	var out bytes.Buffer
	assert.Equal(t, exitOK, runMain(func() error { return nil }, &out))
	assert.Equal(t, exitFailure, runMain(func() error { return errors.New("x") }, &out))
}

func fakeRemote(t *testing.T) *httptest.Server {
	t.Helper()

	writeJSON := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
	complaints := []map[string]any{
		{"id": 1, "studentName": "Bob", "category": "Plumbing", "description": "Leaking tap", "priority": "High", "status": "Pending", "createdAt": "2026-10-01T08:30:00Z"},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		if in["password"] != "pw" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid password"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"token": "t-student", "role": "student", "name": "Bob"})
	})
	mux.HandleFunc("GET /api/complaints/my", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer t-student" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
			return
		}
		writeJSON(w, http.StatusOK, complaints)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func setupEnv(t *testing.T, apiURL string) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("PORTAL_API_URL", apiURL+"/api")
	t.Setenv("PORTAL_STORAGE", "file")
	t.Setenv("PORTAL_SESSION_DIR", t.TempDir())
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSessionSurvivesAcrossCommands(t *testing.T) {
	setupEnv(t, fakeRemote(t).URL)

	out, err := execute(t, "pw\n", "login", "--email", "bob@campus.edu", "--password-stdin")
	require.NoError(t, err)
	assert.Contains(t, out, "Welcome, Bob!")
	assert.Contains(t, out, "/student-dashboard")

	out, err = execute(t, "", "whoami")
	require.NoError(t, err)
	assert.Equal(t, "Bob (student)\n", out)

	out, err = execute(t, "", "complaints", "mine")
	require.NoError(t, err)
	assert.Contains(t, out, "Leaking tap")
	assert.Contains(t, out, "Plumbing")

	_, err = execute(t, "", "complaints", "list")
	var stderr bytes.Buffer
	assert.Equal(t, exitAccessDenied, exitCodeForError(err, &stderr))
	assert.Contains(t, stderr.String(), "admin account required")

	out, err = execute(t, "", "logout")
	require.NoError(t, err)
	assert.Equal(t, "Logged out.\n", out)

	_, err = execute(t, "", "whoami")
	assert.Equal(t, exitAccessDenied, exitCodeForError(err, &bytes.Buffer{}))
}

func TestLoginFailureMessage(t *testing.T) {
	setupEnv(t, fakeRemote(t).URL)

	_, err := execute(t, "wrong\n", "login", "--email", "bob@campus.edu", "--password-stdin")
	require.Error(t, err)

	var stderr bytes.Buffer
	assert.Equal(t, exitFailure, exitCodeForError(err, &stderr))
	assert.Equal(t, "Invalid password\n", stderr.String())
}

func TestLoginRequiresEmailAndPassword(t *testing.T) {
	setupEnv(t, fakeRemote(t).URL)

	_, err := execute(t, "", "login", "--password-stdin")
	assert.EqualError(t, err, "--email is required")

	_, err = execute(t, "", "login", "--email", "bob@campus.edu", "--password-stdin")
	assert.EqualError(t, err, "password is empty")
}

func TestInvalidComplaintFlags(t *testing.T) {
	setupEnv(t, fakeRemote(t).URL)

	_, err := execute(t, "", "complaints", "create", "--category", "Roof", "--description", "Hole")
	assert.Equal(t, "Invalid category.", errs.UserMessage(err))

	_, err = execute(t, "", "complaints", "status", "1", "closed")
	assert.Equal(t, "Invalid status.", errs.UserMessage(err))
}
