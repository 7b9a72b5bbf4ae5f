/*
Package session holds the portal client's single source of truth for "who is logged in".

A Store caches the bearer credential, role and display name in durable storage so the identity
survives a restart. It is the only component that calls the remote login and registration
operations. Consumers get value snapshots and never touch the storage handle.

The store moves Uninitialized -> Loading -> {Unauthenticated, Authenticated}. Loading is
entered and left exactly once, by Initialize. After that only Login and Logout move between
the two settled states; nothing expires on its own.
*/
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"complaintportal/internal/app/api"
	"complaintportal/internal/app/identity"
	"complaintportal/internal/app/storage"
	"complaintportal/internal/metrics"
	"complaintportal/internal/pkg/errs"
	"complaintportal/internal/pkg/logx"
)

// State is the lifecycle position of a Store.
type State int

const (
	Uninitialized State = iota
	Loading
	Unauthenticated
	Authenticated
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Loading:
		return "loading"
	case Unauthenticated:
		return "unauthenticated"
	case Authenticated:
		return "authenticated"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Settled reports whether the startup read has completed.
func (s State) Settled() bool {
	return s == Unauthenticated || s == Authenticated
}

// Snapshot is a read-only copy of the store's state.
type Snapshot struct {
	State    State
	Identity *identity.Identity
}

// Loading reports whether consumers must still wait for the startup read.
func (s Snapshot) Loading() bool {
	return !s.State.Settled()
}

// Authenticator is the remote side of the session: login and registration.
type Authenticator interface {
	Login(ctx context.Context, in api.LoginInput) (*api.LoginOutput, error)
	Register(ctx context.Context, in api.RegisterInput) error
}

// Store is the session store. Create one per running client with New.
type Store struct {
	kv     storage.KV
	remote Authenticator

	initOnce sync.Once
	initErr  error

	// writeMu serializes Login and Logout from the first storage write until memory
	// matches storage.
	writeMu sync.Mutex

	mu       sync.RWMutex
	state    State
	identity *identity.Identity
}

// New returns an uninitialized Store.
func New(kv storage.KV, remote Authenticator) *Store {
	return &Store{kv: kv, remote: remote}
}

// Initialize performs the one-time startup read of the durable fields. If token, role and
// name are all present the store becomes Authenticated, otherwise Unauthenticated. A storage
// error is returned, and the store still settles as Unauthenticated. Later calls are no-ops
// that return the first call's error.
func (s *Store) Initialize(ctx context.Context) error {
	s.initOnce.Do(func() {
		s.mu.Lock()
		if s.state == Uninitialized {
			s.state = Loading
		}
		s.mu.Unlock()

		id, err := s.readDurable(ctx)
		if err != nil {
			logx.Error(err, "Session startup read failed, continuing logged out")
			s.initErr = err
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		// A login that settled while the read was in flight wins.
		if s.state != Loading {
			return
		}
		if id != nil {
			s.identity = id
			s.state = Authenticated
			logx.Debug("Session restored", "name", id.Name, "role", id.Role.String())
			return
		}
		s.state = Unauthenticated
	})
	return s.initErr
}

func (s *Store) readDurable(ctx context.Context) (*identity.Identity, error) {
	values := make(map[string]string, len(storage.SessionKeys))
	for _, key := range storage.SessionKeys {
		v, ok, err := s.kv.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("session: read %s: %w", key, err)
		}
		if !ok {
			return nil, nil
		}
		values[key] = v
	}

	id, ok := identity.FromFields(values[storage.KeyToken], values[storage.KeyRole], values[storage.KeyName])
	if !ok {
		logx.Warn("Ignoring incomplete or invalid stored session")
		return nil, nil
	}
	return &id, nil
}

// Login calls the remote login operation. On success the three durable fields are written,
// the in-memory identity is replaced and the role is returned so the caller can route
// without reading the store again.
//
// Every failure is an *errs.CustomError: its Message is the remote payload's "message", or
// "Login failed" when there is none. The identity is unchanged on failure, except when the
// session cannot be saved: storage is cleared then, and so is the identity.
func (s *Store) Login(ctx context.Context, email, password string) (role identity.Role, err error) {
	defer func() {
		metrics.SessionOperationsTotal.WithLabelValues("login", metrics.Outcome(err)).Inc()
	}()

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return identity.RoleNone, errs.NewError(errs.ErrLoginFailed)
	}

	out, err := s.remote.Login(ctx, api.LoginInput{Email: email, Password: password})
	if err != nil {
		logx.Warn("Login rejected", "email", email, "error", err.Error())
		return identity.RoleNone, normalize(err, errs.ErrLoginFailed)
	}

	id, ok := identity.FromFields(out.Token, out.Role, out.Name)
	if !ok {
		logx.Warn("Login response is missing fields or carries an unknown role", "email", email, "role", out.Role)
		return identity.RoleNone, errs.NewError(errs.ErrLoginFailed)
	}
	id.Email = email

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.persist(ctx, id); err != nil {
		logx.Error(err, "Could not persist session after login", "email", email)
		s.mu.Lock()
		s.identity = nil
		s.state = Unauthenticated
		s.mu.Unlock()
		return identity.RoleNone, errs.NewError(errs.ErrSessionPersistFailed)
	}

	s.mu.Lock()
	s.identity = &id
	s.state = Authenticated
	s.mu.Unlock()

	logx.Info("Logged in", "name", id.Name, "role", id.Role.String())
	return id.Role, nil
}

// persist writes the three durable fields. If any write fails, whatever was written is
// removed again so a later startup read never sees a mix of two sessions.
func (s *Store) persist(ctx context.Context, id identity.Identity) error {
	values := map[string]string{
		storage.KeyToken: id.Credential,
		storage.KeyRole:  string(id.Role),
		storage.KeyName:  id.Name,
	}
	for _, key := range storage.SessionKeys {
		if err := s.kv.Set(ctx, key, values[key]); err != nil {
			if rbErr := s.clearDurable(context.WithoutCancel(ctx)); rbErr != nil {
				err = errors.Join(err, rbErr)
			}
			return fmt.Errorf("session: write %s: %w", key, err)
		}
	}
	return nil
}

// Register calls the remote registration operation. It never changes the identity:
// registering does not log in.
func (s *Store) Register(ctx context.Context, name, email, password string, role identity.Role) (err error) {
	defer func() {
		metrics.SessionOperationsTotal.WithLabelValues("register", metrics.Outcome(err)).Inc()
	}()

	in := api.RegisterInput{
		Name:     strings.TrimSpace(name),
		Email:    strings.TrimSpace(email),
		Password: password,
		Role:     string(role),
	}
	if err := api.Validate(in); err != nil {
		return err
	}

	if err := s.remote.Register(ctx, in); err != nil {
		logx.Warn("Registration rejected", "email", in.Email, "error", err.Error())
		return normalize(err, errs.ErrRegistrationFailed)
	}

	logx.Info("Registered account", "email", in.Email, "role", role.String())
	return nil
}

// Logout removes the durable fields and clears the identity. It is safe to call when
// already logged out. The in-memory identity is cleared even if storage fails.
func (s *Store) Logout(ctx context.Context) (err error) {
	defer func() {
		metrics.SessionOperationsTotal.WithLabelValues("logout", metrics.Outcome(err)).Inc()
	}()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.identity = nil
	s.state = Unauthenticated
	s.mu.Unlock()

	if err := s.clearDurable(ctx); err != nil {
		logx.Error(err, "Could not clear stored session")
		return fmt.Errorf("session: logout: %w", err)
	}
	return nil
}

func (s *Store) clearDurable(ctx context.Context) error {
	var errList []error
	for _, key := range storage.SessionKeys {
		if err := s.kv.Delete(ctx, key); err != nil {
			errList = append(errList, err)
		}
	}
	return errors.Join(errList...)
}

// Snapshot returns a copy of the current state and identity.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{State: s.state}
	if s.identity != nil {
		id := *s.identity
		snap.Identity = &id
	}
	return snap
}

// State returns the current lifecycle state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Credential returns the bearer token of the current identity, or "".
// It makes Store an api.CredentialSource.
func (s *Store) Credential() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return ""
	}
	return s.identity.Credential
}

// normalize folds any remote failure into the one user-facing error shape.
func normalize(err error, code int) *errs.CustomError {
	var customErr *errs.CustomError
	if errors.As(err, &customErr) {
		return customErr
	}
	if re, ok := api.AsRemote(err); ok {
		return errs.WithMessage(code, re.Message)
	}
	return errs.NewError(code)
}
