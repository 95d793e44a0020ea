// Package session owns the authentication state: the bearer credential,
// the current user, and the login/logout/restore lifecycle.
package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/encuestas-platform/client-layer/internal/domain/auth"
	"github.com/encuestas-platform/client-layer/internal/httputil"
	"github.com/encuestas-platform/client-layer/internal/persist"
	"github.com/encuestas-platform/client-layer/pkg/logger"
)

// StoreID keys this store's persisted payload.
const StoreID = "session"

// errLoginFallback surfaces when the backend supplies no message.
const errLoginFallback = "Error de autenticación"

// Status is the session lifecycle state.
type Status string

const (
	StatusAnonymous     Status = "ANONYMOUS"
	StatusRestoring     Status = "RESTORING"
	StatusAuthenticated Status = "AUTHENTICATED"
	StatusError         Status = "ERROR"
)

// API is the slice of the auth service the store drives.
type API interface {
	Login(ctx context.Context, req auth.LoginRequest) (auth.LoginResponse, error)
	CurrentUser(ctx context.Context) (auth.User, error)
}

// LoginResult tells the caller whether login succeeded without making it
// handle a Go error; the failure message is already reduced for display.
type LoginResult struct {
	Success bool
	Error   string
}

// State is a point-in-time copy of the session.
type State struct {
	User      *auth.User
	Token     string
	Status    Status
	Loading   bool
	LastError string
}

// Store is the process-wide session container. All mutation goes through
// its actions; the mutex is never held across a network call.
type Store struct {
	svc     API
	persist *persist.Adapter
	log     *logger.Logger

	mu        sync.Mutex
	user      *auth.User
	token     string
	status    Status
	loading   bool
	lastError string
}

var _ httputil.TokenSource = (*Store)(nil)

// New constructs the store and rehydrates the persisted credential. A
// restored token leaves the store in RESTORING until InitAuth resolves it.
func New(svc API, adapter *persist.Adapter, log *logger.Logger) *Store {
	if log == nil {
		log = logger.NewDefault("session")
	}
	s := &Store{
		svc:     svc,
		persist: adapter,
		log:     log,
		status:  StatusAnonymous,
	}

	if adapter != nil {
		adapter.Register(StoreID, s.snapshot)
		restored := adapter.Rehydrate(StoreID)
		if raw, ok := restored["token"]; ok {
			var token string
			if err := json.Unmarshal(raw, &token); err == nil && token != "" {
				s.token = token
				s.status = StatusRestoring
			}
		}
	}
	return s
}

// snapshot serializes the persistable fields. The adapter filters it
// through its allowlist.
func (s *Store) snapshot() map[string]json.RawMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]json.RawMessage, 2)
	if raw, err := json.Marshal(s.token); err == nil {
		out["token"] = raw
	}
	if raw, err := json.Marshal(s.user); err == nil {
		out["user"] = raw
	}
	return out
}

// Token implements httputil.TokenSource.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		Token:     s.token,
		Status:    s.status,
		Loading:   s.loading,
		LastError: s.lastError,
	}
	if s.user != nil {
		u := *s.user
		st.User = &u
	}
	return st
}

// IsAuthenticated reports whether a credential is present.
func (s *Store) IsAuthenticated() bool {
	return s.Token() != ""
}

// IsAdmin reports whether the loaded user carries the admin role.
func (s *Store) IsAdmin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil && s.user.IsAdmin()
}

func (s *Store) beginAction() {
	s.mu.Lock()
	s.loading = true
	s.lastError = ""
	s.mu.Unlock()
}

func (s *Store) endAction() {
	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()
}

// Login authenticates and stores the credential and user. It never returns
// a Go error: the result carries the reduced failure message so the caller
// can show it inline.
func (s *Store) Login(ctx context.Context, username, password string) LoginResult {
	s.beginAction()
	defer s.endAction()

	resp, err := s.svc.Login(ctx, auth.LoginRequest{Username: username, Password: password})
	if err != nil {
		msg := httputil.ErrorMessage(err, errLoginFallback)
		s.mu.Lock()
		s.lastError = msg
		s.status = StatusError
		s.mu.Unlock()
		s.log.WithError(err).WithField("username", username).Warn("login failed")
		return LoginResult{Success: false, Error: msg}
	}

	s.mu.Lock()
	s.token = resp.Token
	user := resp.User
	s.user = &user
	s.status = StatusAuthenticated
	s.mu.Unlock()
	s.flush()

	s.log.WithField("user_id", resp.User.ID).Info("session established")
	return LoginResult{Success: true}
}

// InitAuth restores the session from a persisted credential. Any failure,
// including a credential whose exp claim already passed, degrades to
// anonymous via Logout so a stale token never outlives this call. The
// application must await it before rendering protected content.
func (s *Store) InitAuth(ctx context.Context) {
	s.mu.Lock()
	token := s.token
	restored := s.user == nil && token != ""
	if restored {
		s.status = StatusRestoring
	}
	s.mu.Unlock()

	if !restored {
		return
	}

	if tokenExpired(token) {
		s.log.Info("stored credential expired, degrading to anonymous")
		s.Logout()
		return
	}

	user, err := s.svc.CurrentUser(ctx)
	if err != nil {
		s.log.WithError(err).Warn("session restore failed, degrading to anonymous")
		s.Logout()
		return
	}

	s.mu.Lock()
	s.user = &user
	s.status = StatusAuthenticated
	s.mu.Unlock()
	s.flush()

	s.log.WithField("user_id", user.ID).Info("session restored")
}

// Logout clears the credential, user, and error synchronously. Idempotent.
func (s *Store) Logout() {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.lastError = ""
	s.status = StatusAnonymous
	s.mu.Unlock()
	s.flush()
}

func (s *Store) flush() {
	if s.persist != nil {
		s.persist.Flush(StoreID)
	}
}

// tokenExpired inspects the credential's exp claim without verifying the
// signature; only the backend can do that. A token that does not parse as
// a JWT or carries no exp claim is left for the backend to judge.
func tokenExpired(token string) bool {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
