// Package session owns the process-wide authentication state.
//
// The store is the single writer of the persisted credential. All
// mutation funnels through four operations: Bootstrap, Login, Logout,
// and ForceInvalidate. Everything else reads an immutable Snapshot.
package session

import (
	"context"
	"sync"

	"github.com/opsdeck/opsdeck/internal/api"
	"github.com/opsdeck/opsdeck/internal/credential"
	"github.com/opsdeck/opsdeck/internal/log"
	"github.com/opsdeck/opsdeck/internal/model"
)

// State is the lifecycle state of the session.
type State int

const (
	// StateBootstrapping is the initial state, before the persisted
	// credential has been read.
	StateBootstrapping State = iota
	// StateVerifying means a credential exists and the profile fetch is
	// in flight.
	StateVerifying
	// StateAuthenticated means the credential was accepted.
	StateAuthenticated
	// StateLoggedOut means no valid credential exists.
	StateLoggedOut
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateBootstrapping:
		return "bootstrapping"
	case StateVerifying:
		return "verifying"
	case StateAuthenticated:
		return "authenticated"
	case StateLoggedOut:
		return "logged-out"
	default:
		return "unknown"
	}
}

// Session is an immutable view of the authentication state.
// Invariant: IsAuthenticated == (Token != ""). User may be nil while
// IsAuthenticated is true during the bootstrap verification window.
type Session struct {
	Token           string
	User            *model.User
	IsAuthenticated bool
	IsLoading       bool
	State           State
}

// Gateway is the slice of the API client the store depends on.
type Gateway interface {
	Login(ctx context.Context, creds api.Credentials) (api.LoginResult, error)
	CurrentUser(ctx context.Context) (model.User, error)
	SetToken(token string)
	ClearToken()
}

// Store is the session state machine.
//
// The mutex is never held across a network call: the gateway's
// auth-failure hook may call ForceInvalidate from the same goroutine
// that issued the request.
type Store struct {
	mu      sync.Mutex
	state   State
	token   string
	user    *model.User
	loading bool

	gateway  Gateway
	creds    credential.Store
	logger   *log.Logger
	onChange func()
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the store logger.
func WithLogger(logger *log.Logger) StoreOption {
	return func(s *Store) { s.logger = logger }
}

// WithOnChange registers a hook invoked after every state transition.
// The guard re-evaluates on it.
func WithOnChange(fn func()) StoreOption {
	return func(s *Store) { s.onChange = fn }
}

// NewStore creates a store in the Bootstrapping state.
func NewStore(gateway Gateway, creds credential.Store, opts ...StoreOption) *Store {
	s := &Store{
		state:   StateBootstrapping,
		loading: true,
		gateway: gateway,
		creds:   creds,
		logger:  log.DefaultLogger(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// OnChange registers the transition hook after construction. Replaces
// any previously registered hook.
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// Snapshot returns the current session state.
func (s *Store) Snapshot() Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	var user *model.User
	if s.user != nil {
		u := *s.user
		user = &u
	}

	return Session{
		Token:           s.token,
		User:            user,
		IsAuthenticated: s.token != "",
		IsLoading:       s.loading,
		State:           s.state,
	}
}

// Bootstrap reads the persisted credential and, if one exists, verifies
// it by fetching the current profile. Terminates in Authenticated or
// LoggedOut; a verification failure of any kind discards the credential.
func (s *Store) Bootstrap(ctx context.Context) error {
	token, err := s.creds.Get()

	s.mu.Lock()
	if s.state != StateBootstrapping {
		s.mu.Unlock()
		return nil
	}

	if err != nil || token == "" {
		s.state = StateLoggedOut
		s.loading = false
		s.mu.Unlock()

		if err != nil {
			s.logger.WithError(err).Warn("discarding unreadable credential")
			_ = s.creds.Remove() //nolint:errcheck
		}
		s.changed()
		return nil
	}

	if info, ierr := credential.Inspect(token); ierr == nil && info.Expired() {
		s.logger.Warn("stored token is past its expiry, verifying anyway", "subject", info.Subject)
	}

	s.token = token
	s.state = StateVerifying
	s.loading = true
	s.mu.Unlock()
	s.gateway.SetToken(token)
	s.changed()

	user, verr := s.gateway.CurrentUser(ctx)

	s.mu.Lock()
	if s.state != StateVerifying {
		// Forced invalidation beat us; the verification result is stale.
		s.mu.Unlock()
		return nil
	}

	if verr != nil {
		s.clearLocked()
		s.mu.Unlock()

		s.logger.WithError(verr).Warn("stored credential rejected")
		_ = s.creds.Remove() //nolint:errcheck
		s.gateway.ClearToken()
		s.changed()
		return verr
	}

	s.user = &user
	s.state = StateAuthenticated
	s.loading = false
	s.mu.Unlock()

	s.logger.Info("session restored", "user", user.Email, "role", string(user.Role))
	s.changed()
	return nil
}

// Login authenticates with the given credentials. On success the
// returned token and profile are stored atomically and the token is
// persisted; on failure the session state is unchanged.
func (s *Store) Login(ctx context.Context, email, password string) (model.User, error) {
	s.mu.Lock()
	prior := s.state
	s.state = StateVerifying
	s.loading = true
	s.mu.Unlock()

	result, err := s.gateway.Login(ctx, api.Credentials{Email: email, Password: password})

	s.mu.Lock()
	if err != nil {
		// Failed attempt: restore the prior state unless a forced
		// invalidation already moved us on.
		if s.state == StateVerifying {
			s.state = prior
			if prior == StateBootstrapping {
				s.state = StateLoggedOut
			}
		}
		s.loading = false
		s.mu.Unlock()

		s.logger.WithError(err).Warn("login failed", "email", email)
		s.changed()
		return model.User{}, err
	}

	s.token = result.Token
	s.user = &result.User
	s.state = StateAuthenticated
	s.loading = false
	s.mu.Unlock()

	s.gateway.SetToken(result.Token)
	if perr := s.creds.Set(result.Token); perr != nil {
		s.logger.WithError(perr).Warn("failed to persist credential")
	}

	s.logger.Info("logged in", "user", result.User.Email, "role", string(result.User.Role))
	s.changed()
	return result.User, nil
}

// Logout clears the session and the persisted credential. Idempotent.
func (s *Store) Logout() {
	s.invalidate("logout")
}

// ForceInvalidate has the same effect as Logout but is triggered by the
// gateway on an authentication failure. Safe to call from any state,
// including mid-verification.
func (s *Store) ForceInvalidate() {
	s.invalidate("forced invalidation")
}

func (s *Store) invalidate(reason string) {
	s.mu.Lock()
	if s.state == StateLoggedOut {
		s.mu.Unlock()
		return
	}
	s.clearLocked()
	s.mu.Unlock()

	s.gateway.ClearToken()
	if err := s.creds.Remove(); err != nil {
		s.logger.WithError(err).Warn("failed to remove persisted credential")
	}

	s.logger.Info("session ended", "reason", reason)
	s.changed()
}

// clearLocked resets to LoggedOut. Callers must hold mu.
func (s *Store) clearLocked() {
	s.token = ""
	s.user = nil
	s.state = StateLoggedOut
	s.loading = false
}

func (s *Store) changed() {
	s.mu.Lock()
	fn := s.onChange
	s.mu.Unlock()

	if fn != nil {
		fn()
	}
}
