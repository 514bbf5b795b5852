package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/ameyamatmk/voice-diary/internal/logger"
	"github.com/ameyamatmk/voice-diary/internal/model"
)

const profileUpdated = "Profile updated"

var errSignedOut = errors.New("signed out while the sign-in was in progress")

// Session is the single owned cache of the server-held session. Login and
// Register share one busy gate; a call made while another one is in flight
// is rejected with ErrBusy.
type Session struct {
	ceremony model.CeremonyClient
	identity model.IdentityService
	logger   *logger.Logger

	gate     *semaphore.Weighted
	initOnce sync.Once
	notifyMu sync.Mutex

	mu        sync.RWMutex
	state     model.SessionState
	inFlight  bool
	epoch     uint64
	listeners map[int]func(model.SessionState)
	nextID    int
}

func NewSession(ceremony model.CeremonyClient, identity model.IdentityService, logger *logger.Logger) *Session {
	return &Session{
		ceremony:  ceremony,
		identity:  identity,
		logger:    logger,
		gate:      semaphore.NewWeighted(1),
		state:     model.SessionState{Phase: model.PhaseUninitialized, IsLoading: true},
		listeners: make(map[int]func(model.SessionState)),
	}
}

// State returns a snapshot of the session.
func (s *Session) State() model.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return snapshot(s.state)
}

// Subscribe registers fn to be called after every state change and returns a
// function that removes it. Listeners are called one at a time and never see an
// older state after a newer one; they may read State but must not call mutators.
func (s *Session) Subscribe(fn func(model.SessionState)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Init resolves the initial identity check once per process.
func (s *Session) Init(ctx context.Context) {
	s.initOnce.Do(func() {
		s.CheckAuthStatus(ctx)
	})
}

// CheckAuthStatus asks the relying party who the current session belongs to.
// Any failure resolves to anonymous.
func (s *Session) CheckAuthStatus(ctx context.Context) {
	s.logger.Debug("Session: checking auth status")

	s.mu.Lock()
	if !s.state.Phase.Resolved() {
		s.state.Phase = model.PhaseChecking
	}
	epoch := s.epoch
	s.mu.Unlock()
	s.notify()

	current, err := s.identity.Me(ctx)
	if err != nil {
		s.logger.Info("Session: no active session",
			"error", err.Error())
	}

	s.mu.Lock()
	switch {
	case s.epoch != epoch && s.state.Phase.Resolved():
		// a login or logout settled meanwhile and is more recent
		s.mu.Unlock()
		s.logger.Debug("Session: discarded stale auth status")
		return
	case err == nil && current.Authenticated && current.User != nil:
		s.setAuthenticated(current.User)
	default:
		s.setAnonymous()
	}
	state := snapshot(s.state)
	s.mu.Unlock()
	s.notify()

	s.logger.Info("Session: auth status resolved",
		"phase", state.Phase.String())
}

// RefreshUser re-reads the identity from the relying party.
func (s *Session) RefreshUser(ctx context.Context) {
	s.CheckAuthStatus(ctx)
}

// Login runs an authentication ceremony and, on success, marks the session
// authenticated. An empty username selects a discoverable credential.
func (s *Session) Login(ctx context.Context, username string) model.Result {
	if !s.gate.TryAcquire(1) {
		s.logger.Warn("Session: login rejected, ceremony in progress")
		return model.Failure(model.ErrBusy)
	}
	defer s.gate.Release(1)

	epoch := s.beginCeremony()
	defer s.endCeremony()

	res := s.ceremony.Authenticate(ctx, username)
	if !res.Success {
		s.logger.Info("Session: login failed",
			"message", res.Message)
		return res
	}
	if res.User == nil {
		return model.Result{Success: false, Message: "relying party did not return the signed-in user"}
	}

	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		s.logger.Warn("Session: login result discarded after logout",
			"username", res.User.Username)
		return model.Failure(errSignedOut)
	}
	s.epoch++
	s.setAuthenticated(res.User)
	s.mu.Unlock()

	s.logger.Info("Session: logged in",
		"username", res.User.Username)

	return res
}

// Register provisions a credential. It never changes whether the session is
// authenticated.
func (s *Session) Register(ctx context.Context, params model.RegisterParams) model.Result {
	if !s.gate.TryAcquire(1) {
		s.logger.Warn("Session: registration rejected, ceremony in progress")
		return model.Failure(model.ErrBusy)
	}
	defer s.gate.Release(1)

	s.beginCeremony()
	defer s.endCeremony()

	res := s.ceremony.Register(ctx, params)
	s.logger.Info("Session: registration settled",
		"username", params.Username,
		"success", res.Success)

	return res
}

// Logout ends the server-side session. Local state becomes anonymous even when
// the request fails.
func (s *Session) Logout(ctx context.Context) {
	s.logger.Debug("Session: logging out")

	if err := s.identity.Logout(ctx); err != nil {
		s.logger.Warn("Session: logout request failed",
			"error", err.Error())
	}

	s.mu.Lock()
	s.epoch++
	s.setAnonymous()
	s.mu.Unlock()
	s.notify()

	s.logger.Info("Session: logged out")
}

// UpdateProfile changes the display name and replaces the cached user.
func (s *Session) UpdateProfile(ctx context.Context, displayName string) model.Result {
	name := strings.TrimSpace(displayName)
	if name == "" {
		return model.Failure(model.NewErrInvalidInput("display name must not be empty"))
	}

	s.mu.RLock()
	epoch := s.epoch
	s.mu.RUnlock()

	user, err := s.identity.UpdateProfile(ctx, model.ProfileUpdate{DisplayName: &name})
	if err != nil {
		s.logger.Error("Session: failed to update profile",
			"error", err.Error())
		return model.Failure(err)
	}

	s.mu.Lock()
	if s.epoch == epoch && s.state.IsAuthenticated {
		s.setAuthenticated(&user)
	}
	s.mu.Unlock()
	s.notify()

	s.logger.Info("Session: profile updated",
		"username", user.Username)

	return model.Result{Success: true, Message: profileUpdated, User: &user}
}

func (s *Session) beginCeremony() uint64 {
	s.mu.Lock()
	s.inFlight = true
	s.refreshLoading()
	epoch := s.epoch
	s.mu.Unlock()
	s.notify()

	return epoch
}

// endCeremony clears the busy flag; it runs deferred so a panicking
// ceremony still settles.
func (s *Session) endCeremony() {
	s.mu.Lock()
	s.inFlight = false
	s.refreshLoading()
	s.mu.Unlock()
	s.notify()
}

// setAuthenticated and setAnonymous must be called with mu held.
func (s *Session) setAuthenticated(user *model.User) {
	u := *user
	s.state.Phase = model.PhaseAuthenticated
	s.state.User = &u
	s.state.IsAuthenticated = true
	s.refreshLoading()
}

func (s *Session) setAnonymous() {
	s.state.Phase = model.PhaseAnonymous
	s.state.User = nil
	s.state.IsAuthenticated = false
	s.refreshLoading()
}

func (s *Session) refreshLoading() {
	s.state.IsLoading = s.inFlight || !s.state.Phase.Resolved()
}

// notify delivers the current state. notifyMu spans the snapshot and the
// delivery so concurrent notifications cannot overtake each other.
func (s *Session) notify() {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.RLock()
	state := snapshot(s.state)
	listeners := make([]func(model.SessionState), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn(state)
	}
}

func snapshot(state model.SessionState) model.SessionState {
	if state.User != nil {
		u := *state.User
		state.User = &u
	}
	return state
}
