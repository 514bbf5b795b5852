package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ameyamatmk/voice-diary/internal/mocks"
	"github.com/ameyamatmk/voice-diary/internal/model"
	"github.com/ameyamatmk/voice-diary/internal/testutil"
)

var alice = &model.User{ID: "1", Username: "alice", DisplayName: "Alice", IsActive: true}

func newTestSession(t *testing.T) (*Session, *mocks.CeremonyClient, *mocks.IdentityService) {
	t.Helper()

	ceremony := mocks.NewCeremonyClient(t)
	identity := mocks.NewIdentityService(t)
	return NewSession(ceremony, identity, testutil.MakeNoopLogger()), ceremony, identity
}

func signedIn(t *testing.T, s *Session, identity *mocks.IdentityService) {
	t.Helper()

	identity.On("Me", mock.Anything).Return(model.CurrentUser{Authenticated: true, User: alice}, nil).Once()
	s.CheckAuthStatus(context.Background())
	require.True(t, s.State().IsAuthenticated)
}

func signedOut(t *testing.T, s *Session, identity *mocks.IdentityService) {
	t.Helper()

	identity.On("Me", mock.Anything).Return(model.CurrentUser{}, &model.ServerError{Status: 401, Message: "Not authenticated"}).Once()
	s.CheckAuthStatus(context.Background())
	require.Equal(t, model.PhaseAnonymous, s.State().Phase)
}

func TestSession_InitialState(t *testing.T) {
	s, _, _ := newTestSession(t)

	state := s.State()
	assert.Equal(t, model.PhaseUninitialized, state.Phase)
	assert.True(t, state.IsLoading)
	assert.False(t, state.IsAuthenticated)
	assert.Nil(t, state.User)
}

func TestSession_Init_RunsOnce(t *testing.T) {
	s, _, identity := newTestSession(t)

	var phases []model.Phase
	s.Subscribe(func(state model.SessionState) { phases = append(phases, state.Phase) })

	identity.On("Me", mock.Anything).Return(model.CurrentUser{Authenticated: true, User: alice}, nil).Once()

	s.Init(context.Background())
	s.Init(context.Background())

	state := s.State()
	assert.Equal(t, model.PhaseAuthenticated, state.Phase)
	assert.True(t, state.IsAuthenticated)
	assert.False(t, state.IsLoading)
	require.NotNil(t, state.User)
	assert.Equal(t, "alice", state.User.Username)
	assert.Equal(t, []model.Phase{model.PhaseChecking, model.PhaseAuthenticated}, phases)
}

func TestSession_CheckAuthStatus_Anonymous(t *testing.T) {
	tests := []struct {
		name    string
		current model.CurrentUser
		err     error
	}{
		{name: "no session", err: &model.ServerError{Status: 401, Message: "Not authenticated"}},
		{name: "network failure", err: model.ErrNetworkFailure},
		{name: "not authenticated", current: model.CurrentUser{Authenticated: false}},
		{name: "authenticated without user", current: model.CurrentUser{Authenticated: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, identity := newTestSession(t)
			identity.On("Me", mock.Anything).Return(tt.current, tt.err).Once()

			s.CheckAuthStatus(context.Background())

			state := s.State()
			assert.Equal(t, model.PhaseAnonymous, state.Phase)
			assert.False(t, state.IsAuthenticated)
			assert.False(t, state.IsLoading)
			assert.Nil(t, state.User)
		})
	}
}

func TestSession_Login(t *testing.T) {
	s, ceremony, identity := newTestSession(t)
	signedOut(t, s, identity)

	var loadingDuringCall bool
	ceremony.On("Authenticate", mock.Anything, "alice").
		Run(func(mock.Arguments) { loadingDuringCall = s.State().IsLoading }).
		Return(model.Result{Success: true, Message: "Authentication successful", User: alice}).Once()

	res := s.Login(context.Background(), "alice")

	require.True(t, res.Success)
	assert.True(t, loadingDuringCall)
	state := s.State()
	assert.Equal(t, model.PhaseAuthenticated, state.Phase)
	assert.True(t, state.IsAuthenticated)
	assert.False(t, state.IsLoading)
	require.NotNil(t, state.User)
	assert.Equal(t, "alice", state.User.Username)
}

func TestSession_Login_Rejected(t *testing.T) {
	s, ceremony, identity := newTestSession(t)
	signedOut(t, s, identity)

	var loadingDuringCall bool
	ceremony.On("Authenticate", mock.Anything, "").
		Run(func(mock.Arguments) { loadingDuringCall = s.State().IsLoading }).
		Return(model.Failure(model.ErrUserCancelled)).Once()

	res := s.Login(context.Background(), "")

	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Message)
	assert.True(t, loadingDuringCall)
	state := s.State()
	assert.False(t, state.IsAuthenticated)
	assert.False(t, state.IsLoading)
	assert.Nil(t, state.User)
}

func TestSession_Register_KeepsAuthentication(t *testing.T) {
	t.Run("anonymous stays anonymous", func(t *testing.T) {
		s, ceremony, identity := newTestSession(t)
		signedOut(t, s, identity)

		var loadingDuringCall bool
		params := model.RegisterParams{Username: "alice", DeviceName: "Laptop"}
		ceremony.On("Register", mock.Anything, params).
			Run(func(mock.Arguments) { loadingDuringCall = s.State().IsLoading }).
			Return(model.Result{Success: true, Message: "Registration completed successfully"}).Once()

		res := s.Register(context.Background(), params)

		assert.True(t, res.Success)
		assert.True(t, loadingDuringCall)
		state := s.State()
		assert.False(t, state.IsAuthenticated)
		assert.False(t, state.IsLoading)
		assert.Equal(t, model.PhaseAnonymous, state.Phase)
	})

	t.Run("authenticated stays authenticated on failure", func(t *testing.T) {
		s, ceremony, identity := newTestSession(t)
		signedIn(t, s, identity)

		ceremony.On("Register", mock.Anything, mock.Anything).
			Return(model.Failure(model.ErrInvalidState)).Once()

		res := s.Register(context.Background(), model.RegisterParams{Username: "alice"})

		assert.False(t, res.Success)
		assert.True(t, s.State().IsAuthenticated)
		assert.False(t, s.State().IsLoading)
	})
}

func TestSession_BusyGate(t *testing.T) {
	s, ceremony, identity := newTestSession(t)
	signedOut(t, s, identity)

	entered := make(chan struct{})
	release := make(chan struct{})
	ceremony.On("Authenticate", mock.Anything, "alice").
		Run(func(mock.Arguments) {
			close(entered)
			<-release
		}).
		Return(model.Result{Success: true, User: alice}).Once()

	var wg sync.WaitGroup
	var first model.Result
	wg.Add(1)
	go func() {
		defer wg.Done()
		first = s.Login(context.Background(), "alice")
	}()
	<-entered

	second := s.Login(context.Background(), "bob")
	assert.False(t, second.Success)
	assert.Equal(t, model.ErrBusy.Error(), second.Message)

	third := s.Register(context.Background(), model.RegisterParams{Username: "bob"})
	assert.False(t, third.Success)
	assert.Equal(t, model.ErrBusy.Error(), third.Message)

	close(release)
	wg.Wait()

	assert.True(t, first.Success)
	assert.True(t, s.State().IsAuthenticated)
	assert.False(t, s.State().IsLoading)
}

func TestSession_Logout(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "server accepts"},
		{name: "server fails", err: model.ErrNetworkFailure},
		{name: "server rejects", err: &model.ServerError{Status: 500, Message: "boom"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, identity := newTestSession(t)
			signedIn(t, s, identity)
			identity.On("Logout", mock.Anything).Return(tt.err).Once()

			s.Logout(context.Background())

			state := s.State()
			assert.Equal(t, model.PhaseAnonymous, state.Phase)
			assert.False(t, state.IsAuthenticated)
			assert.Nil(t, state.User)
		})
	}
}

func TestSession_LogoutDuringLogin(t *testing.T) {
	s, ceremony, identity := newTestSession(t)
	signedOut(t, s, identity)

	identity.On("Logout", mock.Anything).Return(nil).Once()
	ceremony.On("Authenticate", mock.Anything, "alice").
		Run(func(mock.Arguments) { s.Logout(context.Background()) }).
		Return(model.Result{Success: true, User: alice}).Once()

	res := s.Login(context.Background(), "alice")

	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Message)
	state := s.State()
	assert.False(t, state.IsAuthenticated)
	assert.Nil(t, state.User)
	assert.False(t, state.IsLoading)
}

func TestSession_Login_PanicClearsBusy(t *testing.T) {
	s, ceremony, identity := newTestSession(t)
	signedOut(t, s, identity)

	ceremony.On("Authenticate", mock.Anything, "alice").
		Run(func(mock.Arguments) { panic("authenticator exploded") }).
		Return(model.Result{}).Once()

	require.Panics(t, func() { s.Login(context.Background(), "alice") })
	assert.False(t, s.State().IsLoading)

	ceremony.On("Authenticate", mock.Anything, "alice").
		Return(model.Result{Success: true, User: alice}).Once()

	res := s.Login(context.Background(), "alice")
	assert.True(t, res.Success)
}

func TestSession_RefreshUser(t *testing.T) {
	s, _, identity := newTestSession(t)
	signedIn(t, s, identity)

	var phases []model.Phase
	s.Subscribe(func(state model.SessionState) { phases = append(phases, state.Phase) })

	renamed := *alice
	renamed.DisplayName = "Alice L."
	identity.On("Me", mock.Anything).Return(model.CurrentUser{Authenticated: true, User: &renamed}, nil).Once()

	s.RefreshUser(context.Background())

	require.NotNil(t, s.State().User)
	assert.Equal(t, "Alice L.", s.State().User.DisplayName)
	assert.NotContains(t, phases, model.PhaseChecking)
}

func TestSession_UpdateProfile(t *testing.T) {
	t.Run("replaces cached user", func(t *testing.T) {
		s, _, identity := newTestSession(t)
		signedIn(t, s, identity)

		updated := *alice
		updated.DisplayName = "Alice Liddell"
		identity.On("UpdateProfile", mock.Anything, mock.MatchedBy(func(u model.ProfileUpdate) bool {
			return u.DisplayName != nil && *u.DisplayName == "Alice Liddell"
		})).Return(updated, nil).Once()

		res := s.UpdateProfile(context.Background(), "  Alice Liddell ")

		require.True(t, res.Success)
		assert.Equal(t, "Alice Liddell", s.State().User.DisplayName)
	})

	t.Run("empty name", func(t *testing.T) {
		s, _, _ := newTestSession(t)

		res := s.UpdateProfile(context.Background(), " ")
		assert.False(t, res.Success)
		assert.Contains(t, res.Message, "display name")
	})

	t.Run("server error", func(t *testing.T) {
		s, _, identity := newTestSession(t)
		signedIn(t, s, identity)
		identity.On("UpdateProfile", mock.Anything, mock.Anything).
			Return(model.User{}, errors.New("boom")).Once()

		res := s.UpdateProfile(context.Background(), "Bob")
		assert.False(t, res.Success)
		assert.Equal(t, "Alice", s.State().User.DisplayName)
	})
}

func TestSession_Subscribe_Unsubscribe(t *testing.T) {
	s, _, identity := newTestSession(t)

	calls := 0
	unsubscribe := s.Subscribe(func(model.SessionState) { calls++ })
	signedOut(t, s, identity)
	require.Equal(t, 2, calls)

	unsubscribe()
	identity.On("Logout", mock.Anything).Return(nil).Once()
	s.Logout(context.Background())
	assert.Equal(t, 2, calls)
}

func TestSession_StateIsSnapshot(t *testing.T) {
	s, _, identity := newTestSession(t)
	signedIn(t, s, identity)

	state := s.State()
	state.User.Username = "mallory"

	assert.Equal(t, "alice", s.State().User.Username)
}

func TestSession_NotificationsAreSerialized(t *testing.T) {
	s, _, identity := newTestSession(t)
	identity.On("Logout", mock.Anything).Return(nil)

	var active, overlaps, calls atomic.Int32
	s.Subscribe(func(model.SessionState) {
		if active.Add(1) > 1 {
			overlaps.Add(1)
		}
		time.Sleep(time.Millisecond)
		calls.Add(1)
		active.Add(-1)
	})

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Logout(context.Background())
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(16), calls.Load())
	assert.Zero(t, overlaps.Load())
}
