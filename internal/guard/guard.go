// Package guard decides what a screen may show for a given session state.
package guard

import "github.com/ameyamatmk/voice-diary/internal/model"

// Route names a screen of the application.
type Route string

const (
	RouteEntry   Route = "login"
	RouteHome    Route = "diary"
	RouteDevices Route = "devices"
	RouteProfile Route = "profile"
)

// Action is what the caller should do with the target screen.
type Action int

const (
	ActionLoading Action = iota
	ActionRender
	ActionRedirect
)

func (a Action) String() string {
	switch a {
	case ActionLoading:
		return "loading"
	case ActionRender:
		return "render"
	case ActionRedirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// Decision is the outcome of Decide. Target is the screen to render or the
// redirect destination; it is empty while loading.
type Decision struct {
	Action Action
	Target Route
}

// Decide is a pure function of state and target. Protected screens are never
// rendered before the initial identity check has resolved.
func Decide(state model.SessionState, target Route) Decision {
	if !state.Phase.Resolved() {
		return Decision{Action: ActionLoading}
	}

	authenticated := state.Phase == model.PhaseAuthenticated && state.IsAuthenticated
	switch {
	case !authenticated && target != RouteEntry:
		return Decision{Action: ActionRedirect, Target: RouteEntry}
	case authenticated && target == RouteEntry:
		return Decision{Action: ActionRedirect, Target: RouteHome}
	default:
		return Decision{Action: ActionRender, Target: target}
	}
}
