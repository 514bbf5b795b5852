package model

// Phase is the lifecycle position of the session store.
type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseChecking
	PhaseAuthenticated
	PhaseAnonymous
)

func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseChecking:
		return "checking"
	case PhaseAuthenticated:
		return "authenticated"
	case PhaseAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// Resolved reports whether the initial identity check has finished.
func (p Phase) Resolved() bool {
	return p == PhaseAuthenticated || p == PhaseAnonymous
}

// SessionState is the in-memory cache of the server-held session.
type SessionState struct {
	Phase           Phase
	User            *User
	IsAuthenticated bool
	IsLoading       bool
}
