package model

// SessionState tracks how far the WhatsApp connection has come.
type SessionState int

const (
	StateInitializing SessionState = iota
	StateAwaitingAuth
	StateReady
	StateFailed
)

func (s SessionState) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateAwaitingAuth:
		return "awaiting_auth"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// StatusSnapshot is a consistent copy of the session state for readers.
// AuthCode is non-empty only while the state is StateAwaitingAuth.
type StatusSnapshot struct {
	State     SessionState
	AuthCode  string
	LastError string
}
