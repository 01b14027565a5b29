// Package session owns the TCP endpoint and orchestrates the handshake and
// steady-state protocol exchange described in spec.md §4.3/§5: a single
// worker goroutine drains an inbound command queue, attempts a
// timeout-bounded read, and dispatches whatever it decodes, bridging the
// blocking socket with the non-blocking command/log queues the UI uses.
package session

// State is the session's finite lifecycle: Disconnected, Handshaking, or
// Connected. Handshaking is transient: it is held only while a connect
// command dials and runs the handshake, and State() reports it during that
// time.
type State int

const (
	Disconnected State = iota
	Handshaking
	Connected
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Handshaking:
		return "handshaking"
	case Connected:
		return "connected"
	default:
		return "unknown"
	}
}
