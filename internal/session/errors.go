package session

import "fmt"

// ProtocolError means a handshake step saw the wrong message. The handshake
// is aborted and the session returns to Disconnected.
type ProtocolError struct {
	Expected string
	Got      string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol error: expected %s, got %s", e.Expected, e.Got)
}

// NotConnected means SendMessage was attempted while the session was not
// Connected.
type NotConnected struct{}

func (e *NotConnected) Error() string { return "not connected" }

// NotDisconnected means Connect was attempted while the session was not
// Disconnected.
type NotDisconnected struct{ Current State }

func (e *NotDisconnected) Error() string {
	return fmt.Sprintf("cannot connect while %s", e.Current)
}
