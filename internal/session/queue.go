package session

import (
	"net/netip"

	"github.com/keato/btc-client/internal/protocol"
)

// Command is one of the values the controller enqueues on the command
// queue: Connect, Disconnect, or SendMessage.
type Command interface {
	isCommand()
}

// ConnectCmd requests a handshake with Addr.
type ConnectCmd struct {
	Addr netip.AddrPort
}

// DisconnectCmd requests tearing down the current connection. Idempotent.
type DisconnectCmd struct{}

// SendMessageCmd requests sending Payload on the current connection.
type SendMessageCmd struct {
	Payload protocol.Payload
}

func (ConnectCmd) isCommand()     {}
func (DisconnectCmd) isCommand()  {}
func (SendMessageCmd) isCommand() {}

// Level is the severity of a LogRecord.
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// LogRecord is a value copy of one log line produced by the session and
// consumed by the UI. Text may contain newlines; consumers split on them
// and skip empty lines.
type LogRecord struct {
	Level Level
	Text  string
}
