package session

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"net/netip"
	"sync"
	"time"

	"github.com/keato/btc-client/internal/config"
	"github.com/keato/btc-client/internal/logger"
	"github.com/keato/btc-client/internal/metrics"
	"github.com/keato/btc-client/internal/protocol"
	"github.com/rs/zerolog"
)

const (
	dialTimeout      = 15 * time.Second
	handshakeTimeout = 30 * time.Second
	idlePollInterval = 50 * time.Millisecond
)

// Session owns the TCP endpoint exclusively while Connected, and implements
// the handshake and steady-state loop from spec.md §4.3. A live Session is
// driven by a single call to Run, which should execute on its own
// goroutine; every other method is safe to call from any goroutine because
// it only ever touches the command/log queues and the mutex-guarded state.
type Session struct {
	cfg      config.Config
	cmdQueue *unboundedQueue[Command]
	logQueue *unboundedQueue[LogRecord]

	conn net.Conn

	stateMu sync.Mutex
	state   State

	peerLog zerolog.Logger
}

// New creates a Disconnected session with the given configuration.
func New(cfg config.Config) *Session {
	return &Session{
		cfg:      cfg,
		cmdQueue: newUnboundedQueue[Command](),
		logQueue: newUnboundedQueue[LogRecord](),
		state:    Disconnected,
		peerLog:  logger.Log,
	}
}

// State returns the session's current lifecycle state. Safe to call from
// any goroutine.
func (s *Session) State() State {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.state
}

func (s *Session) setState(st State) {
	s.stateMu.Lock()
	s.state = st
	s.stateMu.Unlock()
	metrics.SessionState.Set(float64(st))
}

// Connect enqueues a connect command. Never blocks.
func (s *Session) Connect(addr netip.AddrPort) { s.cmdQueue.Push(ConnectCmd{Addr: addr}) }

// Disconnect enqueues a disconnect command. Never blocks.
func (s *Session) Disconnect() { s.cmdQueue.Push(DisconnectCmd{}) }

// Send enqueues an outbound message. Never blocks; if the session is not
// Connected when the command is drained, the send is refused and reported
// as a log record rather than an error return.
func (s *Session) Send(p protocol.Payload) { s.cmdQueue.Push(SendMessageCmd{Payload: p}) }

// DrainLogs removes and returns every log record produced since the last
// call. Never blocks.
func (s *Session) DrainLogs() []LogRecord { return s.logQueue.DrainAll() }

// Run drives the session loop until stop is closed. It should be called
// exactly once, from a dedicated goroutine.
func (s *Session) Run(stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			s.teardown()
			return
		default:
		}

		cmds := s.cmdQueue.DrainAll()
		metrics.CommandQueueDepth.Set(float64(len(cmds)))
		for _, cmd := range cmds {
			s.handleCommand(cmd)
		}

		if s.State() != Connected {
			time.Sleep(idlePollInterval)
			continue
		}

		s.conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		env, _, err := protocol.ReadEnvelope(s.conn)
		if err != nil {
			s.handleReadError(err)
			continue
		}
		s.dispatchInbound(env)
	}
}

func (s *Session) handleCommand(cmd Command) {
	switch c := cmd.(type) {
	case ConnectCmd:
		if current := s.State(); current != Disconnected {
			s.logError(&NotDisconnected{Current: current})
			return
		}
		s.connect(c.Addr)
	case DisconnectCmd:
		s.teardown()
	case SendMessageCmd:
		if s.State() != Connected {
			s.logError(&NotConnected{})
			return
		}
		s.send(c.Payload)
	}
}

func (s *Session) connect(addr netip.AddrPort) {
	metrics.HandshakeAttempts.Inc()
	s.setState(Handshaking)
	s.peerLog = logger.SessionLogger(addr.String())
	s.logInfo(fmt.Sprintf("connecting to %s", addr))

	conn, err := net.DialTimeout("tcp", addr.String(), dialTimeout)
	if err != nil {
		s.setState(Disconnected)
		metrics.HandshakeFailures.Inc()
		s.logError(fmt.Errorf("dial %s: %w", addr, err))
		s.peerLog = logger.Log
		return
	}

	if err := s.performHandshake(conn, addr); err != nil {
		conn.Close()
		s.setState(Disconnected)
		metrics.HandshakeFailures.Inc()
		s.logError(fmt.Errorf("handshake with %s: %w", addr, err))
		s.peerLog = logger.Log
		return
	}

	conn.SetDeadline(time.Time{})
	s.conn = conn
	s.setState(Connected)
	metrics.HandshakeSuccesses.Inc()
	s.logInfo(fmt.Sprintf("connected to %s", addr))

	// Kick off address discovery, mirroring the reference client's
	// immediate getaddr after the handshake completes.
	s.send(protocol.GetAddr{})
}

func (s *Session) performHandshake(conn net.Conn, addr netip.AddrPort) error {
	conn.SetDeadline(time.Now().Add(handshakeTimeout))

	localAddr, _ := netip.ParseAddrPort(conn.LocalAddr().String())
	remoteAddr, _ := netip.ParseAddrPort(conn.RemoteAddr().String())
	local := protocol.NetAddr{Services: s.cfg.Services, Addr: localAddr}
	// The peer's own services aren't known until its version message
	// arrives, so addr_recv carries no service flags yet.
	remote := protocol.NetAddr{Addr: remoteAddr}

	nonce, err := randomNonce()
	if err != nil {
		return fmt.Errorf("generating nonce: %w", err)
	}

	version := protocol.NewVersion(local, remote, s.cfg.UserAgent, nonce, s.cfg.LastBlock, s.cfg.Relay)
	if err := protocol.WriteEnvelope(conn, protocol.Envelope{Payload: version}); err != nil {
		return fmt.Errorf("sending version: %w", err)
	}
	metrics.MessagesSent.WithLabelValues(string(protocol.CmdVersion)).Inc()

	env, _, err := protocol.ReadEnvelope(conn)
	if err != nil {
		return fmt.Errorf("reading version: %w", err)
	}
	if got := env.Payload.Command(); got != protocol.CmdVersion {
		return &ProtocolError{Expected: string(protocol.CmdVersion), Got: string(got)}
	}
	metrics.MessagesReceived.WithLabelValues(string(protocol.CmdVersion)).Inc()

	env, _, err = protocol.ReadEnvelope(conn)
	if err != nil {
		return fmt.Errorf("reading verack: %w", err)
	}
	if got := env.Payload.Command(); got != protocol.CmdVerAck {
		return &ProtocolError{Expected: string(protocol.CmdVerAck), Got: string(got)}
	}
	metrics.MessagesReceived.WithLabelValues(string(protocol.CmdVerAck)).Inc()

	if err := protocol.WriteEnvelope(conn, protocol.Envelope{Payload: protocol.VerAck{}}); err != nil {
		return fmt.Errorf("sending verack: %w", err)
	}
	metrics.MessagesSent.WithLabelValues(string(protocol.CmdVerAck)).Inc()

	return nil
}

func (s *Session) send(p protocol.Payload) {
	if err := protocol.WriteEnvelope(s.conn, protocol.Envelope{Payload: p}); err != nil {
		s.logError(fmt.Errorf("write %s: %w", p.Command(), err))
		s.teardown()
		return
	}
	metrics.MessagesSent.WithLabelValues(string(p.Command())).Inc()
}

func (s *Session) teardown() {
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	if s.State() != Disconnected {
		s.setState(Disconnected)
	}
	s.peerLog = logger.Log
}

func (s *Session) handleReadError(err error) {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return // IoTransient: would-block / timed-out, swallow
	}

	var decodeErr *protocol.DecodeError
	var checksumErr *protocol.ChecksumMismatch
	var unsupportedErr *protocol.UnsupportedCommand
	switch {
	case errors.As(err, &decodeErr):
		metrics.DecodeErrors.Inc()
		s.logError(err)
	case errors.As(err, &checksumErr):
		metrics.ChecksumMismatches.Inc()
		s.logError(err)
	case errors.As(err, &unsupportedErr):
		metrics.UnsupportedCommands.Inc()
		s.logWarn(err.Error())
	case errors.Is(err, io.EOF):
		s.logError(fmt.Errorf("connection closed by peer"))
		s.teardown()
	default:
		s.logError(fmt.Errorf("read error: %w", err))
		s.teardown()
	}
}

func (s *Session) dispatchInbound(env protocol.Envelope) {
	cmd := env.Payload.Command()
	metrics.MessagesReceived.WithLabelValues(string(cmd)).Inc()

	switch p := env.Payload.(type) {
	case protocol.Ping:
		s.send(protocol.Pong{Nonce: p.Nonce})
	case protocol.Pong:
		s.logInfo(fmt.Sprintf("pong nonce=%d", p.Nonce))
	case protocol.InvPayload:
		s.logInv(p)
	case protocol.AddrPayload:
		s.logAddr(p)
	case protocol.VersionPayload:
		s.logError(fmt.Errorf("unexpected version message in steady state"))
	default:
		s.logWarn(fmt.Sprintf("unhandled message: %s", cmd))
	}
}

func (s *Session) logInv(p protocol.InvPayload) {
	s.logInfo(fmt.Sprintf("inv: %d item(s)", len(p.Items)))
	for _, item := range p.Items {
		be := item.HashBE()
		s.logInfo(fmt.Sprintf("%s: %x", item.Kind, be))
	}
}

func (s *Session) logAddr(p protocol.AddrPayload) {
	s.logInfo(fmt.Sprintf("addr: %d item(s)", len(p.Items)))
	now := time.Now()
	for _, item := range p.Items {
		seen := time.Unix(int64(item.Timestamp), 0)
		s.logInfo(fmt.Sprintf("%s last seen %s ago", item.NetAddr.Addr, humanizeDuration(now.Sub(seen))))
	}
}

// logInfo, logWarn, and logError both push a LogRecord for the UI to drain
// and write the same line through peerLog, the structured logger scoped to
// whichever peer (if any) the session is currently talking to.
func (s *Session) logInfo(text string) {
	s.logQueue.Push(LogRecord{Level: LevelInfo, Text: text})
	s.peerLog.Info().Msg(text)
}

func (s *Session) logWarn(text string) {
	s.logQueue.Push(LogRecord{Level: LevelWarn, Text: text})
	s.peerLog.Warn().Msg(text)
}

func (s *Session) logError(err error) {
	s.logQueue.Push(LogRecord{Level: LevelError, Text: err.Error()})
	s.peerLog.Error().Err(err).Msg("session error")
}

func randomNonce() (uint64, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

func humanizeDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}
