// Package ui implements the terminal front end: a tcell screen with a
// scrolling, color-coded log region and a two-row command band at the
// bottom, bridging keyboard input and the session's command/log queues.
package ui

import (
	"fmt"
	"net/netip"
	"strconv"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/keato/btc-client/internal/protocol"
	"github.com/keato/btc-client/internal/session"
)

const prompt = "> "

// commandBandRows is the number of terminal rows reserved at the bottom for
// the prompt and its border, leaving the rest of the screen for scrolling
// log output.
const commandBandRows = 2

// Session is the subset of *session.Session the UI depends on, so tests can
// substitute a fake.
type Session interface {
	Connect(addr netip.AddrPort)
	Disconnect()
	Send(p protocol.Payload)
	DrainLogs() []session.LogRecord
}

// UI owns the tcell screen and the scrollback buffer. It is driven entirely
// from one goroutine via Run.
type UI struct {
	screen  tcell.Screen
	sess    Session
	input   []rune
	history []styledLine
}

type styledLine struct {
	text  string
	style tcell.Style
}

// New initializes a tcell screen in its default mode.
func New(sess Session) (*UI, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("creating screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("initializing screen: %w", err)
	}
	screen.SetStyle(tcell.StyleDefault)
	screen.Clear()

	return &UI{screen: screen, sess: sess}, nil
}

// Close restores the terminal to its original mode. Safe to call once, at
// exit.
func (u *UI) Close() {
	u.screen.Fini()
}

// Run drives the event loop until Ctrl-C is pressed or stop is closed. It
// polls the session's log queue on every redraw, which happens after each
// terminal event and on a one-second tick, so new log records appear without
// a dedicated notification channel.
func (u *UI) Run(stop <-chan struct{}) {
	events := make(chan tcell.Event, 16)
	go u.screen.ChannelEvents(events, stop)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	u.redraw()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		case ev := <-events:
			if ev == nil {
				return
			}
			switch e := ev.(type) {
			case *tcell.EventKey:
				if u.handleKey(e) {
					return
				}
			case *tcell.EventResize:
				u.screen.Sync()
			}
		}
		u.pollLogs()
		u.redraw()
	}
}

func (u *UI) handleKey(e *tcell.EventKey) (quit bool) {
	switch e.Key() {
	case tcell.KeyCtrlC:
		return true
	case tcell.KeyEnter:
		u.submit()
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(u.input) > 0 {
			u.input = u.input[:len(u.input)-1]
		}
	case tcell.KeyRune:
		u.input = append(u.input, e.Rune())
	}
	return false
}

func (u *UI) submit() {
	line := strings.TrimSpace(string(u.input))
	u.input = u.input[:0]
	if line == "" {
		return
	}
	u.appendLine(line, tcell.StyleDefault.Foreground(tcell.ColorWhite))
	u.dispatch(line)
}

func (u *UI) dispatch(line string) {
	fields := strings.Fields(line)
	cmd := fields[0]
	args := fields[1:]

	switch cmd {
	case "connect":
		if len(args) != 1 {
			u.logError("usage: connect <ip:port>")
			return
		}
		addr, err := netip.ParseAddrPort(args[0])
		if err != nil {
			u.logError(fmt.Sprintf("invalid address %q: %v", args[0], err))
			return
		}
		u.sess.Connect(addr)
	case "disconnect":
		u.sess.Disconnect()
	case "ping":
		if len(args) != 1 {
			u.logError("usage: ping <u64>")
			return
		}
		nonce, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			u.logError(fmt.Sprintf("invalid nonce %q: %v", args[0], err))
			return
		}
		u.sess.Send(protocol.Ping{Nonce: nonce})
	case "getaddr":
		u.sess.Send(protocol.GetAddr{})
	default:
		u.logError(fmt.Sprintf("unrecognized command: %s", cmd))
	}
}

func (u *UI) logError(text string) {
	u.appendLine(text, styleForLevel(session.LevelError))
}

func (u *UI) pollLogs() {
	for _, rec := range u.sess.DrainLogs() {
		for _, line := range strings.Split(rec.Text, "\n") {
			if line == "" {
				continue
			}
			u.appendLine(line, styleForLevel(rec.Level))
		}
	}
}

func (u *UI) appendLine(text string, style tcell.Style) {
	u.history = append(u.history, styledLine{text: text, style: style})
	const maxHistory = 1000
	if len(u.history) > maxHistory {
		u.history = u.history[len(u.history)-maxHistory:]
	}
}

func styleForLevel(level session.Level) tcell.Style {
	switch level {
	case session.LevelWarn:
		return tcell.StyleDefault.Foreground(tcell.ColorYellow)
	case session.LevelError:
		return tcell.StyleDefault.Foreground(tcell.ColorRed)
	default:
		return tcell.StyleDefault.Foreground(tcell.ColorGreen)
	}
}

func (u *UI) redraw() {
	u.screen.Clear()
	width, height := u.screen.Size()
	logRows := height - commandBandRows
	if logRows < 0 {
		logRows = 0
	}

	start := 0
	if len(u.history) > logRows {
		start = len(u.history) - logRows
	}
	for row, line := range u.history[start:] {
		drawText(u.screen, 0, row, width, line.text, line.style)
	}

	borderRow := logRows
	drawText(u.screen, 0, borderRow, width, strings.Repeat("-", width), tcell.StyleDefault)

	promptRow := height - 1
	drawText(u.screen, 0, promptRow, width, prompt+string(u.input), tcell.StyleDefault)
	u.screen.ShowCursor(len(prompt)+len(u.input), promptRow)

	u.screen.Show()
}

func drawText(screen tcell.Screen, x, y, maxWidth int, text string, style tcell.Style) {
	col := x
	for _, r := range text {
		if col >= maxWidth {
			break
		}
		screen.SetContent(col, y, r, nil, style)
		col++
	}
}
