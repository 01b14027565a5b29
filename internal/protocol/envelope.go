package protocol

import (
	"bytes"
	"fmt"

	"github.com/keato/btc-client/internal/wire"
)

// Command names the ten message variants this client understands. It is a
// closed set — handling a new command means adding a case in every switch
// below, not opening a registry.
type Command string

const (
	CmdVersion     Command = "version"
	CmdVerAck      Command = "verack"
	CmdSendHeaders Command = "sendheaders"
	CmdSendCmpct   Command = "sendcmpct"
	CmdPing        Command = "ping"
	CmdPong        Command = "pong"
	CmdFeeFilter   Command = "feefilter"
	CmdInv         Command = "inv"
	CmdGetAddr     Command = "getaddr"
	CmdAddr        Command = "addr"
)

// Payload is implemented by every message body, including the three
// no-payload variants (VerAck, SendHeaders, GetAddr).
type Payload interface {
	Command() Command
}

func (VersionPayload) Command() Command   { return CmdVersion }
func (VerAck) Command() Command           { return CmdVerAck }
func (SendHeaders) Command() Command      { return CmdSendHeaders }
func (SendCmpctPayload) Command() Command { return CmdSendCmpct }
func (Ping) Command() Command             { return CmdPing }
func (Pong) Command() Command             { return CmdPong }
func (FeeFilterPayload) Command() Command { return CmdFeeFilter }
func (InvPayload) Command() Command       { return CmdInv }
func (GetAddr) Command() Command          { return CmdGetAddr }
func (AddrPayload) Command() Command      { return CmdAddr }

// VerAck, SendHeaders, and GetAddr carry no payload.
type VerAck struct{}
type SendHeaders struct{}
type GetAddr struct{}

// Ping and Pong carry a single nonce.
type Ping struct{ Nonce uint64 }
type Pong struct{ Nonce uint64 }

// Envelope is the pair (command, payload) sharing the wire representation
// header || payload_bytes.
type Envelope struct {
	Payload Payload
}

// Encode serializes the envelope to header+payload bytes.
func Encode(e Envelope) []byte {
	var payloadBuf bytes.Buffer
	switch p := e.Payload.(type) {
	case VersionPayload:
		encodeVersion(&payloadBuf, p)
	case VerAck, SendHeaders, GetAddr:
		// no payload
	case SendCmpctPayload:
		encodeSendCmpct(&payloadBuf, p)
	case Ping:
		wire.WriteU64LE(&payloadBuf, p.Nonce)
	case Pong:
		wire.WriteU64LE(&payloadBuf, p.Nonce)
	case FeeFilterPayload:
		encodeFeeFilter(&payloadBuf, p)
	case InvPayload:
		encodeInv(&payloadBuf, p)
	case AddrPayload:
		encodeAddr(&payloadBuf, p)
	default:
		panic(fmt.Sprintf("protocol: unencodable payload type %T", p))
	}

	payload := payloadBuf.Bytes()

	header := Header{
		Magic:    Magic,
		Command:  commandBytes(string(e.Payload.Command())),
		Size:     uint32(len(payload)),
		Checksum: checksum(payload),
	}

	var out bytes.Buffer
	out.Grow(HeaderSize + len(payload))
	encodeHeader(&out, header)
	out.Write(payload)
	return out.Bytes()
}

// DecodeHeader reads just the 24-byte header from s, validating the magic.
func DecodeHeader(s *wire.Scanner) (Header, error) {
	h, err := decodeHeader(s)
	if err != nil {
		return h, err
	}
	if h.Magic != Magic {
		return h, newDecodeError("header magic", fmt.Errorf("got %x, want %x", h.Magic, Magic))
	}
	return h, nil
}

// DecodeBody dispatches on header.Command and decodes the payload bytes
// already read into body. It recomputes and validates the checksum first.
func DecodeBody(h Header, body []byte) (Envelope, error) {
	got := checksum(body)
	if got != h.Checksum {
		return Envelope{}, &ChecksumMismatch{Command: commandString(h.Command), Got: h.Checksum, Expected: got}
	}

	s := wire.NewScanner(body)
	cmd := Command(commandString(h.Command))

	var payload Payload
	var err error
	switch cmd {
	case CmdVersion:
		payload, err = decodeVersion(s)
	case CmdVerAck:
		payload = VerAck{}
	case CmdSendHeaders:
		payload = SendHeaders{}
	case CmdSendCmpct:
		payload, err = decodeSendCmpct(s)
	case CmdPing:
		var nonce uint64
		nonce, err = wire.ReadU64LE(s)
		payload = Ping{Nonce: nonce}
	case CmdPong:
		var nonce uint64
		nonce, err = wire.ReadU64LE(s)
		payload = Pong{Nonce: nonce}
	case CmdFeeFilter:
		payload, err = decodeFeeFilter(s)
	case CmdInv:
		payload, err = decodeInv(s)
	case CmdGetAddr:
		payload = GetAddr{}
	case CmdAddr:
		payload, err = decodeAddr(s)
	default:
		return Envelope{}, &UnsupportedCommand{Command: string(cmd)}
	}
	if err != nil {
		return Envelope{}, newDecodeError(string(cmd)+" payload", err)
	}
	return Envelope{Payload: payload}, nil
}
