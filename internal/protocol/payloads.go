package protocol

import (
	"bytes"
	"time"

	"github.com/keato/btc-client/internal/wire"
)

// ProtocolVersion is the protocol version this client advertises in its
// version message.
const ProtocolVersion = 70014

// VersionPayload is the first message sent in the handshake.
type VersionPayload struct {
	ProtoVer  uint32
	Services  wire.Services
	Time      time.Time
	Remote    NetAddr
	Local     NetAddr
	Nonce     uint64
	UserAgent string
	LastBlock uint32
	Relay     bool
}

func encodeVersion(buf *bytes.Buffer, v VersionPayload) {
	wire.WriteU32LE(buf, v.ProtoVer)
	wire.WriteServices(buf, v.Services)
	wire.WriteTimestamp(buf, v.Time)
	encodeNetAddr(buf, v.Remote)
	encodeNetAddr(buf, v.Local)
	wire.WriteU64LE(buf, v.Nonce)
	wire.WriteVarString(buf, v.UserAgent)
	wire.WriteU32LE(buf, v.LastBlock)
	wire.WriteBool(buf, v.Relay)
}

func decodeVersion(s *wire.Scanner) (VersionPayload, error) {
	var v VersionPayload
	var err error
	if v.ProtoVer, err = wire.ReadU32LE(s); err != nil {
		return v, err
	}
	if v.Services, err = wire.ReadServices(s); err != nil {
		return v, err
	}
	if v.Time, err = wire.ReadTimestamp(s); err != nil {
		return v, err
	}
	if v.Remote, err = decodeNetAddr(s); err != nil {
		return v, err
	}
	if v.Local, err = decodeNetAddr(s); err != nil {
		return v, err
	}
	if v.Nonce, err = wire.ReadU64LE(s); err != nil {
		return v, err
	}
	if v.UserAgent, err = wire.ReadVarString(s); err != nil {
		return v, err
	}
	if v.LastBlock, err = wire.ReadU32LE(s); err != nil {
		return v, err
	}
	if v.Relay, err = wire.ReadBool(s); err != nil {
		return v, err
	}
	return v, nil
}

// SendCmpctPayload carries the sendcmpct announcement.
type SendCmpctPayload struct {
	Flag    bool
	Integer uint64
}

func encodeSendCmpct(buf *bytes.Buffer, v SendCmpctPayload) {
	wire.WriteBool(buf, v.Flag)
	wire.WriteU64LE(buf, v.Integer)
}

func decodeSendCmpct(s *wire.Scanner) (SendCmpctPayload, error) {
	var v SendCmpctPayload
	var err error
	if v.Flag, err = wire.ReadBool(s); err != nil {
		return v, err
	}
	if v.Integer, err = wire.ReadU64LE(s); err != nil {
		return v, err
	}
	return v, nil
}

// FeeFilterPayload carries the minimum relay fee rate the peer wants to see.
type FeeFilterPayload struct {
	FeeRate uint64
}

func encodeFeeFilter(buf *bytes.Buffer, v FeeFilterPayload) {
	wire.WriteU64LE(buf, v.FeeRate)
}

func decodeFeeFilter(s *wire.Scanner) (FeeFilterPayload, error) {
	rate, err := wire.ReadU64LE(s)
	return FeeFilterPayload{FeeRate: rate}, err
}

// InvPayload is a list of inventory announcements.
type InvPayload struct {
	Items []InventoryElement
}

func encodeInv(buf *bytes.Buffer, v InvPayload) {
	wire.WriteVector(buf, v.Items, encodeInventoryElement)
}

func decodeInv(s *wire.Scanner) (InvPayload, error) {
	items, err := wire.ReadVector(s, decodeInventoryElement)
	if err != nil {
		return InvPayload{}, err
	}
	return InvPayload{Items: items}, nil
}

// AddrPayload is a list of address announcements.
type AddrPayload struct {
	Items []AddrElement
}

func encodeAddr(buf *bytes.Buffer, v AddrPayload) {
	wire.WriteVector(buf, v.Items, encodeAddrElement)
}

func decodeAddr(s *wire.Scanner) (AddrPayload, error) {
	items, err := wire.ReadVector(s, decodeAddrElement)
	if err != nil {
		return AddrPayload{}, err
	}
	return AddrPayload{Items: items}, nil
}

// NewVersion builds a version payload for the handshake. Services is taken
// from local.Services, matching the field the peer is meant to read it
// from: a version message's own services field describes the sender, not
// the recipient.
func NewVersion(local, remote NetAddr, userAgent string, nonce uint64, lastBlock uint32, relay bool) VersionPayload {
	return VersionPayload{
		ProtoVer:  ProtocolVersion,
		Services:  local.Services,
		Time:      time.Now(),
		Local:     local,
		Remote:    remote,
		Nonce:     nonce,
		UserAgent: userAgent,
		LastBlock: lastBlock,
		Relay:     relay,
	}
}
