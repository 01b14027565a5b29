package protocol

import (
	"bytes"
	"net/netip"
	"testing"
	"time"

	"github.com/keato/btc-client/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeOne(t *testing.T, blob []byte) Envelope {
	t.Helper()
	s := wire.NewScanner(blob)
	h, err := DecodeHeader(s)
	require.NoError(t, err)
	body, err := s.Take(int(h.Size))
	require.NoError(t, err)
	env, err := DecodeBody(h, body)
	require.NoError(t, err)
	return env
}

func TestVersionEncodeFixture(t *testing.T) {
	local := NetAddr{Addr: netip.MustParseAddrPort("127.0.0.1:8333")}
	remote := NetAddr{Addr: netip.MustParseAddrPort("127.0.0.1:8333")}

	v := VersionPayload{
		ProtoVer:  ProtocolVersion,
		Time:      time.Unix(0, 0).UTC(),
		Local:     local,
		Remote:    remote,
		Nonce:     0,
		UserAgent: "x",
		LastBlock: 0,
		Relay:     false,
	}

	blob := Encode(Envelope{Payload: v})

	want := []byte{0xf9, 0xbe, 0xb4, 0xd9, 'v', 'e', 'r', 's', 'i', 'o', 'n', 0, 0, 0, 0, 0}
	require.True(t, len(blob) >= len(want))
	assert.Equal(t, want, blob[:len(want)])

	size := uint32(blob[16]) | uint32(blob[17])<<8 | uint32(blob[18])<<16 | uint32(blob[19])<<24
	assert.Equal(t, uint32(len(blob)-HeaderSize), size)

	payload := blob[HeaderSize:]
	assert.Equal(t, checksum(payload), [4]byte{blob[20], blob[21], blob[22], blob[23]})
}

func TestVerAckRoundTrip(t *testing.T) {
	blob := Encode(Envelope{Payload: VerAck{}})
	require.Len(t, blob, HeaderSize)
	assert.Equal(t, commandBytes("verack"), [12]byte(blob[4:16]))
	assert.Equal(t, [4]byte{0x5d, 0xf6, 0xe0, 0xe2}, [4]byte(blob[20:24]))

	env := decodeOne(t, blob)
	assert.Equal(t, VerAck{}, env.Payload)
}

func TestEnvelopeRoundTripAllVariants(t *testing.T) {
	addr := netip.MustParseAddrPort("8.8.8.8:8333")
	na := NetAddr{Services: wire.Services{Network: true}, Addr: addr}

	variants := []Payload{
		VersionPayload{ProtoVer: ProtocolVersion, Time: time.Unix(1700000000, 0).UTC(), Local: na, Remote: na, Nonce: 42, UserAgent: "/test:0.0.1/", LastBlock: 100, Relay: true},
		VerAck{},
		SendHeaders{},
		SendCmpctPayload{Flag: true, Integer: 1},
		Ping{Nonce: 1234},
		Pong{Nonce: 1234},
		FeeFilterPayload{FeeRate: 1000},
		InvPayload{Items: []InventoryElement{{Kind: InvTx, Hash: [32]byte{1, 2, 3}}}},
		GetAddr{},
		AddrPayload{Items: []AddrElement{{Timestamp: 123, NetAddr: na}}},
	}

	for _, p := range variants {
		blob := Encode(Envelope{Payload: p})
		env := decodeOne(t, blob)
		assert.Equal(t, p, env.Payload, "round trip for %s", p.Command())

		reencoded := Encode(env)
		assert.Equal(t, blob, reencoded, "re-encode for %s", p.Command())
	}
}

func TestChecksumValidForEveryEnvelope(t *testing.T) {
	na := NetAddr{Addr: netip.MustParseAddrPort("127.0.0.1:8333")}
	variants := []Payload{
		VersionPayload{ProtoVer: ProtocolVersion, Time: time.Unix(0, 0).UTC(), Local: na, Remote: na, UserAgent: "x"},
		VerAck{},
		SendHeaders{},
		SendCmpctPayload{Flag: true, Integer: 1},
		Ping{Nonce: 7},
		Pong{Nonce: 7},
		FeeFilterPayload{FeeRate: 1000},
		InvPayload{Items: []InventoryElement{{Kind: InvBlock, Hash: [32]byte{9}}}},
		GetAddr{},
		AddrPayload{Items: []AddrElement{{Timestamp: 1, NetAddr: na}}},
	}

	for _, p := range variants {
		blob := Encode(Envelope{Payload: p})
		payload := blob[HeaderSize:]
		assert.Equal(t, checksum(payload), [4]byte{blob[20], blob[21], blob[22], blob[23]}, "checksum for %s", p.Command())
	}
}

func TestDecodeHeaderRejectsBadMagic(t *testing.T) {
	blob := Encode(Envelope{Payload: VerAck{}})
	blob[0] ^= 0xff

	_, err := DecodeHeader(wire.NewScanner(blob))
	require.Error(t, err)
	var de *DecodeError
	assert.ErrorAs(t, err, &de)
}

func TestDecodeBodyRejectsChecksumMismatch(t *testing.T) {
	blob := Encode(Envelope{Payload: Ping{Nonce: 99}})
	// Flip a bit in the payload, leaving the header's checksum stale.
	blob[len(blob)-1] ^= 0x01

	s := wire.NewScanner(blob)
	h, err := DecodeHeader(s)
	require.NoError(t, err)
	body, err := s.Take(int(h.Size))
	require.NoError(t, err)

	_, err = DecodeBody(h, body)
	var mismatch *ChecksumMismatch
	require.ErrorAs(t, err, &mismatch)
}

func TestDecodeBodyRejectsUnsupportedCommand(t *testing.T) {
	h := Header{Magic: Magic, Command: commandBytes("notreal"), Size: 0, Checksum: checksum(nil)}
	_, err := DecodeBody(h, nil)
	var uc *UnsupportedCommand
	require.ErrorAs(t, err, &uc)
}

func TestInvDisplayOrderIsReversed(t *testing.T) {
	var hash [32]byte
	for i := range hash {
		hash[i] = byte(i + 1) // 01 02 03 ... 20
	}
	elem := InventoryElement{Kind: InvTx, Hash: hash}

	be := elem.HashBE()
	var buf bytes.Buffer
	for _, b := range be {
		buf.WriteString(hexByte(b))
	}
	assert.Equal(t, "201f1e1d1c1b1a191817161514131211100f0e0d0c0b0a090807060504030201", buf.String())
}

func hexByte(b byte) string {
	const hexDigits = "0123456789abcdef"
	return string([]byte{hexDigits[b>>4], hexDigits[b&0xf]})
}

func TestInventoryKindRejectsUnknownValue(t *testing.T) {
	var buf bytes.Buffer
	wire.WriteU32LE(&buf, 0xdeadbeef)
	buf.Write(make([]byte, 32))

	_, err := decodeInventoryElement(wire.NewScanner(buf.Bytes()))
	require.Error(t, err)
	var de *DecodeError
	assert.ErrorAs(t, err, &de)
}
