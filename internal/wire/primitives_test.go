package wire

import (
	"bytes"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVarIntBoundaries(t *testing.T) {
	cases := []struct {
		value uint64
		want  []byte
	}{
		{0, []byte{0x00}},
		{0xfc, []byte{0xfc}},
		{0xfd, []byte{0xfd, 0xfd, 0x00}},
		{0xffff, []byte{0xfd, 0xff, 0xff}},
		{0x10000, []byte{0xfe, 0x00, 0x00, 0x01, 0x00}},
		{0xffffffff, []byte{0xfe, 0xff, 0xff, 0xff, 0xff}},
		{0x100000000, []byte{0xff, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00}},
		{0xffffffffffffffff, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}},
	}

	for _, c := range cases {
		var buf bytes.Buffer
		WriteVarInt(&buf, c.value)
		assert.Equal(t, c.want, buf.Bytes())

		got, err := ReadVarInt(NewScanner(buf.Bytes()))
		require.NoError(t, err)
		assert.Equal(t, c.value, got)
	}
}

func TestVarIntAcceptsNonMinimalEncoding(t *testing.T) {
	// 0xFD-prefixed value of 0x10 is not minimal (it fits in one byte) but
	// must still be accepted on decode.
	raw := []byte{0xfd, 0x10, 0x00}
	got, err := ReadVarInt(NewScanner(raw))
	require.NoError(t, err)
	assert.Equal(t, uint64(0x10), got)
}

func TestPrimitiveRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	WriteU8(&buf, 0xab)
	WriteU16LE(&buf, 0x1234)
	WriteU32LE(&buf, 0xdeadbeef)
	WriteU64LE(&buf, 0x0102030405060708)
	WriteBool(&buf, true)
	WriteBool(&buf, false)
	WriteVarString(&buf, "hello")

	s := NewScanner(buf.Bytes())

	u8, err := ReadU8(s)
	require.NoError(t, err)
	assert.Equal(t, uint8(0xab), u8)

	u16, err := ReadU16LE(s)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), u16)

	u32, err := ReadU32LE(s)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xdeadbeef), u32)

	u64, err := ReadU64LE(s)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x0102030405060708), u64)

	b1, err := ReadBool(s)
	require.NoError(t, err)
	assert.True(t, b1)

	b2, err := ReadBool(s)
	require.NoError(t, err)
	assert.False(t, b2)

	str, err := ReadVarString(s)
	require.NoError(t, err)
	assert.Equal(t, "hello", str)

	assert.Equal(t, 0, s.Len())
}

func TestTimestampRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	in := time.Unix(1700000000, 0).UTC()
	WriteTimestamp(&buf, in)

	out, err := ReadTimestamp(NewScanner(buf.Bytes()))
	require.NoError(t, err)
	assert.True(t, in.Equal(out))
}

func TestSocketAddrNormalizesIPv4(t *testing.T) {
	addr := netip.MustParseAddrPort("127.0.0.1:8333")

	var buf bytes.Buffer
	WriteSocketAddr(&buf, addr)
	require.Equal(t, 18, buf.Len())

	got, err := ReadSocketAddr(NewScanner(buf.Bytes()))
	require.NoError(t, err)
	assert.True(t, got.Addr().Is4())
	assert.Equal(t, addr, got)
}

func TestSocketAddrRoundTripsNativeIPv6(t *testing.T) {
	addr := netip.MustParseAddrPort("[2001:db8::1]:8333")

	var buf bytes.Buffer
	WriteSocketAddr(&buf, addr)

	got, err := ReadSocketAddr(NewScanner(buf.Bytes()))
	require.NoError(t, err)
	assert.True(t, got.Addr().Is6())
	assert.False(t, got.Addr().Is4())
	assert.Equal(t, addr, got)
}

func TestServicesEncodingOrsBitsTogether(t *testing.T) {
	s := Services{Network: true, Witness: true, CompactFilters: true}

	var buf bytes.Buffer
	WriteServices(&buf, s)

	got, err := ReadServices(NewScanner(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestVectorRoundTrip(t *testing.T) {
	items := []uint32{1, 2, 3, 4}

	var buf bytes.Buffer
	WriteVector(&buf, items, func(b *bytes.Buffer, v uint32) { WriteU32LE(b, v) })

	got, err := ReadVector(NewScanner(buf.Bytes()), ReadU32LE)
	require.NoError(t, err)
	assert.Equal(t, items, got)
}

func TestScannerDiscipline(t *testing.T) {
	s := NewScanner([]byte{1, 2, 3, 4})

	peeked, err := s.Peek(2)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, peeked)
	assert.Equal(t, 4, s.Len())

	taken, err := s.Take(2)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, taken)
	assert.Equal(t, 2, s.Len())

	_, err = s.Take(3)
	assert.ErrorIs(t, err, ErrShortBuffer)
}
