package wire

import (
	"bytes"
	"fmt"
	"net/netip"
)

// WriteSocketAddr appends the 16-byte IPv6 form of addr (IPv4 addresses are
// mapped to ::ffff:a.b.c.d) followed by the port as big-endian u16 — the
// only big-endian field in the protocol.
func WriteSocketAddr(buf *bytes.Buffer, addr netip.AddrPort) {
	v6 := addr.Addr().As16()
	buf.Write(v6[:])
	WriteU16BE(buf, addr.Port())
}

// ReadSocketAddr consumes 16 bytes of IPv6 address and a 2-byte big-endian
// port, normalizing an IPv4-mapped address back to its IPv4 form.
func ReadSocketAddr(s *Scanner) (netip.AddrPort, error) {
	raw, err := s.Take(16)
	if err != nil {
		return netip.AddrPort{}, fmt.Errorf("socket address: %w", err)
	}
	var v6 [16]byte
	copy(v6[:], raw)
	ip := netip.AddrFrom16(v6).Unmap()

	port, err := ReadU16BE(s)
	if err != nil {
		return netip.AddrPort{}, fmt.Errorf("socket address port: %w", err)
	}
	return netip.AddrPortFrom(ip, port), nil
}
