package wire

import "bytes"

// Services is the named-bit view of the protocol's service bitfield.
// Bit positions (LSB = bit 0): network=1, getutxo=2, bloom=3, witness=4,
// xthin=5, compact_filters=7, network_limited=10. Unknown bits are ignored
// on decode and need not round-trip.
type Services struct {
	Network        bool `json:"network"`
	GetUTXO        bool `json:"getutxo"`
	Bloom          bool `json:"bloom"`
	Witness        bool `json:"witness"`
	Xthin          bool `json:"xthin"`
	CompactFilters bool `json:"compact_filters"`
	NetworkLimited bool `json:"network_limited"`
}

// WriteServices packs the named flags into their bit positions and appends
// the result as a little-endian u64.
//
// Flags are combined with bitwise-OR, since the field is meant to report
// every service the node offers at once; packing it with AND would zero
// the whole field unless every flag were set, which the network tolerates
// arbitrary combinations of.
func WriteServices(buf *bytes.Buffer, s Services) {
	var bitfield uint64
	if s.Network {
		bitfield |= 1 << 1
	}
	if s.GetUTXO {
		bitfield |= 1 << 2
	}
	if s.Bloom {
		bitfield |= 1 << 3
	}
	if s.Witness {
		bitfield |= 1 << 4
	}
	if s.Xthin {
		bitfield |= 1 << 5
	}
	if s.CompactFilters {
		bitfield |= 1 << 7
	}
	if s.NetworkLimited {
		bitfield |= 1 << 10
	}
	WriteU64LE(buf, bitfield)
}

// ReadServices reads a little-endian u64 and extracts the named bits.
func ReadServices(s *Scanner) (Services, error) {
	bitfield, err := ReadU64LE(s)
	if err != nil {
		return Services{}, err
	}
	return Services{
		Network:        bitfield>>1&1 == 1,
		GetUTXO:        bitfield>>2&1 == 1,
		Bloom:          bitfield>>3&1 == 1,
		Witness:        bitfield>>4&1 == 1,
		Xthin:          bitfield>>5&1 == 1,
		CompactFilters: bitfield>>7&1 == 1,
		NetworkLimited: bitfield>>10&1 == 1,
	}, nil
}
