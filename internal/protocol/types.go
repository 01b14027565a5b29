package protocol

import (
	"bytes"
	"fmt"
	"net/netip"

	"github.com/keato/btc-client/internal/wire"
)

// NetAddr is a services bitfield paired with a socket address, the
// representation used both standalone (version message's addr_recv/
// addr_from) and as the payload of each addr-list element.
type NetAddr struct {
	Services wire.Services
	Addr     netip.AddrPort
}

func encodeNetAddr(buf *bytes.Buffer, a NetAddr) {
	wire.WriteServices(buf, a.Services)
	wire.WriteSocketAddr(buf, a.Addr)
}

func decodeNetAddr(s *wire.Scanner) (NetAddr, error) {
	services, err := wire.ReadServices(s)
	if err != nil {
		return NetAddr{}, err
	}
	addr, err := wire.ReadSocketAddr(s)
	if err != nil {
		return NetAddr{}, err
	}
	return NetAddr{Services: services, Addr: addr}, nil
}

// AddrElement is one entry of an addr message: a NetAddr plus the time the
// sender last saw that address active.
type AddrElement struct {
	Timestamp uint32
	NetAddr   NetAddr
}

func encodeAddrElement(buf *bytes.Buffer, e AddrElement) {
	wire.WriteU32LE(buf, e.Timestamp)
	encodeNetAddr(buf, e.NetAddr)
}

func decodeAddrElement(s *wire.Scanner) (AddrElement, error) {
	ts, err := wire.ReadU32LE(s)
	if err != nil {
		return AddrElement{}, err
	}
	na, err := decodeNetAddr(s)
	if err != nil {
		return AddrElement{}, err
	}
	return AddrElement{Timestamp: ts, NetAddr: na}, nil
}

// InventoryKind identifies what an InventoryElement refers to.
type InventoryKind uint32

const (
	InvError                InventoryKind = 0x0
	InvTx                   InventoryKind = 0x1
	InvBlock                InventoryKind = 0x2
	InvFilteredBlock        InventoryKind = 0x3
	InvCmpctBlock           InventoryKind = 0x4
	InvWitnessTx            InventoryKind = 0x40000001
	InvWitnessBlock         InventoryKind = 0x40000002
	InvFilteredWitnessBlock InventoryKind = 0x40000003
)

func (k InventoryKind) String() string {
	switch k {
	case InvError:
		return "Error"
	case InvTx:
		return "Tx"
	case InvBlock:
		return "Block"
	case InvFilteredBlock:
		return "FilteredBlock"
	case InvCmpctBlock:
		return "CmpctBlock"
	case InvWitnessTx:
		return "WitnessTx"
	case InvWitnessBlock:
		return "WitnessBlock"
	case InvFilteredWitnessBlock:
		return "FilteredWitnessBlock"
	default:
		return "Unknown"
	}
}

func validInventoryKind(k InventoryKind) bool {
	switch k {
	case InvError, InvTx, InvBlock, InvFilteredBlock, InvCmpctBlock,
		InvWitnessTx, InvWitnessBlock, InvFilteredWitnessBlock:
		return true
	default:
		return false
	}
}

// InventoryElement is a compact reference to a transaction or block.
type InventoryElement struct {
	Kind InventoryKind
	Hash [32]byte
}

// HashBE returns the element's hash in the conventional (reversed)
// display order used by block explorers and this client's log output.
func (e InventoryElement) HashBE() [32]byte {
	var out [32]byte
	for i, b := range e.Hash {
		out[31-i] = b
	}
	return out
}

func encodeInventoryElement(buf *bytes.Buffer, e InventoryElement) {
	wire.WriteU32LE(buf, uint32(e.Kind))
	buf.Write(e.Hash[:])
}

func decodeInventoryElement(s *wire.Scanner) (InventoryElement, error) {
	kind, err := wire.ReadU32LE(s)
	if err != nil {
		return InventoryElement{}, err
	}
	if !validInventoryKind(InventoryKind(kind)) {
		return InventoryElement{}, newDecodeError("inventory kind", ErrUnknownInventoryKind(kind))
	}
	hash, err := s.Take(32)
	if err != nil {
		return InventoryElement{}, err
	}
	var out InventoryElement
	out.Kind = InventoryKind(kind)
	copy(out.Hash[:], hash)
	return out, nil
}

// ErrUnknownInventoryKind reports an inventory kind value outside the
// closed set of known codes.
type ErrUnknownInventoryKind uint32

func (e ErrUnknownInventoryKind) Error() string {
	return fmt.Sprintf("unknown inventory kind 0x%x", uint32(e))
}
