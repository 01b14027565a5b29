package protocol

import (
	"bytes"
	"crypto/sha256"

	"github.com/keato/btc-client/internal/wire"
)

// Magic is the mainnet network magic prefixing every header.
var Magic = [4]byte{0xf9, 0xbe, 0xb4, 0xd9}

// emptyPayloadChecksum is the canonical checksum for a zero-length payload:
// the first four bytes of SHA256(SHA256("")).
var emptyPayloadChecksum = [4]byte{0x5d, 0xf6, 0xe0, 0xe2}

// Header is the 24-byte fixed envelope prefix: magic, command name
// (NUL-padded to 12 bytes), payload size, and checksum.
type Header struct {
	Magic    [4]byte
	Command  [12]byte
	Size     uint32
	Checksum [4]byte
}

// HeaderSize is the fixed on-wire size of a Header.
const HeaderSize = 24

func encodeHeader(buf *bytes.Buffer, h Header) {
	buf.Write(h.Magic[:])
	buf.Write(h.Command[:])
	wire.WriteU32LE(buf, h.Size)
	buf.Write(h.Checksum[:])
}

func decodeHeader(s *wire.Scanner) (Header, error) {
	var h Header
	raw, err := s.Take(HeaderSize)
	if err != nil {
		return h, newDecodeError("header", err)
	}
	scanner := wire.NewScanner(raw)
	magic, _ := scanner.Take(4)
	copy(h.Magic[:], magic)
	cmd, _ := scanner.Take(12)
	copy(h.Command[:], cmd)
	size, _ := wire.ReadU32LE(scanner)
	h.Size = size
	check, _ := scanner.Take(4)
	copy(h.Checksum[:], check)
	return h, nil
}

func commandBytes(name string) [12]byte {
	var out [12]byte
	copy(out[:], name)
	return out
}

func commandString(raw [12]byte) string {
	n := bytes.IndexByte(raw[:], 0)
	if n == -1 {
		n = len(raw)
	}
	return string(raw[:n])
}

func checksum(payload []byte) [4]byte {
	if len(payload) == 0 {
		return emptyPayloadChecksum
	}
	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])
	var out [4]byte
	copy(out[:], second[:4])
	return out
}
