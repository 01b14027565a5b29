package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"
)

// WriteU8 appends a single byte.
func WriteU8(buf *bytes.Buffer, v uint8) {
	buf.WriteByte(v)
}

// ReadU8 consumes a single byte.
func ReadU8(s *Scanner) (uint8, error) {
	b, err := s.Take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// WriteU16LE appends a little-endian u16.
func WriteU16LE(buf *bytes.Buffer, v uint16) {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	buf.Write(tmp[:])
}

// ReadU16LE consumes a little-endian u16.
func ReadU16LE(s *Scanner) (uint16, error) {
	b, err := s.Take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// WriteU16BE appends a big-endian u16. Used only by the socket-address port field.
func WriteU16BE(buf *bytes.Buffer, v uint16) {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], v)
	buf.Write(tmp[:])
}

// ReadU16BE consumes a big-endian u16.
func ReadU16BE(s *Scanner) (uint16, error) {
	b, err := s.Take(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// WriteU32LE appends a little-endian u32.
func WriteU32LE(buf *bytes.Buffer, v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	buf.Write(tmp[:])
}

// ReadU32LE consumes a little-endian u32.
func ReadU32LE(s *Scanner) (uint32, error) {
	b, err := s.Take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// WriteU64LE appends a little-endian u64.
func WriteU64LE(buf *bytes.Buffer, v uint64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	buf.Write(tmp[:])
}

// ReadU64LE consumes a little-endian u64.
func ReadU64LE(s *Scanner) (uint64, error) {
	b, err := s.Take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// WriteBool appends a single byte: 0 for false, 1 for true.
func WriteBool(buf *bytes.Buffer, v bool) {
	if v {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
}

// ReadBool consumes a single byte; any nonzero value decodes to true.
func ReadBool(s *Scanner) (bool, error) {
	b, err := ReadU8(s)
	if err != nil {
		return false, err
	}
	return b != 0, nil
}

// WriteVarInt appends v using the shortest tag that holds it.
func WriteVarInt(buf *bytes.Buffer, v uint64) {
	switch {
	case v < 0xfd:
		buf.WriteByte(byte(v))
	case v <= 0xffff:
		buf.WriteByte(0xfd)
		WriteU16LE(buf, uint16(v))
	case v <= 0xffffffff:
		buf.WriteByte(0xfe)
		WriteU32LE(buf, uint32(v))
	default:
		buf.WriteByte(0xff)
		WriteU64LE(buf, v)
	}
}

// ReadVarInt dispatches on the first byte and reads the matching trailing
// width. It does not reject non-minimal encodings (a 0xFD-tagged value that
// would have fit in one byte is accepted), matching the reference network's
// reader policy.
func ReadVarInt(s *Scanner) (uint64, error) {
	tag, err := ReadU8(s)
	if err != nil {
		return 0, err
	}
	switch tag {
	case 0xff:
		return ReadU64LE(s)
	case 0xfe:
		v, err := ReadU32LE(s)
		return uint64(v), err
	case 0xfd:
		v, err := ReadU16LE(s)
		return uint64(v), err
	default:
		return uint64(tag), nil
	}
}

// WriteVarString appends a varint length followed by the raw UTF-8 bytes.
func WriteVarString(buf *bytes.Buffer, s string) {
	WriteVarInt(buf, uint64(len(s)))
	buf.WriteString(s)
}

// ReadVarString reads a varint length followed by that many bytes,
// replacing invalid UTF-8 sequences with the Unicode replacement character.
func ReadVarString(s *Scanner) (string, error) {
	n, err := ReadVarInt(s)
	if err != nil {
		return "", fmt.Errorf("var string length: %w", err)
	}
	b, err := s.Take(int(n))
	if err != nil {
		return "", fmt.Errorf("var string body: %w", err)
	}
	return validUTF8(b), nil
}

func validUTF8(b []byte) string {
	return string([]rune(string(b)))
}

// WriteTimestamp appends t as u64 LE seconds since the Unix epoch.
func WriteTimestamp(buf *bytes.Buffer, t time.Time) {
	WriteU64LE(buf, uint64(t.Unix()))
}

// ReadTimestamp reads u64 LE seconds since the Unix epoch.
func ReadTimestamp(s *Scanner) (time.Time, error) {
	secs, err := ReadU64LE(s)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(int64(secs), 0).UTC(), nil
}

// WriteVector appends a varint length followed by each element's encoding.
func WriteVector[T any](buf *bytes.Buffer, items []T, encode func(*bytes.Buffer, T)) {
	WriteVarInt(buf, uint64(len(items)))
	for _, item := range items {
		encode(buf, item)
	}
}

// ReadVector reads a varint length and decodes that many elements with decode.
func ReadVector[T any](s *Scanner, decode func(*Scanner) (T, error)) ([]T, error) {
	n, err := ReadVarInt(s)
	if err != nil {
		return nil, fmt.Errorf("vector length: %w", err)
	}
	out := make([]T, n)
	for i := range out {
		v, err := decode(s)
		if err != nil {
			return nil, fmt.Errorf("vector element %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}
