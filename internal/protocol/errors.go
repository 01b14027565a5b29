package protocol

import "fmt"

// DecodeError wraps any scanner overrun, bad varint, unknown inventory kind,
// or malformed field encountered while parsing a message body.
type DecodeError struct {
	Context string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Context, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func newDecodeError(context string, err error) error {
	return &DecodeError{Context: context, Err: err}
}

// ChecksumMismatch means the header's checksum field disagreed with the
// recomputed double-SHA256 of the payload.
type ChecksumMismatch struct {
	Command  string
	Got      [4]byte
	Expected [4]byte
}

func (e *ChecksumMismatch) Error() string {
	return fmt.Sprintf("checksum mismatch for %q: header says %x, computed %x", e.Command, e.Got, e.Expected)
}

// UnsupportedCommand means the header named a command outside the ten
// known variants. The session logs this at Warn and continues.
type UnsupportedCommand struct {
	Command string
}

func (e *UnsupportedCommand) Error() string {
	return fmt.Sprintf("unsupported command %q", e.Command)
}
