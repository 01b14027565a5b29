package protocol

import (
	"io"

	"github.com/keato/btc-client/internal/wire"
)

// ReadEnvelope reads one full message from r: the 24-byte header via
// io.ReadFull, then header.Size more bytes for the payload, also via
// io.ReadFull. This buffers until the full message is available rather than
// assuming (as a peek-then-read_exact pattern would) that the whole header
// has already arrived in one read.
func ReadEnvelope(r io.Reader) (Envelope, int, error) {
	headerBuf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, headerBuf); err != nil {
		return Envelope{}, 0, err
	}

	h, err := DecodeHeader(wire.NewScanner(headerBuf))
	if err != nil {
		return Envelope{}, HeaderSize, err
	}

	body := make([]byte, h.Size)
	if len(body) > 0 {
		if _, err := io.ReadFull(r, body); err != nil {
			return Envelope{}, HeaderSize, err
		}
	}

	env, err := DecodeBody(h, body)
	return env, HeaderSize + len(body), err
}

// WriteEnvelope writes the encoded envelope to w.
func WriteEnvelope(w io.Writer, e Envelope) error {
	_, err := w.Write(Encode(e))
	return err
}
