// Package frame implements the length-prefixed message framing used on
// the wire: a 1-byte compression flag, a 4-byte big-endian payload
// length, and the payload itself.
package frame

import (
	"encoding/binary"
	"fmt"
	"io"
)

// headerSize is the size of the frame header: 1 compression byte + 4
// big-endian length bytes.
const headerSize = 5

// maxPayload bounds a single frame's payload to guard against a
// corrupt or hostile length field forcing an unbounded allocation.
const maxPayload = 1 << 28 // 256 MiB

// Write encodes msg as a single frame and writes it to w. compressed
// must be false until the protocol assigns compression algorithm
// values; the leading byte stays zero.
func Write(w io.Writer, msg []byte, compressed bool) error {
	var hdr [headerSize]byte
	if compressed {
		hdr[0] = 1
	}
	binary.BigEndian.PutUint32(hdr[1:], uint32(len(msg)))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	if len(msg) == 0 {
		return nil
	}
	_, err := w.Write(msg)
	return err
}

// Decode parses exactly one frame out of buf, which must contain
// precisely one frame's worth of bytes (header + payload), and returns
// the payload. It is the non-streaming counterpart to Reader, used
// where a full message is already buffered.
func Decode(buf []byte) ([]byte, error) {
	if len(buf) < headerSize {
		return nil, fmt.Errorf("frame: buffer too short for header: %d bytes", len(buf))
	}
	length := binary.BigEndian.Uint32(buf[1:headerSize])
	payload := buf[headerSize:]
	if uint32(len(payload)) != length {
		return nil, fmt.Errorf("frame: declared length %d does not match actual length %d", length, len(payload))
	}
	return payload, nil
}

// Reader is a streaming deframer: it buffers arriving bytes and emits
// each complete message as soon as its declared length is satisfied,
// retaining any partial suffix for the next call.
type Reader struct {
	r   io.Reader
	buf []byte
}

// NewReader wraps r as a streaming deframer.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// ReadMessage returns the next complete message, blocking on reads from
// the underlying io.Reader as needed. It returns io.EOF only when the
// stream ends exactly on a message boundary; a stream that ends with a
// non-empty partial buffer returns an error instead of a silent EOF,
// since that buffer can never decode cleanly.
func (r *Reader) ReadMessage() ([]byte, error) {
	for {
		if msg, ok, err := r.tryExtract(); err != nil {
			return nil, err
		} else if ok {
			return msg, nil
		}
		chunk := make([]byte, 32*1024)
		n, err := r.r.Read(chunk)
		if n > 0 {
			r.buf = append(r.buf, chunk[:n]...)
		}
		if err != nil {
			if err == io.EOF {
				if len(r.buf) == 0 {
					return nil, io.EOF
				}
				return nil, fmt.Errorf("frame: stream ended with %d undecoded bytes remaining", len(r.buf))
			}
			return nil, err
		}
	}
}

func (r *Reader) tryExtract() (msg []byte, ok bool, err error) {
	if len(r.buf) < headerSize {
		return nil, false, nil
	}
	length := binary.BigEndian.Uint32(r.buf[1:headerSize])
	if length > maxPayload {
		return nil, false, fmt.Errorf("frame: declared length %d exceeds maximum %d", length, maxPayload)
	}
	total := headerSize + int(length)
	if len(r.buf) < total {
		return nil, false, nil
	}
	msg = make([]byte, length)
	copy(msg, r.buf[headerSize:total])
	remaining := make([]byte, len(r.buf)-total)
	copy(remaining, r.buf[total:])
	r.buf = remaining
	return msg, true, nil
}
