package msgpack

import (
	"errors"
)

// ErrShortBuffer reports that the reader does not hold enough bytes to
// finish decoding the current value. Streaming callers treat it as "wait
// for more input": the reader consumes nothing beyond what the caller
// chooses to keep, so decoding can restart from the retained buffer once
// the rest of the message arrives.
var ErrShortBuffer = errors.New("msgpack: short buffer")

// Reader is a positional reader over a byte slice.
type Reader struct {
	bytes []byte
	rpos  int
}

func NewReader(data []byte) *Reader {
	return &Reader{
		bytes: data,
	}
}

// Read returns the next n bytes, failing with ErrShortBuffer if fewer remain.
func (r *Reader) Read(n int) ([]byte, error) {
	if r.rpos+n > len(r.bytes) {
		return nil, ErrShortBuffer
	}
	bs := r.bytes[r.rpos : r.rpos+n]
	r.rpos += n
	return bs, nil
}

func (r *Reader) ReadByte() (byte, error) {
	if r.rpos >= len(r.bytes) {
		return 0, ErrShortBuffer
	}
	b := r.bytes[r.rpos]
	r.rpos++
	return b, nil
}

// Peek returns the next byte without consuming it.
func (r *Reader) Peek() (byte, error) {
	if r.rpos >= len(r.bytes) {
		return 0, ErrShortBuffer
	}
	return r.bytes[r.rpos], nil
}

// Pos returns the number of bytes consumed so far.
func (r *Reader) Pos() int {
	return r.rpos
}

func (r *Reader) Remaining() int {
	return len(r.bytes) - r.rpos
}
