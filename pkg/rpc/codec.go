package rpc

import (
	"errors"
	"fmt"
	"sync"

	"github.com/nvim-tools/nvrpc/pkg/msgpack"
)

// Codec encodes frames to wire bytes and decodes wire bytes into frames,
// resolving registered extension type codes to typed wrapper values.
type Codec struct {
	mu   sync.RWMutex
	exts map[int8]func(data []byte) any
}

func NewCodec() *Codec {
	return &Codec{
		exts: make(map[int8]func(data []byte) any),
	}
}

// RegisterExt binds an extension type code to a constructor for the typed
// wrapper it decodes into. Codes are registered once, during the handshake.
func (c *Codec) RegisterExt(code int8, ctor func(data []byte) any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.exts[code]; ok {
		return fmt.Errorf("extension code %d already registered", code)
	}
	c.exts[code] = ctor
	return nil
}

// Resolve implements msgpack.ExtResolver. An unregistered code indicates a
// protocol or version mismatch the client cannot recover from.
func (c *Codec) Resolve(code int8, data []byte) (any, error) {
	c.mu.RLock()
	ctor, ok := c.exts[code]
	c.mu.RUnlock()

	if !ok {
		return nil, &ProtocolError{Reason: fmt.Sprintf("unregistered extension code %d", code)}
	}
	return ctor(data), nil
}

// EncodeFrame serializes a frame into its wire representation.
func (c *Codec) EncodeFrame(frame *Frame) ([]byte, error) {
	writer := getWriter()
	defer putWriter(writer)

	switch frame.Type {
	case FrameRequest:
		msgpack.PackArrayHeader(writer, 4)
		msgpack.PackInt(writer, int64(FrameRequest))
		msgpack.PackUint(writer, frame.ID)
		msgpack.PackString(writer, frame.Method)
		if err := packParams(writer, frame.Params); err != nil {
			return nil, err
		}
	case FrameResponse:
		msgpack.PackArrayHeader(writer, 4)
		msgpack.PackInt(writer, int64(FrameResponse))
		msgpack.PackUint(writer, frame.ID)
		if err := msgpack.PackValue(writer, frame.Error); err != nil {
			return nil, err
		}
		if err := msgpack.PackValue(writer, frame.Result); err != nil {
			return nil, err
		}
	case FrameNotification:
		msgpack.PackArrayHeader(writer, 3)
		msgpack.PackInt(writer, int64(FrameNotification))
		msgpack.PackString(writer, frame.Method)
		if err := packParams(writer, frame.Params); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown frame type %d", frame.Type)
	}

	// the writer is pooled, hand the caller its own copy
	bs := make([]byte, writer.Len())
	copy(bs, writer.Bytes())
	return bs, nil
}

func packParams(writer *msgpack.Writer, params []any) error {
	msgpack.PackArrayHeader(writer, len(params))
	for _, param := range params {
		if err := msgpack.PackValue(writer, param); err != nil {
			return err
		}
	}
	return nil
}

// NewDecoder returns a streaming frame decoder backed by this codec's
// extension registry.
func (c *Codec) NewDecoder() *Decoder {
	return &Decoder{codec: c}
}

// Decoder incrementally decodes frames from a byte stream. Bytes arrive in
// arbitrary chunks via Feed; Next yields one frame at a time and reports
// false while the buffered bytes do not yet hold a complete message.
type Decoder struct {
	codec *Codec
	buf   []byte
}

func (d *Decoder) Feed(p []byte) {
	d.buf = append(d.buf, p...)
}

// Next decodes the next fully-buffered frame. It returns (frame, true, nil)
// on success, (nil, false, nil) when more bytes are needed, and a
// ProtocolError when the buffered bytes are not a valid frame.
func (d *Decoder) Next() (*Frame, bool, error) {
	if len(d.buf) == 0 {
		return nil, false, nil
	}

	reader := msgpack.NewReader(d.buf)
	frame, err := decodeFrame(reader, d.codec)
	if err != nil {
		if errors.Is(err, msgpack.ErrShortBuffer) {
			// incomplete message, keep the buffer untouched
			return nil, false, nil
		}
		var protoErr *ProtocolError
		if errors.As(err, &protoErr) {
			return nil, false, err
		}
		return nil, false, &ProtocolError{Reason: "malformed frame", Err: err}
	}

	d.buf = d.buf[reader.Pos():]
	return frame, true, nil
}

func decodeFrame(reader *msgpack.Reader, exts msgpack.ExtResolver) (*Frame, error) {
	arity, err := msgpack.UnpackArrayHeader(reader)
	if err != nil {
		return nil, err
	}

	kind, err := msgpack.UnpackInt(reader)
	if err != nil {
		return nil, err
	}

	frame := &Frame{Type: FrameType(kind)}

	switch frame.Type {
	case FrameRequest:
		if arity != 4 {
			return nil, &ProtocolError{Reason: fmt.Sprintf("request frame has arity %d, want 4", arity)}
		}
		if frame.ID, err = msgpack.UnpackUint(reader); err != nil {
			return nil, err
		}
		if frame.Method, err = msgpack.UnpackString(reader); err != nil {
			return nil, err
		}
		if frame.Params, err = unpackParams(reader, exts); err != nil {
			return nil, err
		}
	case FrameResponse:
		if arity != 4 {
			return nil, &ProtocolError{Reason: fmt.Sprintf("response frame has arity %d, want 4", arity)}
		}
		if frame.ID, err = msgpack.UnpackUint(reader); err != nil {
			return nil, err
		}
		if frame.Error, err = msgpack.UnpackValue(reader, exts); err != nil {
			return nil, err
		}
		if frame.Result, err = msgpack.UnpackValue(reader, exts); err != nil {
			return nil, err
		}
	case FrameNotification:
		if arity != 3 {
			return nil, &ProtocolError{Reason: fmt.Sprintf("notification frame has arity %d, want 3", arity)}
		}
		if frame.Method, err = msgpack.UnpackString(reader); err != nil {
			return nil, err
		}
		if frame.Params, err = unpackParams(reader, exts); err != nil {
			return nil, err
		}
	default:
		return nil, &ProtocolError{Reason: fmt.Sprintf("unknown frame type %d", kind)}
	}

	return frame, nil
}

func unpackParams(reader *msgpack.Reader, exts msgpack.ExtResolver) ([]any, error) {
	length, err := msgpack.UnpackArrayHeader(reader)
	if err != nil {
		return nil, err
	}
	params := make([]any, length)
	for i := 0; i < length; i++ {
		params[i], err = msgpack.UnpackValue(reader, exts)
		if err != nil {
			return nil, err
		}
	}
	return params, nil
}
