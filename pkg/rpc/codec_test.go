package rpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvim-tools/nvrpc/pkg/msgpack"
)

func newTestCodec(t *testing.T) *Codec {
	codec := NewCodec()
	require.NoError(t, codec.RegisterExt(0, func(data []byte) any {
		return Buffer{newExt(0, data)}
	}))
	require.NoError(t, codec.RegisterExt(1, func(data []byte) any {
		return Window{newExt(1, data)}
	}))
	return codec
}

func decodeOne(t *testing.T, codec *Codec, bs []byte) *Frame {
	decoder := codec.NewDecoder()
	decoder.Feed(bs)
	frame, ok, err := decoder.Next()
	require.NoError(t, err)
	require.True(t, ok)
	return frame
}

func TestFrameRoundTripRequest(t *testing.T) {

	codec := newTestCodec(t)

	input := &Frame{
		Type:   FrameRequest,
		ID:     42,
		Method: "nvim_buf_set_lines",
		Params: []any{
			Buffer{newExt(0, []byte{0x01})},
			int64(0),
			int64(-1),
			false,
			[]any{"line one", "line two"},
		},
	}

	bs, err := codec.EncodeFrame(input)
	require.NoError(t, err)

	output := decodeOne(t, codec, bs)
	assert.Equal(t, input, output)
}

func TestFrameRoundTripResponse(t *testing.T) {

	codec := newTestCodec(t)

	inputs := []*Frame{
		{Type: FrameResponse, ID: 7, Result: int64(99)},
		{Type: FrameResponse, ID: 8, Error: "something went wrong"},
		{Type: FrameResponse, ID: 9, Result: Window{newExt(1, []byte{0x03})}},
	}

	for _, input := range inputs {
		bs, err := codec.EncodeFrame(input)
		require.NoError(t, err)

		output := decodeOne(t, codec, bs)
		assert.Equal(t, input, output)
	}
}

func TestFrameRoundTripNotification(t *testing.T) {

	codec := newTestCodec(t)

	input := &Frame{
		Type:   FrameNotification,
		Method: "nvim_error_event",
		Params: []any{int64(1), "message"},
	}

	bs, err := codec.EncodeFrame(input)
	require.NoError(t, err)

	output := decodeOne(t, codec, bs)
	assert.Equal(t, input, output)
}

func TestRequestWireShape(t *testing.T) {

	codec := newTestCodec(t)

	bs, err := codec.EncodeFrame(&Frame{
		Type:   FrameRequest,
		ID:     1,
		Method: "m",
		Params: []any{},
	})
	require.NoError(t, err)

	// [0, 1, "m", []]
	assert.Equal(t, []byte{0x94, 0x00, 0x01, 0xa1, 'm', 0x90}, bs)
}

func TestEncodeUnsupportedParam(t *testing.T) {

	codec := newTestCodec(t)

	_, err := codec.EncodeFrame(&Frame{
		Type:   FrameNotification,
		Method: "m",
		Params: []any{make(chan int)},
	})
	require.Error(t, err)

	var unsupported *msgpack.UnsupportedTypeError
	assert.ErrorAs(t, err, &unsupported)
}

func TestDecodeUnregisteredExtIsFatal(t *testing.T) {

	codec := newTestCodec(t)

	bs, err := codec.EncodeFrame(&Frame{
		Type: FrameResponse,
		ID:   5,
		Result: msgpack.Ext{
			Code: 99,
			Data: []byte{0x01},
		},
	})
	require.NoError(t, err)

	decoder := codec.NewDecoder()
	decoder.Feed(bs)
	_, _, err = decoder.Next()
	require.Error(t, err)

	var protoErr *ProtocolError
	assert.ErrorAs(t, err, &protoErr)
}

func TestDecodeBadArity(t *testing.T) {

	codec := newTestCodec(t)

	writer := msgpack.NewWriter(16)
	msgpack.PackArrayHeader(writer, 2)
	msgpack.PackInt(writer, 0)
	msgpack.PackUint(writer, 1)

	decoder := codec.NewDecoder()
	decoder.Feed(writer.Bytes())
	_, _, err := decoder.Next()
	require.Error(t, err)

	var protoErr *ProtocolError
	assert.ErrorAs(t, err, &protoErr)
}

func TestDecodeUnknownFrameType(t *testing.T) {

	codec := newTestCodec(t)

	writer := msgpack.NewWriter(16)
	msgpack.PackArrayHeader(writer, 3)
	msgpack.PackInt(writer, 7)
	msgpack.PackString(writer, "m")
	msgpack.PackArrayHeader(writer, 0)

	decoder := codec.NewDecoder()
	decoder.Feed(writer.Bytes())
	_, _, err := decoder.Next()
	require.Error(t, err)

	var protoErr *ProtocolError
	assert.ErrorAs(t, err, &protoErr)
}

func TestDecoderPartialReads(t *testing.T) {

	codec := newTestCodec(t)

	frames := []*Frame{
		{Type: FrameRequest, ID: 1, Method: "first", Params: []any{int64(1)}},
		{Type: FrameNotification, Method: "second", Params: []any{"x", nil}},
		{Type: FrameResponse, ID: 2, Result: Buffer{newExt(0, []byte{0x02})}},
	}

	var wire []byte
	for _, frame := range frames {
		bs, err := codec.EncodeFrame(frame)
		require.NoError(t, err)
		wire = append(wire, bs...)
	}

	// deliver one byte at a time; frames must pop out exactly in order
	decoder := codec.NewDecoder()
	var decoded []*Frame
	for _, b := range wire {
		decoder.Feed([]byte{b})
		for {
			frame, ok, err := decoder.Next()
			require.NoError(t, err)
			if !ok {
				break
			}
			decoded = append(decoded, frame)
		}
	}

	assert.Equal(t, frames, decoded)
}

func TestDecoderMultipleFramesOneChunk(t *testing.T) {

	codec := newTestCodec(t)

	var wire []byte
	for i := 0; i < 5; i++ {
		bs, err := codec.EncodeFrame(&Frame{
			Type:   FrameResponse,
			ID:     uint64(i),
			Result: int64(i * 10),
		})
		require.NoError(t, err)
		wire = append(wire, bs...)
	}

	decoder := codec.NewDecoder()
	decoder.Feed(wire)

	for i := 0; i < 5; i++ {
		frame, ok, err := decoder.Next()
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, uint64(i), frame.ID)
	}

	_, ok, err := decoder.Next()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRegisterExtDuplicateCode(t *testing.T) {

	codec := NewCodec()
	require.NoError(t, codec.RegisterExt(0, func(data []byte) any {
		return Buffer{newExt(0, data)}
	}))

	err := codec.RegisterExt(0, func(data []byte) any {
		return Window{newExt(0, data)}
	})
	require.Error(t, err)
}
