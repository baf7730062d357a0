package rpc

import (
	"github.com/nvim-tools/nvrpc/pkg/msgpack"
)

// FrameType is the leading tag of a msgpack-RPC message array.
type FrameType int64

const (
	FrameRequest      FrameType = 0 // [0, id, method, params]
	FrameResponse     FrameType = 1 // [1, id, error, result]
	FrameNotification FrameType = 2 // [2, method, params]
)

// Frame is one complete msgpack-RPC message unit. Which fields are
// meaningful depends on Type: ID is set for requests and responses,
// Method/Params for requests and notifications, Error/Result for
// responses (exactly one of the two carries the outcome).
type Frame struct {
	Type   FrameType
	ID     uint64
	Method string
	Params []any
	Error  any
	Result any
}

// Buffer, Window and Tabpage are the remote-object kinds a Neovim-style
// peer transmits as msgpack ext values. The type codes are not fixed by
// the protocol; they are learned from the peer during the handshake and
// recorded in each value's embedded Ext.

type Buffer struct {
	msgpack.Ext
}

type Window struct {
	msgpack.Ext
}

type Tabpage struct {
	msgpack.Ext
}

func newExt(code int8, data []byte) msgpack.Ext {
	return msgpack.Ext{Code: code, Data: data}
}
