package rpc

import (
	"context"
)

type callInfoKey struct{}

// CallInfo describes the inbound frame a handler invocation is serving.
type CallInfo struct {
	Method string
	Type   FrameType
	ID     uint64 // zero for notifications
}

func newContextWithCallInfo(ctx context.Context, info CallInfo) context.Context {
	return context.WithValue(ctx, callInfoKey{}, info)
}

// CallInfoFromContext returns the call info attached to a handler context.
func CallInfoFromContext(ctx context.Context) (CallInfo, bool) {
	v := ctx.Value(callInfoKey{})
	if v == nil {
		return CallInfo{}, false
	}
	info, ok := v.(CallInfo)
	return info, ok
}
