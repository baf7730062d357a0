package rpc

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by calls that were outstanding, or issued, after
// the connection terminated.
var ErrClosed = errors.New("connection closed")

// ConnectionError reports a failure to establish the underlying stream.
type ConnectionError struct {
	Addr string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to %s: %v", e.Addr, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// ProtocolError reports a malformed frame, an unregistered extension code
// on decode, or malformed handshake metadata. It is fatal: the stream
// cannot be trusted past the point of corruption, so the connection is
// torn down and every pending call rejected.
type ProtocolError struct {
	Reason string
	Err    error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("protocol error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("protocol error: %s", e.Reason)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// RemoteError carries the error payload of a response frame. It is
// delivered only to the caller whose request produced it.
type RemoteError struct {
	Payload any
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote error: %v", e.Payload)
}

// DuplicateHandlerError reports a second registration for a method name.
// It is returned synchronously at registration time; the first
// registration stays intact.
type DuplicateHandlerError struct {
	Method string
}

func (e *DuplicateHandlerError) Error() string {
	return fmt.Sprintf("handler already registered for method %q", e.Method)
}
