package rpc

import (
	"context"
	"fmt"
	"sync"
)

// RequestHandler serves an inbound request. The returned value becomes the
// response result; a non-nil error (or a panic, which is recovered) is
// converted to a response error and never tears down the connection.
type RequestHandler func(ctx context.Context, params []any) (any, error)

// NotifyHandler serves an inbound notification. Errors are logged, not
// propagated; the peer is not expecting a reply.
type NotifyHandler func(ctx context.Context, params []any) error

// handlerTable maps method names to handlers. At most one handler per
// method name; registration never unregisters.
type handlerTable struct {
	mu       sync.RWMutex
	requests map[string]RequestHandler
	notifies map[string]NotifyHandler
}

func newHandlerTable() *handlerTable {
	return &handlerTable{
		requests: make(map[string]RequestHandler),
		notifies: make(map[string]NotifyHandler),
	}
}

func (t *handlerTable) registerRequest(method string, handler RequestHandler) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.requests[method]; ok {
		return &DuplicateHandlerError{Method: method}
	}
	t.requests[method] = handler
	return nil
}

func (t *handlerTable) registerNotify(method string, handler NotifyHandler) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.notifies[method]; ok {
		return &DuplicateHandlerError{Method: method}
	}
	t.notifies[method] = handler
	return nil
}

func (t *handlerTable) lookupRequest(method string) (RequestHandler, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	handler, ok := t.requests[method]
	return handler, ok
}

func (t *handlerTable) lookupNotify(method string) (NotifyHandler, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	handler, ok := t.notifies[method]
	return handler, ok
}

// invokeRequestHandler runs a request handler, converting a panic into an
// error so a misbehaving handler cannot crash the dispatch goroutine.
func invokeRequestHandler(ctx context.Context, handler RequestHandler, params []any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return handler(ctx, params)
}

func invokeNotifyHandler(ctx context.Context, handler NotifyHandler, params []any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return handler(ctx, params)
}
