package rpc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/nvim-tools/nvrpc/pkg/log"
)

const (
	// maxReadSize bounds a single read from the connection. The streaming
	// decoder reassembles messages across reads, so the bound caps memory
	// per read without capping message size.
	maxReadSize = 1_000_000

	sendQueueSize = 1024
)

// Client is an asynchronous msgpack-RPC client. It owns a single duplex
// stream to the peer, multiplexes concurrent outbound requests over it,
// and dispatches inbound notifications and requests to registered
// handlers.
//
// Handlers may be registered before Connect; registering everything up
// front guarantees no inbound message is lost while the handshake runs.
type Client struct {
	conf     ClientConfig
	codec    *Codec
	pending  *pendingCalls
	handlers *handlerTable

	mu      sync.Mutex
	conn    Connection
	sendq   chan []byte
	closed  bool
	ready   bool
	channel int
	apiInfo *APIInfo

	sendDone chan struct{}
	recvDone chan struct{}
	done     chan struct{}

	featureMu sync.Mutex
	features  map[string]bool
}

type ClientConfig struct {
	Transport  ClientTransport
	Name       string  // client name announced in the handshake
	Version    Version // client version announced in the handshake
	ErrHandler func(error)
	Logger     log.Logger
	middleware []Middleware
}

func NewClient(conf ClientConfig) *Client {
	if conf.Name == "" {
		conf.Name = "nvrpc"
	}
	return &Client{
		conf:     conf,
		codec:    NewCodec(),
		pending:  newPendingCalls(),
		handlers: newHandlerTable(),
		sendDone: make(chan struct{}),
		recvDone: make(chan struct{}),
		done:     make(chan struct{}),
		features: make(map[string]bool),
	}
}

func (c *Client) Middleware(middleware Middleware) {
	c.conf.middleware = append(c.conf.middleware, middleware)
}

// Connect opens the transport, starts the send and receive loops, and
// runs the handshake. Any handshake failure fails the whole connection;
// there is no degraded ready state.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.conn != nil {
		c.mu.Unlock()
		return fmt.Errorf("client is already connected")
	}
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.mu.Unlock()

	c.logDebug("connecting to peer")
	conn, err := c.conf.Transport.Connect()
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.sendq = make(chan []byte, sendQueueSize)
	c.mu.Unlock()

	go c.sendLoop(conn)
	go c.recvLoop(conn)
	go func() {
		// the connection lifecycle ends only when both loops have terminated
		<-c.sendDone
		<-c.recvDone
		close(c.done)
	}()

	if err := c.handshake(ctx); err != nil {
		c.shutdown(err)
		return err
	}
	return nil
}

func (c *Client) handshake(ctx context.Context) error {
	version := map[string]any{
		"major": c.conf.Version.Major,
		"minor": c.conf.Version.Minor,
		"patch": c.conf.Version.Patch,
	}
	err := c.Notify("nvim_set_client_info", c.conf.Name, version, "remote", []any{}, map[string]any{})
	if err != nil {
		return err
	}

	result, err := c.Request(ctx, "nvim_get_api_info")
	if err != nil {
		return err
	}

	info, err := parseAPIInfo(result)
	if err != nil {
		return err
	}
	if err := registerExtTypes(c.codec, info); err != nil {
		return err
	}

	c.mu.Lock()
	c.apiInfo = info
	c.channel = info.Channel
	c.ready = true
	c.mu.Unlock()

	c.logInfo(fmt.Sprintf("handshake complete, channel %d", info.Channel))
	return nil
}

// Notify sends a notification frame. No response is expected.
func (c *Client) Notify(method string, params ...any) error {
	chain := buildCallChain(c.conf.middleware, c.doNotify)
	_, err := chain(context.Background(), method, params)
	return err
}

// Request sends a request frame and blocks until the matching response
// arrives or the connection terminates. A response carrying an error
// payload surfaces as a *RemoteError. Cancelling ctx abandons the wait;
// the eventual response is dropped by the correlator.
func (c *Client) Request(ctx context.Context, method string, params ...any) (any, error) {
	chain := buildCallChain(c.conf.middleware, c.doRequest)
	return chain(ctx, method, params)
}

func (c *Client) doNotify(_ context.Context, method string, params []any) (any, error) {
	bs, err := c.codec.EncodeFrame(&Frame{
		Type:   FrameNotification,
		Method: method,
		Params: params,
	})
	if err != nil {
		return nil, err
	}
	return nil, c.enqueue(bs)
}

func (c *Client) doRequest(ctx context.Context, method string, params []any) (any, error) {
	id, ch, err := c.pending.create()
	if err != nil {
		return nil, err
	}

	bs, err := c.codec.EncodeFrame(&Frame{
		Type:   FrameRequest,
		ID:     id,
		Method: method,
		Params: params,
	})
	if err != nil {
		c.pending.drop(id)
		return nil, err
	}

	if err := c.enqueue(bs); err != nil {
		c.pending.drop(id)
		return nil, err
	}

	select {
	case res := <-ch:
		return res.result, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// OnNotify registers a handler for an inbound notification method.
func (c *Client) OnNotify(method string, handler NotifyHandler) error {
	return c.handlers.registerNotify(method, handler)
}

// OnRequest registers a handler for an inbound request method.
func (c *Client) OnRequest(method string, handler RequestHandler) error {
	return c.handlers.registerRequest(method, handler)
}

// Channel returns the peer-assigned identifier for this connection.
// Calling it before the handshake has completed is a programming error.
func (c *Client) Channel() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.ready {
		panic("rpc: Channel called before handshake completion")
	}
	return c.channel
}

// APIInfo returns the metadata received during the handshake, or nil
// before the handshake has completed.
func (c *Client) APIInfo() *APIInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.apiInfo
}

// Has reports whether the peer supports the named feature, memoized per
// client instance.
func (c *Client) Has(ctx context.Context, feature string) (bool, error) {
	c.featureMu.Lock()
	if has, ok := c.features[feature]; ok {
		c.featureMu.Unlock()
		return has, nil
	}
	c.featureMu.Unlock()

	result, err := c.Request(ctx, "nvim_call_function", "has", []any{feature})
	if err != nil {
		return false, err
	}

	has := false
	switch v := result.(type) {
	case int64:
		has = v != 0
	case bool:
		has = v
	}

	c.featureMu.Lock()
	c.features[feature] = has
	c.featureMu.Unlock()
	return has, nil
}

// Close tears down the connection and rejects every outstanding request.
// Closing an already-closed client is a no-op.
func (c *Client) Close() error {
	c.shutdown(ErrClosed)
	return nil
}

// Done is closed once both the send and receive loops have terminated.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// enqueue queues an encoded frame followed by a flush sentinel. Bytes are
// written to the wire in exact enqueue order.
func (c *Client) enqueue(bs []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if c.conn == nil {
		return fmt.Errorf("client is not connected")
	}
	c.sendq <- bs
	c.sendq <- nil
	return nil
}

// sendLoop drains the outbound queue in FIFO order. A nil element is the
// flush sentinel: push buffered writes to the peer without closing the
// stream. Write failures are logged and the loop keeps draining; the
// receive loop observes the broken connection and tears the client down.
func (c *Client) sendLoop(conn Connection) {
	defer close(c.sendDone)

	for bs := range c.sendq {
		if bs == nil {
			if err := conn.Flush(); err != nil {
				c.logDebug(fmt.Sprintf("flush failed: %v", err))
			}
			continue
		}
		if err := conn.Write(bs); err != nil {
			c.logDebug(fmt.Sprintf("write failed: %v", err))
		}
	}
}

// recvLoop reads raw chunks from the connection, feeds them to the
// streaming decoder, and processes each decoded frame in arrival order.
// Handler invocations run on their own goroutines so a slow handler never
// stalls decoding.
func (c *Client) recvLoop(conn Connection) {
	defer close(c.recvDone)

	decoder := c.codec.NewDecoder()
	buf := make([]byte, maxReadSize)

	for {
		n, err := conn.Read(buf)
		if n > 0 {
			decoder.Feed(buf[:n])
			for {
				frame, ok, derr := decoder.Next()
				if derr != nil {
					c.handleError(derr)
					c.shutdown(derr)
					return
				}
				if !ok {
					break
				}
				c.handleFrame(frame)
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) || c.isClosed() {
				c.logDebug("connection closed")
				c.shutdown(ErrClosed)
			} else {
				c.handleError(err)
				c.shutdown(err)
			}
			return
		}
	}
}

func (c *Client) handleFrame(frame *Frame) {
	switch frame.Type {
	case FrameResponse:
		res := callResult{result: frame.Result}
		if frame.Error != nil {
			res = callResult{err: &RemoteError{Payload: frame.Error}}
		}
		if !c.pending.settle(frame.ID, res) {
			c.logWarn(fmt.Sprintf("dropping response with unknown request id %d", frame.ID))
		}
	case FrameRequest:
		go c.serveRequest(frame)
	case FrameNotification:
		go c.serveNotification(frame)
	}
}

func (c *Client) serveRequest(frame *Frame) {
	handler, ok := c.handlers.lookupRequest(frame.Method)
	if !ok {
		c.logWarn(fmt.Sprintf("no handler registered for inbound request %q", frame.Method))
		return
	}

	ctx := newContextWithCallInfo(context.Background(), CallInfo{
		Method: frame.Method,
		Type:   FrameRequest,
		ID:     frame.ID,
	})
	result, err := invokeRequestHandler(ctx, handler, frame.Params)

	response := &Frame{Type: FrameResponse, ID: frame.ID}
	if err != nil {
		response.Error = err.Error()
	} else {
		response.Result = result
	}

	bs, encErr := c.codec.EncodeFrame(response)
	if encErr != nil {
		// the handler returned something unencodable; report that instead
		bs, _ = c.codec.EncodeFrame(&Frame{
			Type:  FrameResponse,
			ID:    frame.ID,
			Error: encErr.Error(),
		})
	}

	if err := c.enqueue(bs); err != nil {
		c.logDebug(fmt.Sprintf("dropping response for request %d: %v", frame.ID, err))
	}
}

func (c *Client) serveNotification(frame *Frame) {
	handler, ok := c.handlers.lookupNotify(frame.Method)
	if !ok {
		c.logWarn(fmt.Sprintf("no handler registered for inbound notification %q", frame.Method))
		return
	}

	ctx := newContextWithCallInfo(context.Background(), CallInfo{
		Method: frame.Method,
		Type:   FrameNotification,
	})
	if err := invokeNotifyHandler(ctx, handler, frame.Params); err != nil {
		c.logWarn(fmt.Sprintf("notification handler %q failed: %v", frame.Method, err))
	}
}

// shutdown terminates the connection at most once, stopping the send
// loop, closing the stream, and rejecting every outstanding call so no
// caller of Request hangs after disconnect.
func (c *Client) shutdown(reason error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	conn := c.conn
	if c.sendq != nil {
		close(c.sendq)
	}
	c.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	c.pending.rejectAll(reason)
}

func (c *Client) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Client) handleError(err error) {
	c.logError("encountered error: " + err.Error())
	if c.conf.ErrHandler != nil {
		c.conf.ErrHandler(err)
	}
}

func (c *Client) logDebug(msg string) {
	if c.conf.Logger != nil {
		c.conf.Logger.Debug(msg)
	}
}

func (c *Client) logInfo(msg string) {
	if c.conf.Logger != nil {
		c.conf.Logger.Info(msg)
	}
}

func (c *Client) logWarn(msg string) {
	if c.conf.Logger != nil {
		c.conf.Logger.Warn(msg)
	}
}

func (c *Client) logError(msg string) {
	if c.conf.Logger != nil {
		c.conf.Logger.Error(msg)
	}
}
