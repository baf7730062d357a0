package websocket

import (
	"io"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nvim-tools/nvrpc/pkg/rpc"
)

func closeDeadline() time.Time {
	return time.Now().Add(time.Second)
}

// WebSocketConnection implements the Connection interface over a
// WebSocket. Each Flush ships the bytes buffered since the previous
// flush as one binary message; inbound binary messages are drained
// through a remainder buffer so the client sees a plain byte stream.
type WebSocketConnection struct {
	conn *websocket.Conn

	writeMu  sync.Mutex
	writeBuf []byte

	readBuf []byte
}

func (c *WebSocketConnection) Write(p []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.writeBuf = append(c.writeBuf, p...)
	return nil
}

func (c *WebSocketConnection) Flush() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if len(c.writeBuf) == 0 {
		return nil
	}
	err := c.conn.WriteMessage(websocket.BinaryMessage, c.writeBuf)
	c.writeBuf = c.writeBuf[:0]
	return err
}

func (c *WebSocketConnection) Read(p []byte) (int, error) {
	for len(c.readBuf) == 0 {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return 0, io.EOF
			}
			return 0, err
		}
		c.readBuf = data
	}

	n := copy(p, c.readBuf)
	c.readBuf = c.readBuf[n:]
	return n, nil
}

func (c *WebSocketConnection) Close() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	// best effort close frame; the peer may already be gone
	_ = c.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		closeDeadline(),
	)

	return c.conn.Close()
}

// ClientTransport implements ClientTransport for WebSocket
type ClientTransport struct {
	URL string
}

type ClientTransportConfig struct {
	URL string // e.g. ws://localhost:9000/rpc
}

func NewClientTransport(config ClientTransportConfig) *ClientTransport {
	return &ClientTransport{
		URL: config.URL,
	}
}

func (t *ClientTransport) Connect() (rpc.Connection, error) {
	conn, _, err := websocket.DefaultDialer.Dial(t.URL, nil)
	if err != nil {
		return nil, &rpc.ConnectionError{Addr: t.URL, Err: err}
	}

	return &WebSocketConnection{
		conn: conn,
	}, nil
}
