package tcp

import (
	"bufio"
	"net"
	"sync"

	"github.com/nvim-tools/nvrpc/pkg/rpc"
)

// setNoDelay sets the TCP_NODELAY option on a TCP connection. Small
// frames should go out as soon as the client flushes them.
func setNoDelay(conn net.Conn, noDelay bool) error {
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		return tcpConn.SetNoDelay(noDelay)
	}
	return nil
}

// TCPConnection implements the Connection interface for TCP
type TCPConnection struct {
	conn   net.Conn
	writer *bufio.Writer
	mu     sync.Mutex
}

func (c *TCPConnection) Write(p []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.writer.Write(p)
	return err
}

func (c *TCPConnection) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.writer.Flush()
}

func (c *TCPConnection) Read(p []byte) (int, error) {
	return c.conn.Read(p)
}

func (c *TCPConnection) Close() error {
	return c.conn.Close()
}

// ClientTransport implements ClientTransport for TCP
type ClientTransport struct {
	Address string
}

type ClientTransportConfig struct {
	Address string // host:port of the listening peer
}

func NewClientTransport(config ClientTransportConfig) *ClientTransport {
	return &ClientTransport{
		Address: config.Address,
	}
}

func (t *ClientTransport) Connect() (rpc.Connection, error) {
	conn, err := net.Dial("tcp", t.Address)
	if err != nil {
		return nil, &rpc.ConnectionError{Addr: t.Address, Err: err}
	}

	if err := setNoDelay(conn, true); err != nil {
		conn.Close()
		return nil, &rpc.ConnectionError{Addr: t.Address, Err: err}
	}

	return &TCPConnection{
		conn:   conn,
		writer: bufio.NewWriter(conn),
	}, nil
}
