package unix

import (
	"bufio"
	"net"
	"sync"

	"github.com/nvim-tools/nvrpc/pkg/rpc"
)

// UnixConnection implements the Connection interface over a Unix domain
// socket, the address form a Neovim-style peer hands to embedders.
type UnixConnection struct {
	conn   net.Conn
	writer *bufio.Writer
	mu     sync.Mutex
}

func (c *UnixConnection) Write(p []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.writer.Write(p)
	return err
}

func (c *UnixConnection) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.writer.Flush()
}

func (c *UnixConnection) Read(p []byte) (int, error) {
	return c.conn.Read(p)
}

func (c *UnixConnection) Close() error {
	return c.conn.Close()
}

// ClientTransport implements ClientTransport for Unix sockets
type ClientTransport struct {
	SocketPath string
}

type ClientTransportConfig struct {
	SocketPath string // Path to the Unix socket file
}

func NewClientTransport(config ClientTransportConfig) *ClientTransport {
	return &ClientTransport{
		SocketPath: config.SocketPath,
	}
}

func (t *ClientTransport) Connect() (rpc.Connection, error) {
	conn, err := net.Dial("unix", t.SocketPath)
	if err != nil {
		return nil, &rpc.ConnectionError{Addr: t.SocketPath, Err: err}
	}

	return &UnixConnection{
		conn:   conn,
		writer: bufio.NewWriter(conn),
	}, nil
}
