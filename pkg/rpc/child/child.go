package child

import (
	"bufio"
	"fmt"
	"io"
	"os/exec"
	"sync"

	"github.com/nvim-tools/nvrpc/pkg/rpc"
)

// ChildConnection implements the Connection interface over the stdin and
// stdout pipes of an embedded peer process (e.g. `nvim --embed`).
type ChildConnection struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
	writer *bufio.Writer
	mu     sync.Mutex

	closeOnce sync.Once
	closeErr  error
}

func (c *ChildConnection) Write(p []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.writer.Write(p)
	return err
}

func (c *ChildConnection) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.writer.Flush()
}

func (c *ChildConnection) Read(p []byte) (int, error) {
	return c.stdout.Read(p)
}

// Close shuts the child's stdin, which a well-behaved embedded peer
// treats as a request to exit, and reaps the process.
func (c *ChildConnection) Close() error {
	c.closeOnce.Do(func() {
		c.stdin.Close()
		c.stdout.Close()
		c.closeErr = c.cmd.Wait()
	})
	return c.closeErr
}

// ClientTransport starts the peer as a child process and connects over
// its standard streams.
type ClientTransport struct {
	Command string
	Args    []string
}

type ClientTransportConfig struct {
	Command string   // peer executable, e.g. "nvim"
	Args    []string // e.g. ["--embed", "--headless"]
}

func NewClientTransport(config ClientTransportConfig) *ClientTransport {
	return &ClientTransport{
		Command: config.Command,
		Args:    config.Args,
	}
}

func (t *ClientTransport) Connect() (rpc.Connection, error) {
	cmd := exec.Command(t.Command, t.Args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, &rpc.ConnectionError{Addr: t.Command, Err: err}
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &rpc.ConnectionError{Addr: t.Command, Err: err}
	}

	if err := cmd.Start(); err != nil {
		return nil, &rpc.ConnectionError{Addr: t.Command, Err: fmt.Errorf("failed to start peer process: %w", err)}
	}

	return &ChildConnection{
		cmd:    cmd,
		stdin:  stdin,
		stdout: stdout,
		writer: bufio.NewWriter(stdin),
	}, nil
}
