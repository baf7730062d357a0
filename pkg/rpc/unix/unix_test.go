package unix_test

import (
	"io"
	"net"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvim-tools/nvrpc/pkg/rpc"
	"github.com/nvim-tools/nvrpc/pkg/rpc/unix"
)

func TestConnectAndRoundTrip(t *testing.T) {

	socketPath := filepath.Join(t.TempDir(), "peer.sock")

	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)
	defer listener.Close()

	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		io.Copy(conn, conn)
	}()

	transport := unix.NewClientTransport(unix.ClientTransportConfig{
		SocketPath: socketPath,
	})
	conn, err := transport.Connect()
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.Write([]byte("hel")))
	require.NoError(t, conn.Write([]byte("lo")))
	require.NoError(t, conn.Flush())

	got := make([]byte, 0, 5)
	buf := make([]byte, 16)
	for len(got) < 5 {
		n, err := conn.Read(buf)
		require.NoError(t, err)
		got = append(got, buf[:n]...)
	}
	assert.Equal(t, "hello", string(got))
}

func TestConnectMissingSocket(t *testing.T) {

	transport := unix.NewClientTransport(unix.ClientTransportConfig{
		SocketPath: filepath.Join(t.TempDir(), "missing.sock"),
	})

	_, err := transport.Connect()
	require.Error(t, err)

	var connErr *rpc.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Contains(t, connErr.Addr, "missing.sock")
}
