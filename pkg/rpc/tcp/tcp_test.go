package tcp_test

import (
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvim-tools/nvrpc/pkg/rpc"
	"github.com/nvim-tools/nvrpc/pkg/rpc/tcp"
)

func TestConnectAndRoundTrip(t *testing.T) {

	listener, err := net.Listen("tcp", "127.0.0.1:0")
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

	transport := tcp.NewClientTransport(tcp.ClientTransportConfig{
		Address: listener.Addr().String(),
	})
	conn, err := transport.Connect()
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.Write([]byte("ping")))
	require.NoError(t, conn.Flush())

	got := make([]byte, 0, 4)
	buf := make([]byte, 16)
	for len(got) < 4 {
		n, err := conn.Read(buf)
		require.NoError(t, err)
		got = append(got, buf[:n]...)
	}
	assert.Equal(t, "ping", string(got))
}

func TestReadAfterPeerClose(t *testing.T) {

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		accepted <- conn
	}()

	transport := tcp.NewClientTransport(tcp.ClientTransportConfig{
		Address: listener.Addr().String(),
	})
	conn, err := transport.Connect()
	require.NoError(t, err)
	defer conn.Close()

	(<-accepted).Close()

	buf := make([]byte, 16)
	_, err = conn.Read(buf)
	assert.ErrorIs(t, err, io.EOF)
}

func TestConnectRefused(t *testing.T) {

	// grab a port nothing is listening on
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	transport := tcp.NewClientTransport(tcp.ClientTransportConfig{
		Address: addr,
	})

	_, err = transport.Connect()
	require.Error(t, err)

	var connErr *rpc.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, addr, connErr.Addr)
}
