package rpc

// Connection is a duplex byte stream to the peer. msgpack-RPC is
// self-framing, so unlike a message-oriented transport the connection
// exposes raw reads and buffered writes with an explicit flush.
type Connection interface {
	// Write appends bytes to the outbound stream. Writes may be buffered
	// until Flush is called.
	Write(p []byte) error

	// Flush pushes buffered writes to the peer without closing the stream.
	Flush() error

	// Read blocks until inbound bytes are available and returns however
	// many fit in p. A peer close surfaces as io.EOF.
	Read(p []byte) (int, error)

	// Close closes the connection.
	Close() error
}

// ClientTransport establishes the connection to the peer.
type ClientTransport interface {
	// Connect opens the duplex stream, failing with a *ConnectionError on
	// refusal or timeout.
	Connect() (Connection, error)
}
