package mavwire

import "context"

// ByteSource is the transport boundary: something that produces raw byte
// chunks for a parser to consume. Concrete transports (serial ports,
// network sockets, recorded streams) live outside this module; the link
// package ships a file-replay source for simulation and tests.
type ByteSource interface {
	// Connect starts the stream. Chunks becomes readable afterwards.
	Connect(ctx context.Context) error

	// Chunks returns the stream of raw byte chunks. The channel closes
	// when the source is exhausted or closed.
	Chunks() <-chan []byte

	// Close stops the stream and releases the transport.
	Close() error
}

// ByteSink is the outbound half of a transport: encoded frames are
// written as opaque byte slices.
type ByteSink interface {
	Write(p []byte) (int, error)
}
