// Package transport is the Transport Glue (C15): binds the TCP wire onto
// PostOffice/PostBox, translating raw reads/writes into the postal types
// and emitting NetworkEvents on connect/disconnect.
//
// Grounded on _examples/original_source/src/transport/tcp.rs. Its
// TcpListenerResource/TcpClientResource own the raw sockets; Registry and
// Connection play the same role here.
package transport

import (
	"net"
	"time"
)

// pollInterval is how far in the future a read/accept deadline is set to
// emulate a non-blocking poll: expired immediately if nothing is ready,
// matching the source's io::ErrorKind::WouldBlock loop-break.
const pollInterval = time.Millisecond

// Connection pairs a TCP stream with the liveness flag the source tracks
// alongside it ("if we can't get a peer_addr... mark it inactive").
type Connection struct {
	Conn   net.Conn
	Active bool
}

// Registry owns the listener (server side, may be nil for a pure client)
// and every live stream keyed by remote address string.
type Registry struct {
	Listener net.Listener
	conns    map[string]*Connection
}

// NewRegistry constructs a Registry, optionally wrapping an already-bound
// listener.
func NewRegistry(listener net.Listener) *Registry {
	return &Registry{Listener: listener, conns: make(map[string]*Connection)}
}

// Register adds a freshly accepted or dialed stream.
func (r *Registry) Register(addr net.Addr, conn net.Conn) {
	r.conns[addr.String()] = &Connection{Conn: conn, Active: true}
}

// Drop removes and closes the stream for addr, if any.
func (r *Registry) Drop(addr net.Addr) {
	if c, ok := r.conns[addr.String()]; ok {
		c.Conn.Close()
		delete(r.conns, addr.String())
	}
}

// Get returns the live connection for addr, if any.
func (r *Registry) Get(addr net.Addr) (*Connection, bool) {
	c, ok := r.conns[addr.String()]
	return c, ok
}

// All returns every registered connection, unordered.
func (r *Registry) All() map[string]*Connection { return r.conns }

// isWouldBlock reports whether err is the "nothing ready yet" timeout a
// short read/accept deadline produces — the Go analogue of the source's
// io::ErrorKind::WouldBlock branch.
func isWouldBlock(err error) bool {
	ne, ok := err.(net.Error)
	return ok && ne.Timeout()
}
