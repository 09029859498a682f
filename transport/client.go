package transport

import (
	"errors"
	"io"
	"net"

	"github.com/rs/zerolog"

	"github.com/TimonPost/net-sync/packer"
	"github.com/TimonPost/net-sync/postal"
)

// ClientConnection wraps the single outbound stream a client process
// holds to the server. Grounded on TcpClientResource.
type ClientConnection struct {
	conn      net.Conn
	connected bool
}

// Dial connects to addr and configures it for latency-sensitive framing
// (TCP_NODELAY), matching TcpClientResource::new.
func Dial(addr string) (*ClientConnection, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		tcpConn.SetNoDelay(true)
	}
	return &ClientConnection{conn: conn, connected: true}, nil
}

// Connected reports whether the stream is still considered live.
func (c *ClientConnection) Connected() bool { return c.connected }

// LocalAddr returns the socket's local address, used to key the postbox
// when the server's NetworkEvents refer back to this client.
func (c *ClientConnection) LocalAddr() net.Addr { return c.conn.LocalAddr() }

// Close releases the underlying socket.
func (c *ClientConnection) Close() error { return c.conn.Close() }

// ClientRecv polls the socket once, deserializing whatever arrived into
// postbox's inbox. Grounded on tcp_client_receive_system.
func ClientRecv[ServerMsg, ClientMsg, Command any](
	conn *ClientConnection,
	postbox *postal.PostBox[postal.ServerToClientMessage[ServerMsg], postal.ClientToServerMessage[ClientMsg, Command]],
	pack *packer.Packer,
	events *postal.EventQueue,
	log zerolog.Logger,
) {
	if tcpConn, ok := conn.conn.(*net.TCPConn); ok {
		tcpConn.SetReadDeadline(timeNowPlus(pollInterval))
	}

	buf := make([]byte, recvBufferSize)
	n, err := conn.conn.Read(buf)
	if err != nil {
		switch {
		case isWouldBlock(err):
		case isConnReset(err) || errors.Is(err, io.EOF):
			conn.connected = false
			events.Enqueue(postal.NetworkEvent{Kind: postal.Disconnected, Addr: conn.LocalAddr()})
		default:
			log.Error().Err(err).Msg("error receiving TCP packet")
		}
		return
	}

	if n < minPacketSize {
		return
	}

	var packets []postal.ServerToClientMessage[ServerMsg]
	if err := pack.Serialization().Deserialize(buf[:n], &packets); err != nil {
		log.Error().Err(err).Msg("error deserializing TCP packet")
		return
	}

	log.Debug().Int("bytes", n).Msg("received bytes from server")
	for _, packet := range packets {
		postbox.AddToInbox(packet)
	}
}

// ClientSend flushes postbox's outgoing queue to the socket.
// Grounded on tcp_client_sent_system.
func ClientSend[ServerMsg, ClientMsg, Command any](
	conn *ClientConnection,
	postbox *postal.PostBox[postal.ServerToClientMessage[ServerMsg], postal.ClientToServerMessage[ClientMsg, Command]],
	pack *packer.Packer,
	events *postal.EventQueue,
	log zerolog.Logger,
) {
	if postbox.EmptyOutgoing() {
		return
	}

	packets := postbox.DrainOutgoing(func(*postal.ClientToServerMessage[ClientMsg, Command]) bool { return true })
	if len(packets) == 0 {
		return
	}

	serialized, err := pack.Serialization().Serialize(packets)
	if err != nil {
		log.Error().Err(err).Msg("error serializing TCP packet")
		return
	}

	log.Debug().Int("count", len(packets)).Msg("sending packets to host")

	if _, err := conn.conn.Write(serialized); err != nil {
		if isConnReset(err) || errors.Is(err, io.ErrClosedPipe) {
			conn.connected = false
			events.Enqueue(postal.NetworkEvent{Kind: postal.Disconnected, Addr: conn.LocalAddr()})
		} else {
			log.Error().Err(err).Msg("error sending TCP packet")
		}
	}
}
