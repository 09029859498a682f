package transport

import (
	"errors"
	"io"
	"net"

	"github.com/rs/zerolog"

	"github.com/TimonPost/net-sync/internal/types"
	"github.com/TimonPost/net-sync/metrics"
	"github.com/TimonPost/net-sync/packer"
	"github.com/TimonPost/net-sync/postal"
	"github.com/TimonPost/net-sync/syncbuf"
)

// recvBufferSize mirrors the source's fixed-size recv_buffer. A read
// shorter than minPacketSize (source: "if recv_len < 5") is not
// deserialized: ServerRecv marks that stream inactive, ClientRecv drops
// the read.
const recvBufferSize = 64 * 1024
const minPacketSize = 5

func recordCommandOutcome(kind syncbuf.PushResultKind) {
	switch kind {
	case syncbuf.Accepted:
		metrics.CommandsByOutcome.WithLabelValues("accepted").Inc()
	case syncbuf.TooOld:
		metrics.CommandsByOutcome.WithLabelValues("too_old").Inc()
	case syncbuf.TooNew:
		metrics.CommandsByOutcome.WithLabelValues("too_new").Inc()
	}
}

// AcceptLoop drains every pending inbound connection off listener without
// blocking, registering each with registry and postoffice and enqueuing a
// Connected event. Grounded on tcp_connection_listener.
func AcceptLoop[ServerMsg, ClientMsg, Command any](
	registry *Registry,
	office *postal.PostOffice[ServerMsg, ClientMsg, Command],
	events *postal.EventQueue,
	log zerolog.Logger,
) {
	if registry.Listener == nil {
		return
	}

	for {
		if tcpListener, ok := registry.Listener.(*net.TCPListener); ok {
			tcpListener.SetDeadline(timeNowPlus(pollInterval))
		}

		conn, err := registry.Listener.Accept()
		if err != nil {
			if isWouldBlock(err) {
				return
			}
			log.Error().Err(err).Msg("error while handling TCP connection")
			return
		}

		if tcpConn, ok := conn.(*net.TCPConn); ok {
			tcpConn.SetNoDelay(true)
		}

		addr := conn.RemoteAddr()
		log.Debug().Stringer("addr", addr).Msg("incoming TCP connection")

		registry.Register(addr, conn)
		id, added := office.AddClient(addr)
		if !added {
			// Address already registered; drop the duplicate socket rather
			// than silently shadowing the existing session.
			registry.Drop(addr)
			continue
		}
		events.Enqueue(postal.NetworkEvent{Kind: postal.Connected, Addr: addr, ClientID: id})
	}
}

// ServerRecv polls every registered connection once, deserializing
// whatever arrived into the owning client's inbox/command buffer.
// Grounded on tcp_server_receive_system.
// admit, if non-nil, gates each packet's dispatch per client (§3.5 rate
// limiting): a client that fails admission has that packet dropped
// silently rather than buffered, distinct from ServerCommandBuffer's
// TooOld/TooNew protocol-level rejection.
func ServerRecv[ServerMsg, ClientMsg, Command any](
	registry *Registry,
	office *postal.PostOffice[ServerMsg, ClientMsg, Command],
	pack *packer.Packer,
	commandFrame types.CommandFrame,
	events *postal.EventQueue,
	log zerolog.Logger,
	admit func(postal.ClientId) bool,
) {
	buf := make([]byte, recvBufferSize)

	for addrStr, conn := range registry.All() {
		if !conn.Active {
			continue
		}

		addr := conn.Conn.RemoteAddr()
		client, ok := office.ClientByAddr(addr)
		if !ok {
			conn.Active = false
			continue
		}

		for {
			if tcpConn, ok := conn.Conn.(*net.TCPConn); ok {
				tcpConn.SetReadDeadline(timeNowPlus(pollInterval))
			}

			n, err := conn.Conn.Read(buf)
			if err != nil {
				switch {
				case isWouldBlock(err):
				case isConnReset(err) || errors.Is(err, io.EOF):
					conn.Active = false
					events.Enqueue(postal.NetworkEvent{Kind: postal.Disconnected, Addr: addr, ClientID: client.ClientID()})
				default:
					log.Error().Err(err).Str("addr", addrStr).Msg("error receiving TCP packet")
				}
				break
			}

			if n < minPacketSize {
				conn.Active = false
				break
			}

			var packets []postal.ClientToServerMessage[ClientMsg, Command]
			if err := pack.Serialization().Deserialize(buf[:n], &packets); err != nil {
				log.Error().Err(err).Msg("error deserializing TCP packet")
				continue
			}

			log.Debug().Int("count", len(packets)).Msg("received packets")
			for _, packet := range packets {
				if admit != nil && !admit(client.ClientID()) {
					continue
				}
				if result := client.AddReceivedMessage(packet, commandFrame); result != nil {
					recordCommandOutcome(result.Kind)
				}
			}
		}
	}
}

// ServerSend flushes every client's outgoing postbox to its socket.
// Grounded on tcp_server_sent_system.
func ServerSend[ServerMsg, ClientMsg, Command any](
	registry *Registry,
	office *postal.PostOffice[ServerMsg, ClientMsg, Command],
	pack *packer.Packer,
	events *postal.EventQueue,
	log zerolog.Logger,
) {
	for _, client := range office.Clients() {
		addr := client.Addr()
		conn, ok := registry.Get(addr)
		if !ok || !conn.Active {
			continue
		}

		packets := client.Postbox().DrainOutgoing(func(*postal.ServerToClientMessage[ServerMsg]) bool { return true })
		if len(packets) == 0 {
			continue
		}

		serialized, err := pack.Serialization().Serialize(packets)
		if err != nil {
			log.Error().Err(err).Msg("error serializing TCP packet")
			continue
		}

		log.Debug().Int("count", len(packets)).Msg("sending packets to TCP stream")

		if _, err := conn.Conn.Write(serialized); err != nil {
			if isConnReset(err) || errors.Is(err, io.ErrClosedPipe) {
				events.Enqueue(postal.NetworkEvent{Kind: postal.Disconnected, Addr: addr, ClientID: client.ClientID()})
			} else {
				log.Error().Err(err).Msg("error sending TCP packet")
			}
		}
	}
}

func isConnReset(err error) bool {
	return errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, errConnReset) || errors.Is(err, errBrokenPipe)
}
