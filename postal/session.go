// Session is the Client Session (C12): one-per-peer aggregate of address,
// message PostBox, command buffer, and last-packet timestamp.
//
// Grounded on _examples/original_source/src/transport/client.rs.
package postal

import (
	"net"
	"time"

	"github.com/TimonPost/net-sync/internal/types"
	"github.com/TimonPost/net-sync/syncbuf"
)

// ClientId identifies a connected peer session.
type ClientId = types.ClientId

// Session wraps one PostBox (application messages) and one
// ServerCommandBuffer (commands) per connected client.
type Session[ServerMsg, ClientMsg, Command any] struct {
	clientID       ClientId
	addr           net.Addr
	messagePostbox *PostBox[ClientMsg, ServerToClientMessage[ServerMsg]]
	commandPostbox *syncbuf.ServerCommandBuffer[Command]
	lastPacket     time.Time
}

// NewSession constructs a fresh session for addr/clientID.
func NewSession[ServerMsg, ClientMsg, Command any](addr net.Addr, clientID ClientId) *Session[ServerMsg, ClientMsg, Command] {
	return &Session[ServerMsg, ClientMsg, Command]{
		clientID:       clientID,
		addr:           addr,
		messagePostbox: New[ClientMsg, ServerToClientMessage[ServerMsg]](),
		commandPostbox: syncbuf.NewServerCommandBuffer[Command](),
		lastPacket:     time.Now(),
	}
}

// AddReceivedMessage dispatches an inbound wire message by tag and
// refreshes LastPacket. Message → inbox; Command(frame, cmd) →
// command_postbox.Push (the result is returned so callers can record
// acceptance metrics without this package depending on the metrics
// package); TimeSync → no-op, reserved for a future clock handshake.
// Returns nil for Message/TimeSync dispatches.
func (s *Session[ServerMsg, ClientMsg, Command]) AddReceivedMessage(
	msg ClientToServerMessage[ClientMsg, Command],
	serverCommandFrame types.CommandFrame,
) *syncbuf.PushResult[Command] {
	s.lastPacket = time.Now()

	switch msg.Kind {
	case ClientMessage:
		s.messagePostbox.AddToInbox(msg.Message)
	case ClientCommand:
		result := s.commandPostbox.Push(msg.Command, msg.CommandFrame, serverCommandFrame)
		return &result
	case ClientTimeSync:
		// reserved for clock sync handshakes.
	}
	return nil
}

// LastPacket returns the monotonic timestamp of the last inbound message.
func (s *Session[ServerMsg, ClientMsg, Command]) LastPacket() time.Time { return s.lastPacket }

// Addr returns the session's immutable address.
func (s *Session[ServerMsg, ClientMsg, Command]) Addr() net.Addr { return s.addr }

// ClientID returns the session's immutable client id.
func (s *Session[ServerMsg, ClientMsg, Command]) ClientID() ClientId { return s.clientID }

// Postbox returns the application-message PostBox.
func (s *Session[ServerMsg, ClientMsg, Command]) Postbox() *PostBox[ClientMsg, ServerToClientMessage[ServerMsg]] {
	return s.messagePostbox
}

// CommandPostbox returns the command reception buffer.
func (s *Session[ServerMsg, ClientMsg, Command]) CommandPostbox() *syncbuf.ServerCommandBuffer[Command] {
	return s.commandPostbox
}
