package postal

import (
	"github.com/TimonPost/net-sync/internal/types"
	"github.com/TimonPost/net-sync/worldstate"
)

// ClientToServerMessage is one of the three shapes a client sends,
// spec §6.
type ClientToServerMessage[Message, Command any] struct {
	Kind         ClientToServerKind
	Message      Message
	CommandFrame types.CommandFrame
	Command      Command
}

// ClientToServerKind tags the active field of ClientToServerMessage.
type ClientToServerKind int

const (
	ClientMessage ClientToServerKind = iota
	ClientCommand
	ClientTimeSync
)

// ServerToClientMessage is one of the two shapes the server sends,
// spec §6.
type ServerToClientMessage[Message any] struct {
	Kind        ServerToClientKind
	StateUpdate *worldstate.State
	Message     Message
}

// ServerToClientKind tags the active field of ServerToClientMessage.
type ServerToClientKind int

const (
	ServerStateUpdate ServerToClientKind = iota
	ServerMessage
)

// Clone makes an independent copy, used by PostOffice.Broadcast so each
// client's stamped CommandFrameOffset doesn't leak into its siblings'.
func (m ServerToClientMessage[Message]) Clone() ServerToClientMessage[Message] {
	clone := m
	if m.StateUpdate != nil {
		clone.StateUpdate = m.StateUpdate.Clone()
	}
	return clone
}

// NewStateUpdate builds a ServerToClientMessage carrying a WorldState delta.
func NewStateUpdate[Message any](state *worldstate.State) ServerToClientMessage[Message] {
	return ServerToClientMessage[Message]{Kind: ServerStateUpdate, StateUpdate: state}
}

// NewServerMessage builds a ServerToClientMessage carrying an
// application-defined message.
func NewServerMessage[Message any](msg Message) ServerToClientMessage[Message] {
	return ServerToClientMessage[Message]{Kind: ServerMessage, Message: msg}
}

// EntityInsertAck completes the UID-reservation handshake (spec §4.1):
// the server tells the client which server-minted id was bound to its
// client-generated insert. Supplements spec.md's wire message section,
// which names StateUpdate/Message but not this — without it a client has
// no way to learn the server id it must use for subsequent commands
// against the entity it just inserted. Grounded on
// _examples/original_source/src/event.rs's ServerMessage::EntityInsertAck.
type EntityInsertAck struct {
	ClientUID uint32
	ServerUID uint32
}
