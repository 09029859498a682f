// PostOffice is C13: owns all Client Sessions indexed by ClientId;
// add/remove, lookup by address or id, broadcast with per-client offset
// stamping.
//
// Grounded on _examples/original_source/src/transport/postoffice.rs. Its
// remove_client has inverted/panicking logic
// (`if !contains_key { remove } else { panic }`); spec.md §4.11 directs
// idempotent no-op-if-absent removal instead, which is what this
// implements.
package postal

import "net"

// PostOffice owns every connected client's Session, keyed by ClientId.
type PostOffice[ServerMsg, ClientMsg, Command any] struct {
	clients map[ClientId]*Session[ServerMsg, ClientMsg, Command]
	nextID  ClientId
}

// NewPostOffice constructs an empty PostOffice.
func NewPostOffice[ServerMsg, ClientMsg, Command any]() *PostOffice[ServerMsg, ClientMsg, Command] {
	return &PostOffice[ServerMsg, ClientMsg, Command]{
		clients: make(map[ClientId]*Session[ServerMsg, ClientMsg, Command]),
	}
}

// Clients returns every session, unordered.
func (p *PostOffice[ServerMsg, ClientMsg, Command]) Clients() map[ClientId]*Session[ServerMsg, ClientMsg, Command] {
	return p.clients
}

// AddClient registers a new session for addr, assigning the next
// sequential ClientId. Returns false if a session already exists for
// that address — addresses are unique at any one time.
func (p *PostOffice[ServerMsg, ClientMsg, Command]) AddClient(addr net.Addr) (ClientId, bool) {
	if p.clientExists(addr) {
		return 0, false
	}
	id := p.nextID
	p.nextID++
	p.clients[id] = NewSession[ServerMsg, ClientMsg, Command](addr, id)
	return id, true
}

// RemoveClient drops the session for id. Idempotent: a no-op if no
// session exists for id (matches spec.md §4.11's explicit correction of
// the source's inverted/panicking behavior).
func (p *PostOffice[ServerMsg, ClientMsg, Command]) RemoveClient(id ClientId) {
	delete(p.clients, id)
}

func (p *PostOffice[ServerMsg, ClientMsg, Command]) clientExists(addr net.Addr) bool {
	for _, c := range p.clients {
		if c.Addr().String() == addr.String() {
			return true
		}
	}
	return false
}

// ClientByAddr returns the session registered for addr, if any.
func (p *PostOffice[ServerMsg, ClientMsg, Command]) ClientByAddr(addr net.Addr) (*Session[ServerMsg, ClientMsg, Command], bool) {
	for _, c := range p.clients {
		if c.Addr().String() == addr.String() {
			return c, true
		}
	}
	return nil, false
}

// ClientByID returns the session for id, if any.
func (p *PostOffice[ServerMsg, ClientMsg, Command]) ClientByID(id ClientId) (*Session[ServerMsg, ClientMsg, Command], bool) {
	c, ok := p.clients[id]
	return c, ok
}

// ClientsWithInbox returns every session whose application-message inbox
// is non-empty.
func (p *PostOffice[ServerMsg, ClientMsg, Command]) ClientsWithInbox() []*Session[ServerMsg, ClientMsg, Command] {
	var out []*Session[ServerMsg, ClientMsg, Command]
	for _, c := range p.clients {
		if !c.Postbox().EmptyInbox() {
			out = append(out, c)
		}
	}
	return out
}

// ClientCount returns the number of registered sessions.
func (p *PostOffice[ServerMsg, ClientMsg, Command]) ClientCount() int { return len(p.clients) }

// Broadcast clones message for each client and, if it's a StateUpdate,
// stamps the clone's CommandFrameOffset with that client's offset before
// enqueuing it into the client's outbox.
//
// Cloning per client is the original design's tradeoff (spec §9): for a
// large fleet, share an immutable core and carry the offset in an
// envelope instead, or broadcast once at offset 0 and let clients derive
// the offset from their own highest_seen record.
func (p *PostOffice[ServerMsg, ClientMsg, Command]) Broadcast(message ServerToClientMessage[ServerMsg]) {
	for _, client := range p.clients {
		outgoing := message.Clone()
		if outgoing.Kind == ServerStateUpdate && outgoing.StateUpdate != nil {
			outgoing.StateUpdate.CommandFrameOffset = client.CommandPostbox().CommandFrameOffset()
		}
		client.Postbox().Send(outgoing)
	}
}
