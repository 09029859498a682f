// Package postal implements the postbox/postoffice fan-out layer
// (C11–C14): PostBox, Client Session, PostOffice, and the Network Event
// Queue.
//
// PostBox is grounded on _examples/original_source/src/transport/postbox.rs.
package postal

// Urgency classifies an outgoing message's delivery priority.
type Urgency int

const (
	// OnTick messages are drained by the regular per-tick flush.
	OnTick Urgency = iota
	// Immediate messages are always drained, regardless of predicate.
	Immediate
)

// outgoingEntry pairs a message with its urgency.
type outgoingEntry[Out any] struct {
	message Out
	urgency Urgency
}

// inboxEntry wraps an inbound message with an acknowledged bit.
// PromoteAcknowledged drains only acknowledged entries; unacknowledged
// entries remain visible for later promotion (DrainInbox ignores the
// bit) — used
// client-side to defer applying a speculative insert until the server's
// id assignment arrives (spec §4.1 reservations).
type inboxEntry[In any] struct {
	message      In
	acknowledged bool
}

// PostBox is a paired inbound/outbound FIFO message queue typed in
// (In, Out). Non-blocking, unbounded at this layer: bounding happens
// upstream via the command buffers (C7/C8).
type PostBox[In, Out any] struct {
	inbox    []inboxEntry[In]
	outgoing []outgoingEntry[Out]
}

// New constructs an empty PostBox.
func New[In, Out any]() *PostBox[In, Out] {
	return &PostBox[In, Out]{}
}

// AddToInbox enqueues a received message, unacknowledged by default.
func (p *PostBox[In, Out]) AddToInbox(event In) {
	p.inbox = append(p.inbox, inboxEntry[In]{message: event})
}

// EmptyInbox reports whether the inbox has no messages.
func (p *PostBox[In, Out]) EmptyInbox() bool { return len(p.inbox) == 0 }

// EmptyOutgoing reports whether there are no messages enqueued to be sent.
func (p *PostBox[In, Out]) EmptyOutgoing() bool { return len(p.outgoing) == 0 }

// Send enqueues event for delivery on the next sim tick (urgency OnTick).
func (p *PostBox[In, Out]) Send(event Out) {
	p.outgoing = append(p.outgoing, outgoingEntry[Out]{message: event, urgency: OnTick})
}

// SendImmediate enqueues event marked Immediate, so it survives any
// predicate passed to DrainOutgoingWithPriority.
func (p *PostBox[In, Out]) SendImmediate(event Out) {
	p.outgoing = append(p.outgoing, outgoingEntry[Out]{message: event, urgency: Immediate})
}

// GetOutgoing returns the raw outgoing messages without draining them.
func (p *PostBox[In, Out]) GetOutgoing() []Out {
	out := make([]Out, len(p.outgoing))
	for i, e := range p.outgoing {
		out[i] = e.message
	}
	return out
}

// DrainOutgoing removes and returns every outgoing message matching filter.
func (p *PostBox[In, Out]) DrainOutgoing(filter func(*Out) bool) []Out {
	var drained []Out
	remaining := p.outgoing[:0]
	for i := range p.outgoing {
		entry := &p.outgoing[i]
		if filter(&entry.message) {
			drained = append(drained, entry.message)
		} else {
			remaining = append(remaining, *entry)
		}
	}
	p.outgoing = remaining
	return drained
}

// DrainOutgoingWithPriority always drains Immediate-urgency messages plus
// any OnTick message matching filter.
func (p *PostBox[In, Out]) DrainOutgoingWithPriority(filter func(*Out) bool) []Out {
	var drained []Out
	remaining := p.outgoing[:0]
	for i := range p.outgoing {
		entry := &p.outgoing[i]
		if entry.urgency == Immediate || filter(&entry.message) {
			drained = append(drained, entry.message)
		} else {
			remaining = append(remaining, *entry)
		}
	}
	p.outgoing = remaining
	return drained
}

// DrainInbox removes and returns every inbox message matching filter.
func (p *PostBox[In, Out]) DrainInbox(filter func(*In) bool) []In {
	var drained []In
	remaining := p.inbox[:0]
	for i := range p.inbox {
		entry := &p.inbox[i]
		if filter(&entry.message) {
			drained = append(drained, entry.message)
		} else {
			remaining = append(remaining, *entry)
		}
	}
	p.inbox = remaining
	return drained
}

// RemoveFromInbox drops the entry at index.
func (p *PostBox[In, Out]) RemoveFromInbox(index int) {
	p.inbox = append(p.inbox[:index], p.inbox[index+1:]...)
}

// IndexedEntry pairs an inbox message with the index callers must pass back
// to RemoveFromInbox or Acknowledge — the indices shift on removal, so this
// pairing must be read fresh each time, never cached across a mutation.
type IndexedEntry[In any] struct {
	Index   int
	Message In
}

// EnumerateInbox returns a read-only (index, message) view of the inbox.
func (p *PostBox[In, Out]) EnumerateInbox() []IndexedEntry[In] {
	out := make([]IndexedEntry[In], len(p.inbox))
	for i, e := range p.inbox {
		out[i] = IndexedEntry[In]{Index: i, Message: e.message}
	}
	return out
}

// Acknowledge marks the inbox entry at index as acknowledged.
func (p *PostBox[In, Out]) Acknowledge(index int) {
	p.inbox[index].acknowledged = true
}

// PromoteAcknowledged drains and returns every acknowledged inbox entry,
// leaving unacknowledged entries in place for later promotion. This
// supplements spec §4.10's acknowledged-bit mechanism with the consumer
// operation the original's reservation flow implies but never names.
func (p *PostBox[In, Out]) PromoteAcknowledged() []In {
	var drained []In
	remaining := p.inbox[:0]
	for _, entry := range p.inbox {
		if entry.acknowledged {
			drained = append(drained, entry.message)
		} else {
			remaining = append(remaining, entry)
		}
	}
	p.inbox = remaining
	return drained
}
