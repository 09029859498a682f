// Package uid implements the UID Allocator (C1): a monotonic id mint that
// maps arbitrary comparable keys to stable server-side identifiers, with
// support for reserving an id ahead of the key materializing.
//
// Grounded on _examples/original_source/src/uid.rs.
package uid

import "fmt"

// Uid is a server-minted monotonic identifier.
type Uid = uint32

// Allocator mints monotonic ids for keys of type K, and supports
// reservations: a server id minted for a client-generated identifier
// before the entity it names actually exists on the server.
//
// Not safe for concurrent use without external synchronization; the core
// runs single-threaded per endpoint (see spec §5).
type Allocator[K comparable] struct {
	index     Uid
	mapping   map[K]Uid
	reserved  map[Uid]Uid
}

// New constructs an empty allocator. The counter starts at 1.
func New[K comparable]() *Allocator[K] {
	return &Allocator[K]{
		index:    1,
		mapping:  make(map[K]Uid),
		reserved: make(map[Uid]Uid),
	}
}

// Get returns the Uid bound to key. Panics if absent: this is a
// programmer error, not a runtime condition (spec §7.5).
func (a *Allocator[K]) Get(key K) Uid {
	uid, ok := a.mapping[key]
	if !ok {
		panic("uid: key has no allocated uid")
	}
	return uid
}

// GetByValue returns the key bound to uid. Panics if absent.
func (a *Allocator[K]) GetByValue(uid Uid) K {
	for k, v := range a.mapping {
		if v == uid {
			return k
		}
	}
	panic("uid: value has no bound key")
}

// ReplaceValue rebinds whichever key currently maps to original so that it
// maps to replacement instead. Panics if original is not bound.
func (a *Allocator[K]) ReplaceValue(original, replacement Uid) {
	for k, v := range a.mapping {
		if v == original {
			a.mapping[k] = replacement
			return
		}
	}
	panic("uid: value has no bound key")
}

// Deallocate removes key's binding, returning the freed uid if one existed.
func (a *Allocator[K]) Deallocate(key K) (Uid, bool) {
	uid, ok := a.mapping[key]
	if ok {
		delete(a.mapping, key)
	}
	return uid, ok
}

// ReserveFor mints a server id ahead of time, bound to a client-generated
// identifier. The reservation is consumed the next time Allocate is called
// with that same clientUid as the hint.
func (a *Allocator[K]) ReserveFor(clientUid Uid) Uid {
	serverUid := a.getAndIncrement()
	a.reserved[clientUid] = serverUid
	return serverUid
}

// Reserved looks up a pending reservation without consuming it.
func (a *Allocator[K]) Reserved(clientUid Uid) (Uid, bool) {
	serverUid, ok := a.reserved[clientUid]
	return serverUid, ok
}

// Allocate binds key to an id. Every call advances the counter; the
// freshly minted id is used when hint is nil, otherwise the hint is. If
// the id names a pending reservation, the reserved server id is used
// instead and the reservation is consumed.
func (a *Allocator[K]) Allocate(key K, hint *Uid) Uid {
	id := a.getAndIncrement()
	if hint != nil {
		id = *hint
	}

	if reserved, ok := a.reserved[id]; ok {
		delete(a.reserved, id)
		id = reserved
	}

	a.mapping[key] = id
	return id
}

func (a *Allocator[K]) getAndIncrement() Uid {
	id := a.index
	a.index++
	return id
}

// String renders the allocator's size for diagnostics.
func (a *Allocator[K]) String() string {
	return fmt.Sprintf("Allocator{entries=%d, reservations=%d, next=%d}", len(a.mapping), len(a.reserved), a.index)
}
