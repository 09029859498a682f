// Package worldstate implements the WorldState Accumulator (C5): the
// per-frame set of entity/component mutations, deduplicated so only the
// latest mutation of any (entity, component) survives.
//
// Grounded on _examples/original_source/src/state.rs. The source's
// `retain(|x| x.0 == entity_id)` calls in Change/RemoveComponent are
// backwards — spec.md resolves this toward `!=` (evict entries for the
// entity, then insert fresh). This implementation follows that
// resolution rather than the literal Rust.
package worldstate

import "github.com/TimonPost/net-sync/internal/types"

// State is a serializable delta describing entity/component changes
// accumulated since the last successful broadcast.
type State struct {
	CommandFrame       types.CommandFrame
	CommandFrameOffset int32

	Removed          map[types.EntityId]struct{}
	Inserted         map[types.EntityId]types.EntityInsert
	Changed          map[types.EntityId]types.ComponentChanged
	ComponentAdded   map[types.EntityId]types.ComponentAdded
	ComponentRemoved map[types.EntityId]types.ComponentRemoved
}

// New constructs an empty State stamped with the given command frame.
func New(commandFrame types.CommandFrame) *State {
	return &State{
		CommandFrame:     commandFrame,
		Removed:          make(map[types.EntityId]struct{}),
		Inserted:         make(map[types.EntityId]types.EntityInsert),
		Changed:          make(map[types.EntityId]types.ComponentChanged),
		ComponentAdded:   make(map[types.EntityId]types.ComponentAdded),
		ComponentRemoved: make(map[types.EntityId]types.ComponentRemoved),
	}
}

// RemoveEntity drops e from Inserted (if present there this tick) and
// records it as removed.
func (s *State) RemoveEntity(e types.EntityId) {
	delete(s.Inserted, e)
	s.Removed[e] = struct{}{}
}

// InsertEntity records a freshly created entity and its components.
func (s *State) InsertEntity(e types.EntityId, components []types.ComponentData) {
	s.Inserted[e] = types.EntityInsert{Entity: e, Components: components}
}

// Change records the newest component mutation for e, evicting any prior
// entry for e so at most one survives per entity (latest-write-wins).
func (s *State) Change(e types.EntityId, component types.ComponentData) {
	s.Changed[e] = types.ComponentChanged{Entity: e, Component: component}
}

// AddComponent records a newly attached component.
func (s *State) AddComponent(e types.EntityId, component types.ComponentData) {
	s.ComponentAdded[e] = types.ComponentAdded{Entity: e, Component: component}
}

// RemoveComponent evicts any pending component_added entry for e (a
// component just removed cannot also still be "added" this tick) and
// records the removal.
func (s *State) RemoveComponent(e types.EntityId, componentID types.ComponentId) {
	delete(s.ComponentAdded, e)
	s.ComponentRemoved[e] = types.ComponentRemoved{Entity: e, ComponentID: componentID}
}

// Reset clears everything but Changed, which is the continuous live-state
// delta and is only cleared by a successful broadcast acknowledgement
// (out of scope for this core).
func (s *State) Reset() {
	s.Removed = make(map[types.EntityId]struct{})
	s.Inserted = make(map[types.EntityId]types.EntityInsert)
	s.ComponentAdded = make(map[types.EntityId]types.ComponentAdded)
	s.ComponentRemoved = make(map[types.EntityId]types.ComponentRemoved)
}

// IsEmpty reports whether all five sets are empty.
func (s *State) IsEmpty() bool {
	return len(s.Inserted) == 0 &&
		len(s.Removed) == 0 &&
		len(s.Changed) == 0 &&
		len(s.ComponentAdded) == 0 &&
		len(s.ComponentRemoved) == 0
}

// Clone makes an independent copy, used at broadcast time to stamp a
// per-client CommandFrameOffset without mutating the shared accumulator.
func (s *State) Clone() *State {
	clone := &State{
		CommandFrame:       s.CommandFrame,
		CommandFrameOffset: s.CommandFrameOffset,
		Removed:            make(map[types.EntityId]struct{}, len(s.Removed)),
		Inserted:           make(map[types.EntityId]types.EntityInsert, len(s.Inserted)),
		Changed:            make(map[types.EntityId]types.ComponentChanged, len(s.Changed)),
		ComponentAdded:     make(map[types.EntityId]types.ComponentAdded, len(s.ComponentAdded)),
		ComponentRemoved:   make(map[types.EntityId]types.ComponentRemoved, len(s.ComponentRemoved)),
	}
	for k, v := range s.Removed {
		clone.Removed[k] = v
	}
	for k, v := range s.Inserted {
		clone.Inserted[k] = v
	}
	for k, v := range s.Changed {
		clone.Changed[k] = v
	}
	for k, v := range s.ComponentAdded {
		clone.ComponentAdded[k] = v
	}
	for k, v := range s.ComponentRemoved {
		clone.ComponentRemoved[k] = v
	}
	return clone
}
