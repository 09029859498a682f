// ModifiedComponentsBuffer is grounded on
// _examples/original_source/src/synchronisation/modified_components_buffer.rs.
// The original's Push overwrites the whole frame's map on a fresh key
// instead of inserting into the fetched entry, which silently drops
// sibling entries for the same frame — spec.md §4.9 specifies true
// first-writer-wins-per-key; this implementation follows the spec, not
// the literal bug.
//
// Component identity uses reflect.Type as the integer/TypeId-equivalent
// tag (spec §9's "in targets without such a primitive, use an integer
// tag assigned at component registration" — Go's reflect.Type serves
// that role directly and is comparable, so no registration step is
// needed).
package syncbuf

import (
	"reflect"

	"github.com/TimonPost/net-sync/internal/types"
)

// ModifiedEntryKey identifies a single component instance within a frame.
type ModifiedEntryKey struct {
	Entity        types.EntityId
	ComponentType reflect.Type
}

// ModifiedComponentsBuffer is the server-side per-frame map of
// (entity, component-type) → unchanged bytes, used to construct
// WorldState diffs.
type ModifiedComponentsBuffer struct {
	entries map[types.CommandFrame]map[ModifiedEntryKey][]byte
}

// NewModifiedComponentsBuffer constructs an empty buffer.
func NewModifiedComponentsBuffer() *ModifiedComponentsBuffer {
	return &ModifiedComponentsBuffer{entries: make(map[types.CommandFrame]map[ModifiedEntryKey][]byte)}
}

// Push is a first-writer-wins insert: if an entry for (frame, entity,
// componentType) already exists, the incoming snapshot is ignored — the
// oldest pre-mutation snapshot in a frame is the true "before" value.
func (b *ModifiedComponentsBuffer) Push(frame types.CommandFrame, unchangedSerialized []byte, entity types.EntityId, componentType reflect.Type) {
	frameEntries, ok := b.entries[frame]
	if !ok {
		frameEntries = make(map[ModifiedEntryKey][]byte)
		b.entries[frame] = frameEntries
	}

	key := ModifiedEntryKey{Entity: entity, ComponentType: componentType}
	if _, exists := frameEntries[key]; !exists {
		frameEntries[key] = unchangedSerialized
	}
}

// DrainEntries yields and empties the map, used at broadcast time.
func (b *ModifiedComponentsBuffer) DrainEntries() map[types.CommandFrame]map[ModifiedEntryKey][]byte {
	drained := b.entries
	b.entries = make(map[types.CommandFrame]map[ModifiedEntryKey][]byte)
	return drained
}
