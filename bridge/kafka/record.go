package kafka

import "github.com/TimonPost/net-sync/internal/types"

// ComponentRecord is a component payload tagged by a shard-local
// register id rather than a resolved ComponentId. Grounded on
// _examples/original_source/src/transport/record.rs. A publishing shard
// may not share the receiving shard's ComponentId assignment, so the
// wire record carries the lighter-weight register id and the receiving
// side resolves it through a Registry before the payload reaches
// worldstate.State.
type ComponentRecord struct {
	RegisterID uint32
	Data       []byte
}

// Registry maps a shard-local register id to this process's ComponentId
// for the same component kind. Populated out of band (e.g. at startup,
// from a shared schema); a register id with no mapping is dropped.
type Registry struct {
	byRegisterID map[uint32]types.ComponentId
}

// NewRegistry builds a Registry from a register-id-to-ComponentId mapping.
func NewRegistry(mapping map[uint32]types.ComponentId) *Registry {
	byRegisterID := make(map[uint32]types.ComponentId, len(mapping))
	for k, v := range mapping {
		byRegisterID[k] = v
	}
	return &Registry{byRegisterID: byRegisterID}
}

// Resolve converts a ComponentRecord into a live ComponentData, or
// reports false if RegisterID has no known mapping.
func (r *Registry) Resolve(rec ComponentRecord) (types.ComponentData, bool) {
	id, ok := r.byRegisterID[rec.RegisterID]
	if !ok {
		return types.ComponentData{}, false
	}
	return types.ComponentData{ID: id, Payload: rec.Data}, true
}
