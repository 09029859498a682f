// ResimulationBuffer is grounded on
// _examples/original_source/src/synchronisation/resimmulation_buffer.rs.
package syncbuf

import "github.com/TimonPost/net-sync/internal/types"

// ResimulationBufferEntry records a correction span the client must
// re-run: every command between start and end is replayed against the
// authoritative state.
type ResimulationBufferEntry[Command any] struct {
	ToResimulate     []ClientCommandBufferEntry[Command]
	StartCommandFrame types.CommandFrame
	EndCommandFrame   types.CommandFrame
}

// ResimulationBuffer is a LIFO queue of correction spans. No eviction
// policy at this layer — the consumer drains entries as it applies them.
type ResimulationBuffer[Command any] struct {
	entries []ResimulationBufferEntry[Command]
}

// NewResimulationBuffer constructs an empty buffer.
func NewResimulationBuffer[Command any]() *ResimulationBuffer[Command] {
	return &ResimulationBuffer[Command]{}
}

// Push prepends a new correction span; consumers iterate LIFO.
func (b *ResimulationBuffer[Command]) Push(start, end types.CommandFrame, toResimulate []ClientCommandBufferEntry[Command]) {
	entry := ResimulationBufferEntry[Command]{
		ToResimulate:      toResimulate,
		StartCommandFrame: start,
		EndCommandFrame:   end,
	}
	b.entries = append([]ResimulationBufferEntry[Command]{entry}, b.entries...)
}

// Entries returns the buffer's entries in LIFO order (most recent first).
func (b *ResimulationBuffer[Command]) Entries() []ResimulationBufferEntry[Command] {
	return b.entries
}
