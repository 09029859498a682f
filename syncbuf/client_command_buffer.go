// Package syncbuf implements the four synchronization buffers (C7–C10):
// ClientCommandBuffer, ServerCommandBuffer, ResimulationBuffer and
// ModifiedComponentsBuffer.
//
// ClientCommandBuffer is grounded on
// _examples/original_source/src/synchronisation/client_command_buffer.rs.
package syncbuf

import (
	"reflect"

	"github.com/TimonPost/net-sync/internal/types"
)

// ClientCommandBufferEntry is one recorded command with its before/after
// component bytes, used for client-side prediction and replay.
type ClientCommandBufferEntry[Command any] struct {
	CommandFrame    types.CommandFrame
	Command         Command
	UnchangedData   []byte
	ChangedData     []byte
	EntityID        types.EntityId
	ComponentType   reflect.Type
	IsSent          bool
}

// ClientCommandBuffer is a ring of recent commands bounded by a span of
// command frames (not a count of entries), so bursty inputs don't evict
// older frames prematurely. Front = newest, back = oldest.
type ClientCommandBuffer[Command any] struct {
	commands                []ClientCommandBufferEntry[Command]
	maxCommandFrameCapacity types.CommandFrame
	lastSeenCommandFrame    types.CommandFrame
	oldestSeenCommandFrame  types.CommandFrame
}

// NewClientCommandBuffer constructs a buffer bounded to capacity command
// frames (span, not entry count).
func NewClientCommandBuffer[Command any](capacity types.CommandFrame) *ClientCommandBuffer[Command] {
	return &ClientCommandBuffer[Command]{maxCommandFrameCapacity: capacity}
}

// Grow expands the frame-span capacity by size.
func (b *ClientCommandBuffer[Command]) Grow(size types.CommandFrame) {
	b.maxCommandFrameCapacity += size
}

// Shrink contracts the frame-span capacity by size, evicting any frames
// that now fall outside the window (spec §4.6: scan
// last_seen..last_seen−shrunk_by and drop all matching).
func (b *ClientCommandBuffer[Command]) Shrink(size types.CommandFrame) {
	b.maxCommandFrameCapacity -= size

	if b.lastSeenCommandFrame <= b.maxCommandFrameCapacity {
		return
	}

	oldestAllowed := b.lastSeenCommandFrame - b.maxCommandFrameCapacity
	for len(b.commands) > 0 && b.commands[len(b.commands)-1].CommandFrame < oldestAllowed {
		b.commands = b.commands[:len(b.commands)-1]
	}
	if len(b.commands) > 0 {
		b.oldestSeenCommandFrame = b.commands[len(b.commands)-1].CommandFrame
	}
}

// Push records a new entry at the front of the buffer. frame must be ≥
// the last frame seen; this is a programmer invariant, not a runtime
// condition, and panics if violated (spec §7.5).
func (b *ClientCommandBuffer[Command]) Push(
	command Command,
	frame types.CommandFrame,
	unchangedData, changedData []byte,
	entityID types.EntityId,
	componentType reflect.Type,
) {
	if frame < b.lastSeenCommandFrame {
		panic("syncbuf: client command buffer pushed a non-monotonic command frame")
	}

	b.lastSeenCommandFrame = frame
	if b.oldestSeenCommandFrame == 0 {
		b.oldestSeenCommandFrame = b.lastSeenCommandFrame
	}

	if b.lastSeenCommandFrame-b.oldestSeenCommandFrame == b.maxCommandFrameCapacity {
		if len(b.commands) > 0 {
			removed := b.commands[len(b.commands)-1]
			b.commands = b.commands[:len(b.commands)-1]

			if len(b.commands) == 0 {
				b.prepend(command, frame, unchangedData, changedData, entityID, componentType)
				return
			}

			b.clearOld(removed.CommandFrame)

			if len(b.commands) > 0 {
				b.oldestSeenCommandFrame = b.commands[len(b.commands)-1].CommandFrame
			}
		}
	}

	b.prepend(command, frame, unchangedData, changedData, entityID, componentType)
}

func (b *ClientCommandBuffer[Command]) prepend(
	command Command,
	frame types.CommandFrame,
	unchangedData, changedData []byte,
	entityID types.EntityId,
	componentType reflect.Type,
) {
	entry := ClientCommandBufferEntry[Command]{
		Command:       command,
		CommandFrame:  frame,
		UnchangedData: unchangedData,
		ChangedData:   changedData,
		EntityID:      entityID,
		ComponentType: componentType,
	}
	b.commands = append([]ClientCommandBufferEntry[Command]{entry}, b.commands...)
}

// clearOld pops every back (oldest) entry sharing commandFrame.
func (b *ClientCommandBuffer[Command]) clearOld(commandFrame types.CommandFrame) {
	for len(b.commands) > 0 && b.commands[len(b.commands)-1].CommandFrame == commandFrame {
		b.commands = b.commands[:len(b.commands)-1]
	}
}

// Entries returns the buffer's entries, front (newest) first.
func (b *ClientCommandBuffer[Command]) Entries() []ClientCommandBufferEntry[Command] {
	return b.commands
}

// IterHistory returns entries whose CommandFrame ≥ lastSeen-framesInHistory
// and IsSent == false. framesInHistory is capped at lastSeenCommandFrame
// to avoid underflow.
func (b *ClientCommandBuffer[Command]) IterHistory(framesInHistory types.CommandFrame) []*ClientCommandBufferEntry[Command] {
	if framesInHistory > b.lastSeenCommandFrame {
		framesInHistory = b.lastSeenCommandFrame
	}
	downTo := b.lastSeenCommandFrame - framesInHistory

	var out []*ClientCommandBufferEntry[Command]
	for i := range b.commands {
		entry := &b.commands[i]
		if entry.CommandFrame >= downTo && !entry.IsSent {
			out = append(out, entry)
			continue
		}
		// Mirrors the original iterator's short-circuit: once an entry
		// fails the predicate, stop (the deque is frame-ordered so later
		// entries are only older).
		break
	}
	return out
}

// LastSeenCommandFrame returns the most recent frame pushed.
func (b *ClientCommandBuffer[Command]) LastSeenCommandFrame() types.CommandFrame {
	return b.lastSeenCommandFrame
}
