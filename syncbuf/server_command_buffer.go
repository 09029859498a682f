// ServerCommandBuffer is grounded on
// _examples/original_source/src/synchronisation/server_command_buffer.rs.
// The Rust enum `PushResult::{ToOld,ToNew,Accepted}` is spelled
// `TooOld`/`TooNew` here per spec.md §4.7, and CommandBufferConfig's
// fields are spelled `IgnoreOlderThan`/`IgnoreNewerThan` per spec.md §3.
package syncbuf

import "github.com/TimonPost/net-sync/internal/types"

// ServerCommandBufferEntry pairs a received command with the client frame
// it arrived tagged with.
type ServerCommandBufferEntry[Command any] struct {
	CommandFrame types.CommandFrame
	Command      Command
}

// CommandBufferConfig is the server's acceptance window.
type CommandBufferConfig struct {
	IgnoreOlderThan uint
	IgnoreNewerThan uint
}

// DefaultCommandBufferConfig returns the spec-mandated defaults of 10/10.
func DefaultCommandBufferConfig() CommandBufferConfig {
	return CommandBufferConfig{IgnoreOlderThan: 10, IgnoreNewerThan: 10}
}

// PushResultKind classifies the outcome of ServerCommandBuffer.Push.
type PushResultKind int

const (
	Accepted PushResultKind = iota
	TooOld
	TooNew
)

// PushResult carries the classification and, for a rejection, the
// command handed back unmodified so the caller may log or drop it.
type PushResult[Command any] struct {
	Kind    PushResultKind
	Command Command
}

// ServerCommandBuffer is a per-(client) indexed-by-frame bucket of
// received commands, with acceptance window and client-vs-server offset.
type ServerCommandBuffer[Command any] struct {
	commands                map[types.CommandFrame][]ServerCommandBufferEntry[Command]
	lastSeenCommandFrame     types.CommandFrame
	highestSeenCommandFrame  types.CommandFrame
	config                   CommandBufferConfig
	commandFrameOffset       int32
}

// NewServerCommandBuffer constructs a buffer with the default acceptance window.
func NewServerCommandBuffer[Command any]() *ServerCommandBuffer[Command] {
	return NewServerCommandBufferWithConfig[Command](DefaultCommandBufferConfig())
}

// NewServerCommandBufferWithConfig constructs a buffer with a custom acceptance window.
func NewServerCommandBufferWithConfig[Command any](config CommandBufferConfig) *ServerCommandBuffer[Command] {
	return &ServerCommandBuffer[Command]{
		commands: make(map[types.CommandFrame][]ServerCommandBufferEntry[Command]),
		config:   config,
	}
}

// Push records command at clientFrame, rejecting it if it falls outside
// the acceptance window relative to serverFrame.
func (b *ServerCommandBuffer[Command]) Push(command Command, clientFrame, serverFrame types.CommandFrame) PushResult[Command] {
	b.lastSeenCommandFrame = clientFrame
	if b.lastSeenCommandFrame > b.highestSeenCommandFrame {
		b.highestSeenCommandFrame = b.lastSeenCommandFrame
	}

	b.commandFrameOffset = int32(clientFrame) - int32(serverFrame)

	if b.commandFrameOffset < 0 {
		if -b.commandFrameOffset > int32(b.config.IgnoreOlderThan) {
			return PushResult[Command]{Kind: TooOld, Command: command}
		}
	} else if b.commandFrameOffset > int32(b.config.IgnoreNewerThan) {
		return PushResult[Command]{Kind: TooNew, Command: command}
	}

	b.commands[clientFrame] = append(b.commands[clientFrame], ServerCommandBufferEntry[Command]{
		CommandFrame: clientFrame,
		Command:      command,
	})

	return PushResult[Command]{Kind: Accepted}
}

// DrainFrame removes and returns the bucket for frame, if any.
func (b *ServerCommandBuffer[Command]) DrainFrame(frame types.CommandFrame) ([]ServerCommandBufferEntry[Command], bool) {
	entries, ok := b.commands[frame]
	if ok {
		delete(b.commands, frame)
	}
	return entries, ok
}

// IterFrame returns a non-destructive read of the bucket for frame.
func (b *ServerCommandBuffer[Command]) IterFrame(frame types.CommandFrame) ([]ServerCommandBufferEntry[Command], bool) {
	entries, ok := b.commands[frame]
	return entries, ok
}

// CommandFrameSpan returns the number of distinct frames currently buffered.
func (b *ServerCommandBuffer[Command]) CommandFrameSpan() int { return len(b.commands) }

// LastSeen returns the most recent client frame pushed.
func (b *ServerCommandBuffer[Command]) LastSeen() types.CommandFrame { return b.lastSeenCommandFrame }

// HighestSeen returns the highest client frame ever pushed.
func (b *ServerCommandBuffer[Command]) HighestSeen() types.CommandFrame {
	return b.highestSeenCommandFrame
}

// CommandFrameOffset returns client_frame - server_frame from the most recent push.
func (b *ServerCommandBuffer[Command]) CommandFrameOffset() int32 { return b.commandFrameOffset }
