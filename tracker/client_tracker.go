package tracker

import (
	"fmt"
	"reflect"

	"github.com/TimonPost/net-sync/internal/types"
)

// ClientModificationTracker scopes a mutable borrow of a trackable
// component on the client, additionally recording both the before and
// after serialized forms plus the command that caused the mutation —
// used to replay predictions via syncbuf.ClientCommandBuffer.
type ClientModificationTracker[C Trackable, Command any] struct {
	unchanged    C
	borrow       *C
	sink         ClientChangeTracker[Command]
	identifier   types.EntityId
	commandFrame types.CommandFrame
	command      Command
	closed       bool
}

// NewClientModificationTracker snapshots *borrow as the "unchanged" copy.
func NewClientModificationTracker[C Trackable, Command any](
	borrow *C,
	sink ClientChangeTracker[Command],
	identifier types.EntityId,
	commandFrame types.CommandFrame,
	command Command,
) *ClientModificationTracker[C, Command] {
	cloned, ok := (*borrow).Clone().(C)
	if !ok {
		panic("tracker: Clone() did not return the tracked component's own type")
	}
	return &ClientModificationTracker[C, Command]{
		unchanged:    cloned,
		borrow:       borrow,
		sink:         sink,
		identifier:   identifier,
		commandFrame: commandFrame,
		command:      command,
	}
}

// Value returns the mutable component being tracked.
func (t *ClientModificationTracker[C, Command]) Value() *C { return t.borrow }

// Unchanged returns the pre-mutation snapshot.
func (t *ClientModificationTracker[C, Command]) Unchanged() C { return t.unchanged }

// Close computes the diff and, if changed, pushes both the unchanged and
// changed serialized forms along with the causing command. Safe to call
// more than once; only the first call emits.
func (t *ClientModificationTracker[C, Command]) Close() {
	if t.closed {
		return
	}
	t.closed = true

	diff := ComputeDiff(t.unchanged, *t.borrow)
	if !diff.HasChanges() {
		return
	}

	unchangedSerialized, err := t.unchanged.Serialize()
	if err != nil {
		panic(fmt.Sprintf("tracker: could not serialize unchanged component: %v", err))
	}
	changedSerialized, err := (*t.borrow).Serialize()
	if err != nil {
		panic(fmt.Sprintf("tracker: could not serialize changed component: %v", err))
	}

	t.sink.Push(t.command, t.commandFrame, t.identifier, unchangedSerialized, changedSerialized, reflect.TypeOf(t.unchanged))
}
