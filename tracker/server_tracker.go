package tracker

import (
	"fmt"
	"reflect"

	"github.com/TimonPost/net-sync/internal/types"
)

// ServerModificationTracker scopes a mutable borrow of a trackable
// component. Construct it, mutate through Value(), then `defer
// tracker.Close()` immediately so the diff-and-emit runs on every exit
// path — the Go equivalent of the original's Drop-triggered diff.
type ServerModificationTracker[C Trackable] struct {
	unchanged    C
	borrow       *C
	sink         ServerChangeTracker
	identifier   types.EntityId
	commandFrame types.CommandFrame
	closed       bool
}

// NewServerModificationTracker snapshots *borrow as the "unchanged" copy
// and returns a tracker the caller mutates through Value().
func NewServerModificationTracker[C Trackable](
	borrow *C,
	sink ServerChangeTracker,
	identifier types.EntityId,
	commandFrame types.CommandFrame,
) *ServerModificationTracker[C] {
	cloned, ok := (*borrow).Clone().(C)
	if !ok {
		panic("tracker: Clone() did not return the tracked component's own type")
	}
	return &ServerModificationTracker[C]{
		unchanged:    cloned,
		borrow:       borrow,
		sink:         sink,
		identifier:   identifier,
		commandFrame: commandFrame,
	}
}

// Value returns the mutable component being tracked.
func (t *ServerModificationTracker[C]) Value() *C { return t.borrow }

// Unchanged returns the pre-mutation snapshot.
func (t *ServerModificationTracker[C]) Unchanged() C { return t.unchanged }

// Close computes the diff between Unchanged() and the current value and,
// if it has changes, pushes a change record to the sink. Safe to call
// more than once; only the first call emits. If the unchanged snapshot
// cannot be serialized, Close panics — per spec §4.3, a serialization
// failure here is a programming error, not a recoverable one.
func (t *ServerModificationTracker[C]) Close() {
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

	t.sink.Push(t.commandFrame, t.identifier, unchangedSerialized, reflect.TypeOf(t.unchanged))
}
