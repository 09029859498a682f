package tracker

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/TimonPost/net-sync/internal/types"
)

type position struct {
	X, Y int
}

func (p position) Clone() Trackable { return p }

func (p position) Serialize() ([]byte, error) { return json.Marshal(p) }

type fakeServerSink struct {
	pushed bool
	frame  types.CommandFrame
	entity types.EntityId
}

func (f *fakeServerSink) Push(frame types.CommandFrame, entity types.EntityId, unchanged []byte, componentType reflect.Type) {
	f.pushed = true
	f.frame = frame
	f.entity = entity
}

func TestServerTrackerEmitsOnChange(t *testing.T) {
	comp := position{X: 1, Y: 1}
	sink := &fakeServerSink{}

	func() {
		tr := NewServerModificationTracker[position](&comp, sink, 7, 3)
		defer tr.Close()
		tr.Value().X = 2
	}()

	if !sink.pushed {
		t.Fatal("expected a push on change")
	}
	if sink.entity != 7 || sink.frame != 3 {
		t.Fatalf("unexpected push metadata: entity=%d frame=%d", sink.entity, sink.frame)
	}
}

func TestServerTrackerSkipsEmitWhenUnchanged(t *testing.T) {
	comp := position{X: 1, Y: 1}
	sink := &fakeServerSink{}

	func() {
		tr := NewServerModificationTracker[position](&comp, sink, 7, 3)
		defer tr.Close()
	}()

	if sink.pushed {
		t.Fatal("expected no push when nothing changed")
	}
}

type fakeClientSink struct {
	pushed    bool
	unchanged []byte
	changed   []byte
}

func (f *fakeClientSink) Push(command int, frame types.CommandFrame, entity types.EntityId, unchanged, changed []byte, componentType reflect.Type) {
	f.pushed = true
	f.unchanged = unchanged
	f.changed = changed
}

func TestClientTrackerEmitsBeforeAndAfter(t *testing.T) {
	comp := position{X: 1, Y: 1}
	sink := &fakeClientSink{}

	func() {
		tr := NewClientModificationTracker[position, int](&comp, sink, 1, 1, 42)
		defer tr.Close()
		tr.Value().X = 5
	}()

	if !sink.pushed {
		t.Fatal("expected a push on change")
	}
	var before, after position
	if err := json.Unmarshal(sink.unchanged, &before); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(sink.changed, &after); err != nil {
		t.Fatal(err)
	}
	if before.X != 1 || after.X != 5 {
		t.Fatalf("expected before.X=1 after.X=5, got %d %d", before.X, after.X)
	}
}
