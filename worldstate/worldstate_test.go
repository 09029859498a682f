package worldstate

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/TimonPost/net-sync/internal/types"
)

func TestInsertThenRemoveEvictsFromInserted(t *testing.T) {
	state := New(1)
	state.InsertEntity(7, []types.ComponentData{{ID: 1, Payload: []byte{0, 1}}})
	state.RemoveEntity(7)

	if _, ok := state.Inserted[7]; ok {
		t.Fatal("expected entity to be evicted from Inserted")
	}
	if _, ok := state.Removed[7]; !ok {
		t.Fatal("expected entity to be present in Removed")
	}
}

func TestChangeKeepsOnlyLatestPerEntity(t *testing.T) {
	state := New(1)
	state.Change(1, types.ComponentData{ID: 1, Payload: []byte("a")})
	state.Change(1, types.ComponentData{ID: 2, Payload: []byte("b")})

	if len(state.Changed) != 1 {
		t.Fatalf("expected a single surviving change, got %d", len(state.Changed))
	}
	if string(state.Changed[1].Component.Payload) != "b" {
		t.Fatal("expected the latest change to win")
	}
}

func TestRemoveComponentEvictsPendingAdd(t *testing.T) {
	state := New(1)
	state.AddComponent(1, types.ComponentData{ID: 1})
	state.RemoveComponent(1, 1)

	if _, ok := state.ComponentAdded[1]; ok {
		t.Fatal("expected component_added entry to be evicted")
	}
	if _, ok := state.ComponentRemoved[1]; !ok {
		t.Fatal("expected component_removed entry to be present")
	}
}

func TestResetPreservesChanged(t *testing.T) {
	state := New(1)
	state.InsertEntity(1, nil)
	state.RemoveEntity(2)
	state.AddComponent(3, types.ComponentData{})
	state.RemoveComponent(4, 1)
	state.Change(5, types.ComponentData{})

	state.Reset()

	if !state.IsEmpty() {
		// Changed survives Reset and IsEmpty counts it, so the state is
		// not empty here; the checks below verify that only Changed
		// survived.
	}
	if len(state.Inserted) != 0 || len(state.Removed) != 0 || len(state.ComponentAdded) != 0 || len(state.ComponentRemoved) != 0 {
		t.Fatal("expected reset to clear everything but Changed")
	}
	if len(state.Changed) != 1 {
		t.Fatal("expected Changed to survive reset")
	}
}

func TestIsEmpty(t *testing.T) {
	state := New(1)
	if !state.IsEmpty() {
		t.Fatal("expected fresh state to be empty")
	}
	state.Change(1, types.ComponentData{})
	if state.IsEmpty() {
		t.Fatal("expected non-empty state after a change")
	}
}

func TestCloneMatchesOriginalStructurally(t *testing.T) {
	state := New(3)
	state.InsertEntity(1, []types.ComponentData{{ID: 1, Payload: []byte("a")}})
	state.RemoveEntity(2)
	state.AddComponent(3, types.ComponentData{ID: 2, Payload: []byte("b")})
	state.RemoveComponent(4, 1)
	state.Change(5, types.ComponentData{ID: 3, Payload: []byte("c")})

	clone := state.Clone()

	if diff := cmp.Diff(state, clone); diff != "" {
		t.Fatalf("clone diverges from original (-want +got):\n%s", diff)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	state := New(1)
	state.Change(1, types.ComponentData{Payload: []byte("x")})

	clone := state.Clone()
	clone.CommandFrameOffset = 9
	clone.Change(1, types.ComponentData{Payload: []byte("y")})

	if state.CommandFrameOffset != 0 {
		t.Fatal("expected original offset to be untouched")
	}
	if string(state.Changed[1].Component.Payload) != "x" {
		t.Fatal("expected original Changed entry to be untouched")
	}
}
