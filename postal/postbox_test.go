package postal

import "testing"

func TestPostBoxSendAndDrainOutgoing(t *testing.T) {
	box := New[int, string]()
	box.Send("a")
	box.Send("b")

	drained := box.DrainOutgoing(func(s *string) bool { return true })
	if len(drained) != 2 || drained[0] != "a" || drained[1] != "b" {
		t.Fatalf("expected FIFO [a,b], got %v", drained)
	}
	if !box.EmptyOutgoing() {
		t.Fatal("expected outgoing to be empty after full drain")
	}
}

func TestPostBoxDrainOutgoingRespectsFilter(t *testing.T) {
	box := New[int, int]()
	box.Send(1)
	box.Send(2)
	box.Send(3)

	drained := box.DrainOutgoing(func(v *int) bool { return *v%2 == 0 })
	if len(drained) != 1 || drained[0] != 2 {
		t.Fatalf("expected [2], got %v", drained)
	}
	remaining := box.GetOutgoing()
	if len(remaining) != 2 || remaining[0] != 1 || remaining[1] != 3 {
		t.Fatalf("expected remaining [1,3], got %v", remaining)
	}
}

func TestPostBoxAddToInboxAndDrain(t *testing.T) {
	box := New[string, int]()
	box.AddToInbox("hello")

	drained := box.DrainInbox(func(s *string) bool { return true })
	if len(drained) != 1 || drained[0] != "hello" {
		t.Fatalf("expected [hello], got %v", drained)
	}
}

func TestPostBoxDrainOutgoingWithPriorityAlwaysDrainsImmediate(t *testing.T) {
	box := New[int, int]()
	box.Send(1)          // OnTick, doesn't match filter
	box.SendImmediate(2) // Immediate, must drain regardless of filter

	drained := box.DrainOutgoingWithPriority(func(v *int) bool { return false })
	if len(drained) != 1 || drained[0] != 2 {
		t.Fatalf("expected [2] (immediate), got %v", drained)
	}
	remaining := box.GetOutgoing()
	if len(remaining) != 1 || remaining[0] != 1 {
		t.Fatalf("expected [1] left behind, got %v", remaining)
	}
}

func TestPostBoxEnumerateInboxPairsIndexWithMessage(t *testing.T) {
	box := New[string, int]()
	box.AddToInbox("a")
	box.AddToInbox("b")

	entries := box.EnumerateInbox()
	if len(entries) != 2 || entries[0].Index != 0 || entries[0].Message != "a" ||
		entries[1].Index != 1 || entries[1].Message != "b" {
		t.Fatalf("unexpected entries: %+v", entries)
	}

	box.Acknowledge(entries[1].Index)
	promoted := box.PromoteAcknowledged()
	if len(promoted) != 1 || promoted[0] != "b" {
		t.Fatalf("expected [b] promoted, got %v", promoted)
	}
}

func TestPostBoxPromoteAcknowledgedLeavesUnacknowledged(t *testing.T) {
	box := New[string, int]()
	box.AddToInbox("pending")
	box.AddToInbox("ready")
	box.Acknowledge(1)

	promoted := box.PromoteAcknowledged()
	if len(promoted) != 1 || promoted[0] != "ready" {
		t.Fatalf("expected [ready], got %v", promoted)
	}
	if box.EmptyInbox() {
		t.Fatal("expected unacknowledged entry to remain")
	}
}
