package postal

import (
	"testing"

	"github.com/TimonPost/net-sync/syncbuf"
)

func TestSessionDispatchesMessageToInbox(t *testing.T) {
	s := NewSession[int, string, int](fakeAddr("127.0.0.1:1"), 0)

	result := s.AddReceivedMessage(ClientToServerMessage[string, int]{Kind: ClientMessage, Message: "hi"}, 0)
	if result != nil {
		t.Fatalf("expected nil PushResult for a Message dispatch, got %+v", result)
	}

	inbox := s.Postbox().DrainInbox(func(*string) bool { return true })
	if len(inbox) != 1 || inbox[0] != "hi" {
		t.Fatalf("expected [hi] in inbox, got %v", inbox)
	}
}

func TestSessionDispatchesCommandToBufferAndReturnsOutcome(t *testing.T) {
	s := NewSession[int, string, int](fakeAddr("127.0.0.1:1"), 0)

	result := s.AddReceivedMessage(ClientToServerMessage[string, int]{Kind: ClientCommand, CommandFrame: 2, Command: 7}, 0)
	if result == nil || result.Kind != syncbuf.Accepted {
		t.Fatalf("expected Accepted, got %+v", result)
	}

	entries, ok := s.CommandPostbox().IterFrame(2)
	if !ok || len(entries) != 1 || entries[0].Command != 7 {
		t.Fatalf("expected command 7 buffered at frame 2, got %v", entries)
	}
}

func TestSessionTimeSyncIsNoop(t *testing.T) {
	s := NewSession[int, string, int](fakeAddr("127.0.0.1:1"), 0)

	result := s.AddReceivedMessage(ClientToServerMessage[string, int]{Kind: ClientTimeSync}, 0)
	if result != nil {
		t.Fatalf("expected nil PushResult for TimeSync, got %+v", result)
	}
}
