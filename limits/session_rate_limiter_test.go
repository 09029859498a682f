package limits

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestAllowPermitsUpToBurstThenDropsExcess(t *testing.T) {
	l := New(Config{PerSecond: 1, Burst: 2}, zerolog.Nop())

	if !l.Allow(1) {
		t.Fatal("expected first inbound item to be allowed")
	}
	if !l.Allow(1) {
		t.Fatal("expected second inbound item (within burst) to be allowed")
	}
	if l.Allow(1) {
		t.Fatal("expected third inbound item to exceed burst and be dropped")
	}
}

func TestAllowTracksSessionsIndependently(t *testing.T) {
	l := New(Config{PerSecond: 1, Burst: 1}, zerolog.Nop())

	if !l.Allow(1) {
		t.Fatal("expected session 1's first item to be allowed")
	}
	if !l.Allow(2) {
		t.Fatal("expected session 2's first item to be allowed independently of session 1")
	}
}

func TestRemoveEvictsSessionBucket(t *testing.T) {
	l := New(Config{PerSecond: 1, Burst: 1}, zerolog.Nop())
	l.Allow(1)
	if got := l.TrackedSessions(); got != 1 {
		t.Fatalf("expected 1 tracked session, got %d", got)
	}

	l.Remove(1)
	if got := l.TrackedSessions(); got != 0 {
		t.Fatalf("expected 0 tracked sessions after Remove, got %d", got)
	}
}
