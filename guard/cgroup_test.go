package guard

import "testing"

func TestCalculateMaxSessionsWithNoLimitUsesDefault(t *testing.T) {
	if got := CalculateMaxSessions(0); got != 10000 {
		t.Fatalf("expected default 10000, got %d", got)
	}
}

func TestCalculateMaxSessionsClampsToMinimum(t *testing.T) {
	if got := CalculateMaxSessions(1024); got != 100 {
		t.Fatalf("expected floor of 100, got %d", got)
	}
}

func TestCalculateMaxSessionsClampsToMaximum(t *testing.T) {
	if got := CalculateMaxSessions(1 << 40); got != 50000 {
		t.Fatalf("expected ceiling of 50000, got %d", got)
	}
}

func TestCalculateMaxSessionsScalesWithAvailableMemory(t *testing.T) {
	got := CalculateMaxSessions(512 * 1024 * 1024)
	if got <= 100 || got >= 50000 {
		t.Fatalf("expected a mid-range value for 512MB, got %d", got)
	}
}
