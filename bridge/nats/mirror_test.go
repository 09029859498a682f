package nats

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestConnectReturnsNilMirrorWithoutURL(t *testing.T) {
	m, err := Connect("", zerolog.Nop())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if m != nil {
		t.Fatal("expected nil mirror when no URL configured")
	}
}

func TestConnectRejectsUnreachableURL(t *testing.T) {
	// nats.Connect resolves synchronously by default, so an unreachable
	// address fails fast rather than retrying in the background.
	_, err := Connect("nats://127.0.0.1:1", zerolog.Nop())
	if err == nil {
		t.Fatal("expected connection error for unreachable NATS server")
	}
}
